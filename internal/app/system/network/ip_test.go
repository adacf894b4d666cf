package network

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		want       string
	}{
		{"ipv4 with port", "192.168.1.1:12345", "192.168.1.1"},
		{"ipv4 without port", "192.168.1.1", "192.168.1.1"},
		{"ipv6 with port", "[2001:db8::1]:8080", "2001:db8::1"},
		{"ipv6 bare", "2001:db8::1", "2001:db8::1"},
		{"ipv6 bracketed no port", "[::1]", "::1"},
		{"not an ip", "  unix-socket ", "unix-socket"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
			}
		})
	}
}

func TestClientIP_IgnoresForwardHeaders(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Errorf("ClientIP() = %q, want RemoteAddr host", got)
	}
}
