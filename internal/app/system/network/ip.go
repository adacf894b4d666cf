// Package network provides network-related utilities.
package network

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the caller's address from r.RemoteAddr without the port.
//
// The router runs chi's RealIP middleware first, which copies
// X-Real-IP / X-Forwarded-For into RemoteAddr, so the proxy headers are not
// consulted again here. Values that do not parse as an IP are returned
// trimmed so they still identify the caller in logs.
func ClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	addr = strings.Trim(addr, "[]")
	if ip := net.ParseIP(addr); ip != nil {
		return ip.String()
	}
	return addr
}
