package timeouts

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	want := Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong}
	if got := Current(); got != want {
		t.Errorf("Current() = %+v, want %+v", got, want)
	}
}

func TestConfigure(t *testing.T) {
	t.Cleanup(Reset)

	tests := []struct {
		name string
		in   Config
		want Config
	}{
		{
			name: "partial overlay",
			in:   Config{Short: time.Second},
			want: Config{Ping: DefaultPing, Short: time.Second, Medium: DefaultMedium, Long: DefaultLong},
		},
		{
			name: "negative ignored",
			in:   Config{Ping: -time.Second, Long: time.Minute},
			want: Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: time.Minute},
		},
		{
			name: "all fields",
			in:   Config{Ping: 1, Short: 2, Medium: 3, Long: 4},
			want: Config{Ping: 1, Short: 2, Medium: 3, Long: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Reset()
			Configure(tt.in)
			if got := Current(); got != tt.want {
				t.Errorf("Current() = %+v, want %+v", got, tt.want)
			}
			if Ping() != tt.want.Ping || Short() != tt.want.Short || Medium() != tt.want.Medium || Long() != tt.want.Long {
				t.Errorf("accessors disagree with Current(): %v %v %v %v", Ping(), Short(), Medium(), Long())
			}
		})
	}
}
