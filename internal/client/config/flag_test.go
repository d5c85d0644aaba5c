package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name        string
		args        []string
		want        *Config
		expectPanic bool
	}{
		{
			name: "server address and interval",
			args: []string{"cmd", "-a", "127.0.0.1:9090", "-i", "10"},
			want: &Config{ServerEndpointAddr: "127.0.0.1:9090", OnlineCheckInterval: 10 * time.Second},
		},
		{
			name: "pattern settings and state dir",
			args: []string{"cmd", "-x", "30", "-m", "4", "-s", "state"},
			want: &Config{Tolerance: 30, MaxClicks: 4, StateDir: "state"},
		},
		{
			name: "reference image url",
			args: []string{"cmd", "-u", "http://img:8080/ref"},
			want: &Config{ReferenceImageURL: "http://img:8080/ref"},
		},
		{
			name: "config and env flags left to their owners",
			args: []string{"cmd", "-config", "x.json", "-env", "dev.env", "-a", "h:1"},
			want: &Config{ServerEndpointAddr: "h:1"},
		},
		{
			name: "interval zero disables the watcher",
			args: []string{"cmd", "-i", "0"},
			want: &Config{},
		},
		{name: "bad interval", args: []string{"cmd", "-i", "abc"}, expectPanic: true},
		{name: "bad tolerance", args: []string{"cmd", "-x", "wide"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			cfg := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg) })
			assert.Empty(t, cmp.Diff(tt.want, cfg))
		})
	}
}
