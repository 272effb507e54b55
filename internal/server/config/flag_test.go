package config

import (
	"flag"
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
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:8080", "-g", "127.0.0.1:9090", "-d", "memory", "-s", "secret",
				"-t", "30", "-b", "4", "-l", "zap", "-v", "debug", "-o", "16",
			},
			expected: &Config{
				EndpointAddrHTTP:      "127.0.0.1:8080",
				EndpointAddrGRPC:      "127.0.0.1:9090",
				DatabaseDSN:           "memory",
				SecretKey:             "secret",
				TokenValidityDuration: 30 * time.Minute,
				BcryptCost:            4,
				LogBackend:            "zap",
				LogLevel:              "debug",
				OutboxSize:            16,
			},
		},
		{
			name: "unrelated flags are ignored",
			args: []string{"cmd", "-c", "conf.json", "-s", "other"},
			expected: &Config{
				SecretKey: "other",
			},
		},
		{
			name:        "non-numeric minutes",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)
			os.Args = tt.args

			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
