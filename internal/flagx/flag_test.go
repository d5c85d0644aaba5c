package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	clientFlags = []string{"-a", "-i", "-x", "-m", "-s", "-u"}
	serverFlags = []string{"-a", "-l", "-d", "-s", "-t", "-x", "-m", "-i", "-n", "-r"}
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "client flags pulled out of a mixed command line",
			args:    []string{"-config", "client.json", "-a", "127.0.0.1:50051", "-env", ".env", "-x", "30"},
			allowed: clientFlags,
			want:    []string{"-a", "127.0.0.1:50051", "-x", "30"},
		},
		{
			name:    "equals form kept whole",
			args:    []string{"-u=http://img:8080/v1/reference-image", "-c=cfg.json"},
			allowed: clientFlags,
			want:    []string{"-u=http://img:8080/v1/reference-image"},
		},
		{
			name:    "value with equals sign in separate token",
			args:    []string{"-d", "postgres://u:p@db/clickpass?sslmode=disable", "-n", "5"},
			allowed: serverFlags,
			want:    []string{"-d", "postgres://u:p@db/clickpass?sslmode=disable", "-n", "5"},
		},
		{
			name:    "dash token is never consumed as a value",
			args:    []string{"-s", "-m", "4"},
			allowed: clientFlags,
			want:    []string{"-s", "-m", "4"},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-m"},
			allowed: clientFlags,
			want:    []string{"-m"},
		},
		{
			name:    "positional arguments dropped",
			args:    []string{"serve", "-r", "redis://cache:6379/0", "extra"},
			allowed: serverFlags,
			want:    []string{"-r", "redis://cache:6379/0"},
		},
		{
			name:    "repeated flag preserved in order",
			args:    []string{"-x", "10", "-x", "20"},
			allowed: clientFlags,
			want:    []string{"-x", "10", "-x", "20"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-a", ":1"},
			allowed: nil,
			want:    []string{},
		},
		{
			name:    "empty args",
			args:    nil,
			allowed: serverFlags,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigPath(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/short.json"}
		assert.Equal(t, "/path/short.json", ConfigPath())
	})

	t.Run("long -config with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", "/path/long.json"}
		assert.Equal(t, "/path/long.json", ConfigPath())
	})

	t.Run("unknown flags are ignored", func(t *testing.T) {
		os.Args = []string{"testbin", "-x", "1", "-y", "2"}
		assert.Empty(t, ConfigPath())
	})

	t.Run("multiple flags, last wins", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/1.json", "-config", "/path/2.json"}
		assert.Equal(t, "/path/2.json", ConfigPath())
	})
}

func TestEnvFilePath(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-a", ":1", "-env", "prod.env"}
	assert.Equal(t, "prod.env", EnvFilePath())

	os.Args = []string{"testbin", "-c", "x.json"}
	assert.Empty(t, EnvFilePath())
}
