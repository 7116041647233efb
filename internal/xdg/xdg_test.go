package xdg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		get  func() (string, error)
		want string
	}{
		{
			name: "config from env",
			env:  map[string]string{"XDG_CONFIG_HOME": "/custom/config"},
			get:  ConfigDir,
			want: "/custom/config/quill",
		},
		{
			name: "config default",
			env:  map[string]string{"XDG_CONFIG_HOME": "", "HOME": "/home/testuser"},
			get:  ConfigDir,
			want: "/home/testuser/.config/quill",
		},
		{
			name: "state from env",
			env:  map[string]string{"XDG_STATE_HOME": "/custom/state"},
			get:  StateDir,
			want: "/custom/state/quill",
		},
		{
			name: "state default",
			env:  map[string]string{"XDG_STATE_HOME": "", "HOME": "/home/testuser"},
			get:  StateDir,
			want: "/home/testuser/.local/state/quill",
		},
		{
			name: "config file",
			env:  map[string]string{"XDG_CONFIG_HOME": "/custom/config"},
			get:  ConfigFile,
			want: "/custom/config/quill/config.yaml",
		},
		{
			name: "session db",
			env:  map[string]string{"XDG_STATE_HOME": "/custom/state"},
			get:  SessionDBPath,
			want: "/custom/state/quill/session.db",
		},
		{
			name: "log file",
			env:  map[string]string{"XDG_STATE_HOME": "/custom/state"},
			get:  LogFile,
			want: "/custom/state/quill/quill.log",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			got, err := tt.get()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDirs_NoHome(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", "")

	_, err := StateDir()
	assert.ErrorIs(t, err, ErrNoHome)

	_, err = SessionDBPath()
	assert.ErrorIs(t, err, ErrNoHome)
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}
