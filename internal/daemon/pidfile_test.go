package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPidFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reminder.pid")

	require.NoError(t, WritePidFile(path))
	pid, err := ReadPidFile(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, RemovePidFile(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// removing twice is fine
	assert.NoError(t, RemovePidFile(path))
}

func TestReadPidFileInvalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"garbage", "not-a-pid"},
		{"zero", "0"},
		{"negative", "-12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := ReadPidFile(path)
			assert.Error(t, err)
		})
	}
}

func TestReadPidFileMissing(t *testing.T) {
	_, err := ReadPidFile(filepath.Join(t.TempDir(), "none.pid"))
	assert.True(t, os.IsNotExist(err))
}
