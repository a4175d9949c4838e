package backlight

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool writes an executable shell script that records its arguments
// into args.txt next to it and then runs body.
func fakeTool(t *testing.T, body string) (path, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}

	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args.txt")
	path = filepath.Join(dir, "light")
	script := "#!/bin/sh\necho \"$@\" > " + argsFile + "\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path, argsFile
}

func TestRead(t *testing.T) {
	path, argsFile := fakeTool(t, "echo '  42.50 '")

	percent, err := New(Config{Path: path}).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42.5, percent)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "\n", string(args))
}

func TestReadUnparsable(t *testing.T) {
	path, _ := fakeTool(t, "echo 'not a number'")

	_, err := New(Config{Path: path}).Read(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnparsableOutput)
	assert.Contains(t, err.Error(), "not a number")
}

func TestReadFailure(t *testing.T) {
	path, _ := fakeTool(t, "echo 'no backlight found' >&2; exit 3")

	_, err := New(Config{Path: path}).Read(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnparsableOutput)
	assert.Contains(t, err.Error(), "no backlight found")
}

func TestReadMissingTool(t *testing.T) {
	_, err := New(Config{Path: filepath.Join(t.TempDir(), "missing")}).Read(context.Background())
	assert.Error(t, err)
}

func TestSet(t *testing.T) {
	path, argsFile := fakeTool(t, "exit 0")
	l := New(Config{Path: path})

	tests := []struct {
		level float64
		want  string
	}{
		{level: 50, want: "-S 50\n"},
		{level: 0.10673, want: "-S 0.10673\n"},
		{level: 2.5, want: "-S 2.5\n"},
	}

	for _, tt := range tests {
		require.NoError(t, l.Set(context.Background(), tt.level))

		args, err := os.ReadFile(argsFile)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(args))
	}
}

func TestSetFailure(t *testing.T) {
	path, _ := fakeTool(t, "exit 1")

	err := New(Config{Path: path}).Set(context.Background(), 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-S 50")
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "light", New(Config{}).path)
}
