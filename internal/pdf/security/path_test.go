package security

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathValidator(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name      string
		dir       string
		wantError bool
	}{
		{name: "valid directory", dir: tempDir},
		{name: "empty directory", dir: "", wantError: true},
		{name: "non-existent directory", dir: "/non/existent/path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator, err := NewPathValidator(tt.dir)
			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, validator)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(validator.Root()))
		})
	}
}

func TestPathValidator_Resolve(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "a.pdf"), []byte("%PDF-1.4"), 0o644))

	validator, err := NewPathValidator(root)
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		want    string
		outside bool
		wantErr bool
	}{
		{name: "absolute inside", path: filepath.Join(root, "docs", "a.pdf"), want: filepath.Join(root, "docs", "a.pdf")},
		{name: "relative inside", path: "docs/a.pdf", want: filepath.Join(root, "docs", "a.pdf")},
		{name: "root itself", path: root, want: root},
		{name: "missing file inside", path: "docs/missing.pdf", want: filepath.Join(root, "docs", "missing.pdf")},
		{name: "null bytes stripped", path: "docs/a.pdf\x00", want: filepath.Join(root, "docs", "a.pdf")},
		{name: "parent traversal", path: "../outside.pdf", outside: true, wantErr: true},
		{name: "absolute outside", path: "/etc/passwd", outside: true, wantErr: true},
		{name: "sibling with shared prefix", path: root + "-other/a.pdf", outside: true, wantErr: true},
		{name: "empty", path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.Resolve(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				if tt.outside {
					assert.ErrorIs(t, err, ErrOutsideDirectory)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathValidator_ResolveSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	root := t.TempDir()
	outside := t.TempDir()
	target := filepath.Join(outside, "secret.pdf")
	require.NoError(t, os.WriteFile(target, []byte("%PDF-1.4"), 0o644))
	require.NoError(t, os.Symlink(target, filepath.Join(root, "link.pdf")))

	validator, err := NewPathValidator(root)
	require.NoError(t, err)

	_, err = validator.Resolve("link.pdf")
	assert.ErrorIs(t, err, ErrOutsideDirectory)
}

func TestPathValidator_ValidateDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF-1.4"), 0o644))

	validator, err := NewPathValidator(root)
	require.NoError(t, err)

	dir, err := validator.ValidateDirectory(".")
	require.NoError(t, err)
	assert.Equal(t, root, dir)

	_, err = validator.ValidateDirectory("not-yet-created")
	assert.NoError(t, err)

	_, err = validator.ValidateDirectory(file)
	assert.ErrorContains(t, err, "not a directory")

	_, err = validator.ValidateDirectory("..")
	assert.ErrorIs(t, err, ErrOutsideDirectory)
}
