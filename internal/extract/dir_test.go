package extract

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/nguyengg/ustar/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, d *Dir, hdr scan.Header, content string) error {
	w, err := d.Create(hdr)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, content)
	require.NoError(t, err)
	return w.Close()
}

func TestDir_Create(t *testing.T) {
	d := &Dir{Path: t.TempDir()}

	require.NoError(t, write(t, d, scan.Header{Name: "a/b/c.txt", Size: 5, Mode: 0600}, "hello"))

	path := filepath.Join(d.Path, "a", "b", "c.txt")
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), fi.Mode().Perm())
	}

	// overwrites by default.
	require.NoError(t, write(t, d, scan.Header{Name: "a/b/c.txt", Size: 2, Mode: 0600}, "hi"))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(got))
}

func TestDir_CreateNoClobber(t *testing.T) {
	d := &Dir{Path: t.TempDir(), NoClobber: true}

	require.NoError(t, write(t, d, scan.Header{Name: "a.txt", Mode: 0644}, "first"))

	_, err := d.Create(scan.Header{Name: "a.txt", Mode: 0644})
	assert.ErrorIs(t, err, os.ErrExist)

	got, err := os.ReadFile(filepath.Join(d.Path, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))
}

func TestDir_CreateKeepModTime(t *testing.T) {
	modTime := time.Unix(1700000000, 0)

	tests := []struct {
		name        string
		keepModTime bool
	}{
		{"keep", true},
		{"discard", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Dir{Path: t.TempDir(), KeepModTime: tt.keepModTime}
			require.NoError(t, write(t, d, scan.Header{Name: "a.txt", Mode: 0644, ModTime: modTime}, "hello"))

			fi, err := os.Stat(filepath.Join(d.Path, "a.txt"))
			require.NoError(t, err)
			if tt.keepModTime {
				assert.True(t, modTime.Equal(fi.ModTime()), "got %v", fi.ModTime())
			} else {
				assert.False(t, modTime.Equal(fi.ModTime()), "got %v", fi.ModTime())
			}
		})
	}
}

func TestDir_CreateUnsafePath(t *testing.T) {
	d := &Dir{Path: t.TempDir()}

	for _, name := range []string{"../a.txt", "a/../../b.txt", "/etc/passwd", ""} {
		t.Run(name, func(t *testing.T) {
			_, err := d.Create(scan.Header{Name: name, Mode: 0644})
			assert.ErrorIs(t, err, ErrUnsafePath)
		})
	}
}
