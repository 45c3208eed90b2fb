package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nguyengg/ustar/scan"
)

// ErrUnsafePath is returned if a member's name is absolute or would escape the output directory.
var ErrUnsafePath = errors.New("unsafe path")

// Dir creates extracted files under a directory.
type Dir struct {
	// Path is the output directory. Defaults to the working directory.
	Path string

	// NoClobber fails creating a file that already exists instead of truncating it.
	NoClobber bool

	// KeepModTime sets the extracted file's modification time from the header when the file is closed.
	KeepModTime bool
}

// Create implements ustar.Creator.
//
// Parent directories are created as needed. The returned file has the header's permission bits.
func (d *Dir) Create(hdr scan.Header) (io.WriteCloser, error) {
	name := filepath.FromSlash(hdr.Name)
	if !filepath.IsLocal(name) {
		return nil, fmt.Errorf(`%w: "%s"`, ErrUnsafePath, hdr.Name)
	}

	path := filepath.Join(d.Path, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf(`create path to file "%s" error: %w`, path, err)
	}

	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if d.NoClobber {
		flag = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	f, err := os.OpenFile(path, flag, hdr.Mode.Perm())
	if err != nil {
		return nil, err
	}

	w := &file{File: f}
	if d.KeepModTime && !hdr.ModTime.IsZero() {
		w.modTime = hdr.ModTime
	}

	return w, nil
}

// file applies the modification time after closing.
type file struct {
	*os.File
	modTime time.Time
}

func (f *file) Close() error {
	if err := f.File.Close(); err != nil {
		return err
	}

	if f.modTime.IsZero() {
		return nil
	}

	if err := os.Chtimes(f.Name(), time.Time{}, f.modTime); err != nil {
		return fmt.Errorf(`change mod time of "%s" error: %w`, f.Name(), err)
	}

	return nil
}
