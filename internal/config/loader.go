package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/go-ini/ini"
)

// Name is the name of the configuration file.
const Name = ".ustar"

// Loader can be used for loading .ustar configuration.
type Loader struct {
	cfg *ini.File
	dir string
}

// Load will traverse the directory hierarchy upwards from dir to find the first ".ustar" file available and load its
// contents into the Loader.
//
// The name of the .ustar file is returned, or an empty string if there is none in which case the Loader keeps
// returning default settings.
func (l *Loader) Load(ctx context.Context, dir string) (string, error) {
	cur, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		path := filepath.Join(cur, Name)
		switch fi, err := os.Stat(path); {
		case err == nil && !fi.IsDir():
			cfg, err := ini.Load(path)
			if err != nil {
				l.cfg = ini.Empty()
				return path, err
			}

			l.cfg, l.dir = cfg, cur
			return path, nil
		case err != nil && !errors.Is(err, os.ErrNotExist):
			return "", err
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return "", nil
		}

		cur = parent
	}
}

// file returns the loaded file, or an empty file if nothing was loaded.
func (l *Loader) file() *ini.File {
	if l.cfg == nil {
		return ini.Empty()
	}

	return l.cfg
}

// resolve joins a relative path from the configuration file with the directory of that file.
func (l *Loader) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || l.dir == "" {
		return path
	}

	return filepath.Join(l.dir, path)
}

// DefaultLoader is the default Loader instance for package-level methods.
var DefaultLoader = &Loader{cfg: ini.Empty()}

// Load calls Loader.Load on the DefaultLoader instance.
func Load(ctx context.Context, dir string) (string, error) {
	return DefaultLoader.Load(ctx, dir)
}
