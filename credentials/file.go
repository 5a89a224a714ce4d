package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// ErrInsecurePermissions is returned when a credentials file is
// readable by anyone but its owner.
var ErrInsecurePermissions = fmt.Errorf("credentials file has insecure permissions")

// File is the on-disk credential set:
//
//	primary = "key-1"
//	backups = ["key-2", "key-3"]
type File struct {
	Primary string   `toml:"primary"`
	Backups []string `toml:"backups"`
}

// StandardPaths returns the credential file locations checked by Load,
// in priority order.
func StandardPaths() []string {
	paths := []string{"credentials.toml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "throttler", "credentials.toml"))
	}
	return paths
}

// Load builds a Rotator from the first credentials file found in a
// standard location. A missing file is not an error; the rotator and
// path are nil/empty in that case.
func Load() (*Rotator, string, error) {
	for _, path := range StandardPaths() {
		if _, err := os.Stat(path); err == nil {
			r, err := LoadFile(path)
			if err != nil {
				return nil, path, err
			}
			return r, path, nil
		}
	}
	return nil, "", nil
}

// LoadFile builds a Rotator from a specific TOML file.
// Returns ErrInsecurePermissions unless the file is owner-read-only.
func LoadFile(path string) (*Rotator, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewRotator(f.Primary, f.Backups...)
}

// ReadFile decodes a credentials file without building a Rotator, for
// callers that pass the keys on to a constructor themselves.
func ReadFile(path string) (*File, error) {
	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		mode := info.Mode().Perm()
		if mode != 0400 {
			return nil, fmt.Errorf("%w: %s has mode %04o (must be 0400)",
				ErrInsecurePermissions, path, mode)
		}
	}

	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
