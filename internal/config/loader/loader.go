// Package loader reads configuration layers into nested maps.
//
// Each layer (a TOML file, the process environment) yields a
// map[string]any keyed by section; layers are combined with DeepMerge.
package loader

import (
	"io/fs"
	"os"
)

// Loader reads one configuration layer.
// It returns nil, nil when the source does not exist.
type Loader interface {
	Load() (map[string]any, error)
}

// FileSystem is the file access a loader needs.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem on the real file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}
