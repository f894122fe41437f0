// Package workspace models the folders open in a dokd session and the
// per-folder DOK Dsc settings file.
package workspace

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// SchemeFile is the URI scheme of folders backed by the local file system.
const SchemeFile = "file"

// ErrEmptyFolder is returned when a folder location is empty.
var ErrEmptyFolder = errors.New("empty folder location")

// Folder is a workspace folder identified by a URI.
type Folder struct {
	// Name is the display name of the folder.
	Name string

	// URI locates the folder. Only "file" URIs are readable by dokd.
	URI *url.URL
}

// NewFolder creates a file folder from a local path.
func NewFolder(path string) (Folder, error) {
	if path == "" {
		return Folder{}, ErrEmptyFolder
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return Folder{}, fmt.Errorf("resolve folder %s: %w", path, err)
	}

	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		// Windows drive paths: file:///C:/work
		slashed = "/" + slashed
	}

	return Folder{
		Name: filepath.Base(abs),
		URI:  &url.URL{Scheme: SchemeFile, Path: slashed},
	}, nil
}

// ParseFolder creates a folder from either a URI ("file:///work",
// "vscode-vfs://github/org/repo") or a plain local path.
func ParseFolder(location string) (Folder, error) {
	if location == "" {
		return Folder{}, ErrEmptyFolder
	}

	if !strings.Contains(location, "://") {
		return NewFolder(location)
	}

	u, err := url.Parse(location)
	if err != nil {
		return Folder{}, fmt.Errorf("parse folder uri %s: %w", location, err)
	}

	name := ""
	if trimmed := strings.TrimSuffix(u.Path, "/"); trimmed != "" {
		name = trimmed[strings.LastIndex(trimmed, "/")+1:]
	}

	return Folder{Name: name, URI: u}, nil
}

// IsLocal reports whether the folder is backed by the local file system.
func (f Folder) IsLocal() bool {
	return f.URI != nil && f.URI.Scheme == SchemeFile
}

// FSPath returns the local file system path of a file folder.
// It returns "" for folders that are not local.
func (f Folder) FSPath() string {
	if !f.IsLocal() {
		return ""
	}

	p := f.URI.Path
	// "/C:/work" -> "C:/work"
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}

// String returns the folder URI.
func (f Folder) String() string {
	if f.URI == nil {
		return ""
	}
	return f.URI.String()
}

// Workspace is the ordered set of folders open in a session.
type Workspace struct {
	folders []Folder
}

// New creates a workspace from folders, preserving their order.
func New(folders ...Folder) *Workspace {
	return &Workspace{folders: append([]Folder(nil), folders...)}
}

// Open creates a workspace from folder locations (paths or URIs).
func Open(locations ...string) (*Workspace, error) {
	folders := make([]Folder, 0, len(locations))
	for _, loc := range locations {
		f, err := ParseFolder(loc)
		if err != nil {
			return nil, err
		}
		folders = append(folders, f)
	}
	return New(folders...), nil
}

// Folders returns the workspace folders in order.
func (w *Workspace) Folders() []Folder {
	if w == nil {
		return nil
	}
	return append([]Folder(nil), w.folders...)
}

// IsOpen reports whether at least one folder is open.
func (w *Workspace) IsOpen() bool {
	return w != nil && len(w.folders) > 0
}
