package task

import (
	"context"
	"fmt"
	"sync"

	"github.com/dshills/dokd/internal/logging"
	"github.com/dshills/dokd/internal/workspace"
)

// Source contributes tasks for a workspace folder.
type Source interface {
	// Name returns the source name.
	Name() string

	// Discover returns the tasks for one local workspace folder.
	// A folder with nothing to contribute returns nil, nil.
	Discover(ctx context.Context, folder workspace.Folder) ([]*Task, error)
}

// DiscoveryError represents an error during discovery.
type DiscoveryError struct {
	Source string
	Folder string
	Err    error
}

func (e DiscoveryError) Error() string {
	if e.Folder != "" {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Folder, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e DiscoveryError) Unwrap() error {
	return e.Err
}

// Discovery collects tasks from registered sources across workspace folders.
//
// Discovery is best effort: a source failing for a folder contributes no
// tasks for that folder and the failure is only logged. Nothing is cached;
// every call reads the sources afresh.
type Discovery struct {
	mu      sync.RWMutex
	sources []Source
	logger  *logging.Logger
}

// DiscoveryOption configures a Discovery.
type DiscoveryOption func(*Discovery)

// WithSource registers a source.
func WithSource(source Source) DiscoveryOption {
	return func(d *Discovery) {
		d.sources = append(d.sources, source)
	}
}

// WithLogger sets the logger used for swallowed discovery failures.
func WithLogger(logger *logging.Logger) DiscoveryOption {
	return func(d *Discovery) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDiscovery creates a task discovery service.
func NewDiscovery(opts ...DiscoveryOption) *Discovery {
	d := &Discovery{logger: logging.Nop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RegisterSource registers a task source. Sources are consulted in
// registration order.
func (d *Discovery) RegisterSource(source Source) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sources = append(d.sources, source)
}

// Sources returns the registered source names in registration order.
func (d *Discovery) Sources() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, len(d.sources))
	for i, src := range d.sources {
		names[i] = src.Name()
	}
	return names
}

// Discover returns the tasks of all folders, concatenated in folder order
// and, within a folder, in the order each source produced them.
//
// Folders not backed by the local file system are skipped. Folders are
// processed one at a time. The only error returned is the context's.
func (d *Discovery) Discover(ctx context.Context, folders []workspace.Folder) ([]*Task, error) {
	d.mu.RLock()
	sources := append([]Source(nil), d.sources...)
	d.mu.RUnlock()

	result := make([]*Task, 0)
	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !folder.IsLocal() {
			d.logger.Debug("skipping non-local folder %s", folder)
			continue
		}

		for _, src := range sources {
			tasks, err := src.Discover(ctx, folder)
			if err != nil {
				d.logger.WithField("source", src.Name()).Debug("%v", DiscoveryError{
					Source: src.Name(),
					Folder: folder.FSPath(),
					Err:    err,
				})
				continue
			}

			for _, t := range tasks {
				if t.ID == "" {
					t.ID = generateTaskID(src.Name(), folder, t.Name)
				}
				if t.Source == "" {
					t.Source = src.Name()
				}
				if t.Cwd == "" {
					t.Cwd = folder.FSPath()
				}
				result = append(result, t)
			}
		}
	}

	return result, nil
}

// generateTaskID builds an identifier unique per source, folder and label.
func generateTaskID(source string, folder workspace.Folder, name string) string {
	return fmt.Sprintf("%s:%s:%s", source, folder.String(), name)
}
