// Package sources provides task source implementations.
package sources

import (
	"context"
	"errors"
	"io/fs"

	"github.com/dshills/dokd/internal/dokd"
	"github.com/dshills/dokd/internal/integration/task"
	"github.com/dshills/dokd/internal/workspace"
)

// DOKDscSource discovers collection tasks from .dokd/settings.json.
type DOKDscSource struct{}

// NewDOKDscSource creates a new DOK Dsc source.
func NewDOKDscSource() *DOKDscSource {
	return &DOKDscSource{}
}

// Name returns the source name.
func (s *DOKDscSource) Name() string {
	return dokd.SourceName
}

// Discover returns the build, full build and publish tasks of every
// collection declared by the folder's settings file. A folder without a
// settings file or without collections contributes nothing.
func (s *DOKDscSource) Discover(ctx context.Context, folder workspace.Folder) ([]*task.Task, error) {
	root := folder.FSPath()
	if root == "" {
		return nil, nil
	}

	settings, err := workspace.LoadSettings(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, workspace.ErrNoCollections) {
			return nil, nil
		}
		return nil, err
	}

	var tasks []*task.Task
	for _, c := range settings.Collections {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		tasks = append(tasks,
			dokd.NewBuildTask(root, c.Name, false),
			dokd.NewBuildTask(root, c.Name, true),
			dokd.NewPublishTask(root, c.Name),
		)
	}

	return tasks, nil
}
