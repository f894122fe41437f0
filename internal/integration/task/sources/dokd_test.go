package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/dokd/internal/integration/task"
	"github.com/dshills/dokd/internal/workspace"
)

func writeSettings(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, workspace.SettingsDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, workspace.SettingsFile), []byte(content), 0o644))
}

func folderAt(t *testing.T, root string) workspace.Folder {
	t.Helper()
	f, err := workspace.NewFolder(root)
	require.NoError(t, err)
	return f
}

func TestDOKDscSource_Name(t *testing.T) {
	assert.Equal(t, "DOK Dsc", NewDOKDscSource().Name())
}

func TestDOKDscSource_DiscoverSingleCollection(t *testing.T) {
	root := t.TempDir()
	writeSettings(t, root, `{"collections":[{"name":"Web"}]}`)
	folder := folderAt(t, root)
	path := folder.FSPath()

	tasks, err := NewDOKDscSource().Discover(context.Background(), folder)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, "Build collection Web", tasks[0].Name)
	assert.Equal(t, "Invoke-DOKDscBuild -WorkspacePath '"+path+"' -Name 'Web';", tasks[0].Command)
	assert.Equal(t, task.TaskGroupBuild, tasks[0].Group)
	assert.False(t, tasks[0].Definition.Get("force").Bool())

	assert.Equal(t, "Build collection Web (Full)", tasks[1].Name)
	assert.Equal(t, "Invoke-DOKDscBuild -WorkspacePath '"+path+"' -Name 'Web' -Force;", tasks[1].Command)
	assert.True(t, tasks[1].Definition.Get("force").Bool())

	assert.Equal(t, "Publish collection Web", tasks[2].Name)
	assert.Equal(t, "Publish-DOKDscCollection -WorkspacePath '"+path+"' -Name 'Web';", tasks[2].Command)
	assert.Equal(t, task.TaskGroupPublish, tasks[2].Group)
	assert.False(t, tasks[2].Definition.Get("force").Exists())

	for _, tk := range tasks {
		assert.Equal(t, "DOK Dsc", tk.Source)
		assert.Equal(t, path, tk.Cwd)
		assert.Equal(t, task.TaskTypeShell, tk.Type)
		assert.Equal(t, "dokd", tk.Definition.Type())
		assert.Equal(t, "Web", tk.Definition.Get("collectionName").String())
		assert.Equal(t, workspace.SettingsPath(path), tk.SourceFile)
	}
}

func TestDOKDscSource_DiscoverPreservesOrder(t *testing.T) {
	root := t.TempDir()
	writeSettings(t, root, `{"collections":[{"name":"Web"},{"name":"Sql"},{"name":"Base"}]}`)

	tasks, err := NewDOKDscSource().Discover(context.Background(), folderAt(t, root))
	require.NoError(t, err)
	require.Len(t, tasks, 9)

	var names []string
	for _, tk := range tasks {
		names = append(names, tk.Name)
	}
	assert.Equal(t, []string{
		"Build collection Web", "Build collection Web (Full)", "Publish collection Web",
		"Build collection Sql", "Build collection Sql (Full)", "Publish collection Sql",
		"Build collection Base", "Build collection Base (Full)", "Publish collection Base",
	}, names)
}

func TestDOKDscSource_DiscoverLooseEntries(t *testing.T) {
	root := t.TempDir()
	writeSettings(t, root, `{"collections":[{"name":"Web"},{"name":5},{}]}`)

	tasks, err := NewDOKDscSource().Discover(context.Background(), folderAt(t, root))
	require.NoError(t, err)
	require.Len(t, tasks, 9)

	var collections []string
	for _, tk := range tasks {
		collections = append(collections, tk.Definition.Get("collectionName").String())
	}
	assert.Equal(t, []string{
		"Web", "Web", "Web",
		"5", "5", "5",
		"undefined", "undefined", "undefined",
	}, collections)
	assert.Equal(t, "Build collection undefined", tasks[6].Name)
}

func TestDOKDscSource_DiscoverNothing(t *testing.T) {
	tests := []struct {
		name     string
		settings string
		wantErr  bool
	}{
		{name: "missing file"},
		{name: "missing collections", settings: `{"other":true}`},
		{name: "null collections", settings: `{"collections":null}`},
		{name: "empty collections", settings: `{"collections":[]}`},
		{name: "malformed json", settings: `{"collections":[`, wantErr: true},
		{name: "collections not an array", settings: `{"collections":{"name":"Web"}}`, wantErr: true},
		{name: "null entry", settings: `{"collections":[{"name":"Web"},null]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if tt.settings != "" {
				writeSettings(t, root, tt.settings)
			}

			tasks, err := NewDOKDscSource().Discover(context.Background(), folderAt(t, root))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Empty(t, tasks)
		})
	}
}

func TestDOKDscSource_DiscoverRemoteFolder(t *testing.T) {
	folder, err := workspace.ParseFolder("vscode-vfs://github/org/repo")
	require.NoError(t, err)

	tasks, err := NewDOKDscSource().Discover(context.Background(), folder)
	assert.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestDOKDscSource_DiscoverCancelled(t *testing.T) {
	root := t.TempDir()
	writeSettings(t, root, `{"collections":[{"name":"Web"}]}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDOKDscSource().Discover(ctx, folderAt(t, root))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDOKDscSource_WithDiscovery(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	writeSettings(t, a, `{"collections":[{"name":"A"}]}`)
	writeSettings(t, b, `{"collections":[{"name":"B1"},{"name":"B2"}]}`)
	broken := t.TempDir()
	writeSettings(t, broken, `not json`)

	d := task.NewDiscovery(task.WithSource(NewDOKDscSource()))
	tasks, err := d.Discover(context.Background(), []workspace.Folder{
		folderAt(t, a), folderAt(t, broken), folderAt(t, b),
	})
	require.NoError(t, err)
	require.Len(t, tasks, 9)
	assert.Equal(t, "Build collection A", tasks[0].Name)
	assert.Equal(t, "Build collection B1", tasks[3].Name)
	assert.Equal(t, "Publish collection B2", tasks[8].Name)
}
