package dokd

import (
	"fmt"
	"strings"

	"github.com/dshills/dokd/internal/integration/task"
	"github.com/dshills/dokd/internal/workspace"
)

// Command identifiers exposed to the host.
const (
	CommandInitWorkspace  = "dokd.initWorkspace"
	CommandRestoreModules = "dokd.restoreModules"
	CommandBuildAll       = "dokd.buildAll"
	CommandNewCollection  = "dokd.newCollection"
)

const (
	// TaskType is the definition type of every dokd task.
	TaskType = "dokd"

	// SourceName names the task source and the terminal.
	SourceName = "DOK Dsc"
)

// Fixed command lines sent to the terminal.
const (
	InitWorkspaceCommand  = "Initialize-DOKDsc;"
	RestoreModulesCommand = "Restore-DOKDscModule;"
	BuildAllCommand       = "Invoke-DOKDscBuild;"
)

// Quote renders s as a PowerShell single-quoted string literal.
// Embedded single quotes are doubled.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// NewCollectionCommand returns the command creating a collection.
func NewCollectionCommand(name string) string {
	return fmt.Sprintf("New-DOKDscCollection -Name %s;", Quote(name))
}

// BuildCommand returns the command building one collection of the
// workspace at path. force requests a full rebuild.
func BuildCommand(path, name string, force bool) string {
	cmd := fmt.Sprintf("Invoke-DOKDscBuild -WorkspacePath %s -Name %s", Quote(path), Quote(name))
	if force {
		cmd += " -Force"
	}
	return cmd + ";"
}

// PublishCommand returns the command publishing one collection of the
// workspace at path.
func PublishCommand(path, name string) string {
	return fmt.Sprintf("Publish-DOKDscCollection -WorkspacePath %s -Name %s;", Quote(path), Quote(name))
}

// BuildLabel returns the display label of a build task.
func BuildLabel(name string, force bool) string {
	if force {
		return "Build collection " + name + " (Full)"
	}
	return "Build collection " + name
}

// PublishLabel returns the display label of a publish task.
func PublishLabel(name string) string {
	return "Publish collection " + name
}

// NewBuildTask creates the build task of a collection in the workspace
// folder at root.
func NewBuildTask(root, name string, force bool) *task.Task {
	return &task.Task{
		Name:        BuildLabel(name, force),
		Description: buildDescription(name, force),
		Source:      SourceName,
		SourceFile:  workspace.SettingsPath(root),
		Type:        task.TaskTypeShell,
		Group:       task.TaskGroupBuild,
		Command:     BuildCommand(root, name, force),
		Cwd:         root,
		Definition: task.NewDefinition(TaskType).
			With("collectionName", name).
			With("force", force),
	}
}

// NewPublishTask creates the publish task of a collection in the workspace
// folder at root.
func NewPublishTask(root, name string) *task.Task {
	return &task.Task{
		Name:        PublishLabel(name),
		Description: "Publish the " + name + " collection",
		Source:      SourceName,
		SourceFile:  workspace.SettingsPath(root),
		Type:        task.TaskTypeShell,
		Group:       task.TaskGroupPublish,
		Command:     PublishCommand(root, name),
		Cwd:         root,
		Definition:  task.NewDefinition(TaskType).With("collectionName", name),
	}
}

func buildDescription(name string, force bool) string {
	if force {
		return "Rebuild every configuration of the " + name + " collection"
	}
	return "Build the changed configurations of the " + name + " collection"
}
