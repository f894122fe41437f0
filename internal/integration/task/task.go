package task

import (
	"errors"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// TaskType identifies how a task's command is run.
type TaskType string

const (
	// TaskTypeShell is a command line run through the task shell.
	TaskTypeShell TaskType = "shell"
	// TaskTypeProcess is an executable run directly.
	TaskTypeProcess TaskType = "process"
)

// TaskGroup categorizes tasks.
type TaskGroup string

const (
	// TaskGroupBuild contains build tasks.
	TaskGroupBuild TaskGroup = "build"
	// TaskGroupPublish contains publish tasks.
	TaskGroupPublish TaskGroup = "publish"
	// TaskGroupOther contains uncategorized tasks.
	TaskGroupOther TaskGroup = "other"
)

// Task is a task descriptor handed to the host task system.
type Task struct {
	// ID is a unique identifier for the task.
	ID string `json:"id" yaml:"id"`

	// Name is the display label of the task.
	Name string `json:"name" yaml:"name"`

	// Description is a human-readable description.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Source identifies the provider that contributed the task.
	Source string `json:"source" yaml:"source"`

	// SourceFile is the file the task was derived from.
	SourceFile string `json:"sourceFile,omitempty" yaml:"sourceFile,omitempty"`

	// Type is the task type.
	Type TaskType `json:"type" yaml:"type"`

	// Group is the task category.
	Group TaskGroup `json:"group" yaml:"group"`

	// Command is the command line to execute.
	Command string `json:"command" yaml:"command"`

	// Args are arguments for process tasks.
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`

	// Cwd is the working directory for the task.
	Cwd string `json:"cwd,omitempty" yaml:"cwd,omitempty"`

	// Env are environment variables for the task.
	Env map[string]string `json:"env,omitempty" yaml:"env,omitempty"`

	// Definition is the structured task kind the host uses to re-run or
	// customize the task.
	Definition Definition `json:"definition,omitempty" yaml:"definition,omitempty"`
}

// ErrInvalidDefinition is returned when a task definition is not valid JSON.
var ErrInvalidDefinition = errors.New("invalid task definition")

// Definition is a task kind encoded as a JSON object. It always carries a
// "type" property naming the provider.
type Definition []byte

// NewDefinition creates a definition for the given provider type.
func NewDefinition(taskType string) Definition {
	d, err := sjson.SetBytes(nil, "type", taskType)
	if err != nil {
		return nil
	}
	return d
}

// With returns a copy of the definition with key set to value.
// The receiver is left unchanged.
func (d Definition) With(key string, value any) Definition {
	src := append([]byte(nil), d...)
	out, err := sjson.SetBytes(src, key, value)
	if err != nil {
		return d
	}
	return out
}

// Type returns the provider type of the definition.
func (d Definition) Type() string {
	return d.Get("type").String()
}

// Get returns the value at the given property path.
func (d Definition) Get(path string) gjson.Result {
	return gjson.GetBytes(d, path)
}

// MarshalJSON implements json.Marshaler.
func (d Definition) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return append([]byte(nil), d...), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Definition) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = nil
		return nil
	}
	if !gjson.ValidBytes(data) {
		return ErrInvalidDefinition
	}
	*d = append((*d)[:0], data...)
	return nil
}

// MarshalYAML renders the definition as a plain mapping.
func (d Definition) MarshalYAML() (any, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return gjson.ParseBytes(d).Value(), nil
}

// String returns the JSON form of the definition.
func (d Definition) String() string {
	return string(d)
}
