package dokd

import (
	"context"
	"fmt"

	"github.com/dshills/dokd/internal/integration/terminal"
	"github.com/dshills/dokd/internal/logging"
	"github.com/dshills/dokd/internal/prompt"
	"github.com/dshills/dokd/internal/workspace"
)

// Prompt texts of the new collection input box.
const (
	NewCollectionPrompt      = "Enter the collection name"
	NewCollectionPlaceHolder = "Type the name of the collection to create"
)

// Workspace is the set of open workspace folders.
type Workspace interface {
	IsOpen() bool
	Folders() []workspace.Folder
}

// Terminals hands out the terminal commands are sent to.
type Terminals interface {
	Acquire() (terminal.Session, error)
}

// Dispatcher sends DOK Dsc commands to the shared terminal.
type Dispatcher struct {
	workspace Workspace
	terminals Terminals
	prompter  prompt.Prompter
	logger    *logging.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the dispatcher logger.
func WithDispatcherLogger(logger *logging.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates a command dispatcher.
func NewDispatcher(ws Workspace, terminals Terminals, prompter prompt.Prompter, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		workspace: ws,
		terminals: terminals,
		prompter:  prompter,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// InitWorkspace initializes the DOK Dsc workspace.
func (d *Dispatcher) InitWorkspace() error {
	return d.send(InitWorkspaceCommand)
}

// RestoreModules restores the workspace's PowerShell modules.
func (d *Dispatcher) RestoreModules() error {
	return d.send(RestoreModulesCommand)
}

// BuildAll builds every collection.
func (d *Dispatcher) BuildAll() error {
	return d.send(BuildAllCommand)
}

// NewCollection asks for a collection name and creates the collection.
// A dismissed prompt returns ErrPromptCancelled without touching the
// terminal. An empty name is sent as is.
func (d *Dispatcher) NewCollection(ctx context.Context) error {
	if !d.isOpen() {
		return ErrNoWorkspace
	}

	name, ok, err := d.prompter.ShowInputBox(ctx, prompt.InputBoxOptions{
		Prompt:      NewCollectionPrompt,
		PlaceHolder: NewCollectionPlaceHolder,
	})
	if err != nil {
		return fmt.Errorf("prompt collection name: %w", err)
	}
	if !ok {
		d.logger.Debug("new collection prompt dismissed")
		return ErrPromptCancelled
	}

	return d.send(NewCollectionCommand(name))
}

// NewCollectionNamed creates a collection without prompting.
func (d *Dispatcher) NewCollectionNamed(name string) error {
	return d.send(NewCollectionCommand(name))
}

func (d *Dispatcher) isOpen() bool {
	return d.workspace != nil && d.workspace.IsOpen()
}

// send writes one command line to the terminal and shows it.
func (d *Dispatcher) send(command string) error {
	if !d.isOpen() {
		return ErrNoWorkspace
	}

	sess, err := d.terminals.Acquire()
	if err != nil {
		return fmt.Errorf("acquire terminal: %w", err)
	}

	d.logger.Debug("sending %q to terminal %s", command, sess.ID())
	if err := sess.SendText(command, true); err != nil {
		return err
	}
	if err := sess.Show(); err != nil {
		return err
	}
	return nil
}
