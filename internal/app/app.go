// Package app wires the dokd components together and owns their lifecycle.
package app

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/dshills/dokd/internal/config"
	"github.com/dshills/dokd/internal/dispatcher"
	"github.com/dshills/dokd/internal/dispatcher/handler"
	"github.com/dshills/dokd/internal/dokd"
	"github.com/dshills/dokd/internal/integration/task"
	"github.com/dshills/dokd/internal/integration/terminal"
	"github.com/dshills/dokd/internal/logging"
	"github.com/dshills/dokd/internal/prompt"
	"github.com/dshills/dokd/internal/workspace"
)

// Application is the central coordinator for the dokd components.
type Application struct {
	config    config.Config
	logger    *logging.Logger
	workspace *workspace.Workspace

	slot       *terminal.Slot
	prompter   prompt.Prompter
	commands   *dokd.Dispatcher
	discovery  *task.Discovery
	provider   *dokd.TaskProvider
	executor   *task.Executor
	dispatcher *dispatcher.Dispatcher

	// ctx bounds background work such as running tasks.
	ctx    context.Context
	cancel context.CancelFunc

	shutdownOnce sync.Once

	opts Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty means config.DefaultPath.
	ConfigPath string

	// Config replaces file and environment loading when set.
	Config *config.Config

	// Folders are the workspace folder paths or URIs. None means no
	// workspace is open.
	Folders []string

	// LogLevel overrides the configured log level.
	LogLevel string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// Stdin answers prompts. Defaults to os.Stdin.
	Stdin *os.File

	// Stdout receives terminal output and prompts. Defaults to os.Stdout.
	Stdout io.Writer

	// TerminalFactory replaces the PTY terminal factory.
	TerminalFactory terminal.Factory

	// Prompter replaces the default prompter.
	Prompter prompt.Prompter
}

// New creates an Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}
	app.ctx, app.cancel = context.WithCancel(context.Background())

	if err := app.bootstrap(); err != nil {
		app.cancel()
		return nil, err
	}
	return app, nil
}

// Dispatch runs a named action such as "dokd.buildAll" or "task.list".
func (app *Application) Dispatch(ctx context.Context, name string, args handler.Args) handler.Result {
	return app.dispatcher.Dispatch(ctx, handler.Action{Name: name, Args: args})
}

// Config returns the loaded configuration.
func (app *Application) Config() config.Config {
	return app.config
}

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger {
	return app.logger
}

// Workspace returns the open workspace.
func (app *Application) Workspace() *workspace.Workspace {
	return app.workspace
}

// Terminal returns the shared terminal slot.
func (app *Application) Terminal() *terminal.Slot {
	return app.slot
}

// Commands returns the DOK Dsc command dispatcher.
func (app *Application) Commands() *dokd.Dispatcher {
	return app.commands
}

// Tasks returns the task provider.
func (app *Application) Tasks() *dokd.TaskProvider {
	return app.provider
}

// Executor returns the task executor.
func (app *Application) Executor() *task.Executor {
	return app.executor
}

// Shutdown cancels running tasks and closes the terminal.
func (app *Application) Shutdown() {
	app.shutdownOnce.Do(func() {
		app.cancel()
		for _, exec := range app.executor.ListExecutions() {
			<-exec.Done()
		}
		if err := app.slot.Close(); err != nil {
			app.logger.Warn("close terminal: %v", err)
		}
		app.logger.Debug("shutdown complete")
	})
}
