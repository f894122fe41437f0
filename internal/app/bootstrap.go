package app

import (
	"os"

	"github.com/dshills/dokd/internal/config"
	"github.com/dshills/dokd/internal/dispatcher"
	dokdhandler "github.com/dshills/dokd/internal/dispatcher/handlers/dokd"
	"github.com/dshills/dokd/internal/dispatcher/handlers/tasks"
	"github.com/dshills/dokd/internal/dokd"
	"github.com/dshills/dokd/internal/integration/task"
	"github.com/dshills/dokd/internal/integration/task/sources"
	"github.com/dshills/dokd/internal/integration/terminal"
	"github.com/dshills/dokd/internal/logging"
	"github.com/dshills/dokd/internal/prompt"
	"github.com/dshills/dokd/internal/workspace"
)

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Config
	if app.opts.Config != nil {
		app.config = *app.opts.Config
	} else {
		path := app.opts.ConfigPath
		if path == "" {
			path = config.DefaultPath()
		}
		cfg, err := config.Load(path)
		if err != nil {
			return &InitError{Component: "config", Err: err}
		}
		app.config = cfg
	}
	if app.opts.LogLevel != "" {
		app.config.Logging.Level = app.opts.LogLevel
	}

	// 2. Logger
	app.logger = logging.New(logging.Config{
		Level:  logging.ParseLevel(app.config.Logging.Level),
		Output: app.opts.LogOutput,
		Prefix: "dokd",
	})

	// 3. Workspace
	ws, err := workspace.Open(app.opts.Folders...)
	if err != nil {
		return &InitError{Component: "workspace", Err: err}
	}
	app.workspace = ws

	// 4. Terminal slot
	stdout := app.opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	slotOpts := []terminal.SlotOption{
		terminal.WithSlotLogger(app.logger.WithComponent("terminal")),
	}
	if app.opts.TerminalFactory != nil {
		slotOpts = append(slotOpts, terminal.WithFactory(app.opts.TerminalFactory))
	}
	app.slot = terminal.NewSlot(terminal.Options{
		Name:    app.config.Terminal.Name,
		Shell:   app.config.Terminal.Shell,
		Args:    app.config.LaunchArgs(),
		WorkDir: app.workDir(),
		Cols:    app.config.Terminal.Cols,
		Rows:    app.config.Terminal.Rows,
		Output:  stdout,
	}, slotOpts...)

	// 5. Prompter
	app.prompter = app.opts.Prompter
	if app.prompter == nil {
		stdin := app.opts.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		app.prompter = prompt.Default(stdin, stdout)
	}

	// 6. DOK Dsc commands
	app.commands = dokd.NewDispatcher(app.workspace, app.slot, app.prompter,
		dokd.WithDispatcherLogger(app.logger.WithComponent("dispatcher")))

	// 7. Tasks
	app.discovery = task.NewDiscovery(
		task.WithSource(sources.NewDOKDscSource()),
		task.WithLogger(app.logger.WithComponent("discovery")),
	)
	app.provider = dokd.NewTaskProvider(app.workspace, app.discovery)
	app.executor = task.NewExecutor(task.ExecutorConfig{
		Shell:     app.config.Tasks.Shell,
		ShellArgs: app.config.Tasks.ShellArgs,
	})
	app.executor.AddListener(&taskLogger{logger: app.logger.WithComponent("tasks")})

	// 8. Action dispatcher
	app.dispatcher = dispatcher.New(dispatcher.DefaultConfig(),
		dispatcher.WithLogger(app.logger.WithComponent("actions")))
	app.dispatcher.RegisterNamespace(dokdhandler.New(app.commands))
	app.dispatcher.RegisterNamespace(tasks.New(app.ctx, app.provider, app.executor))

	app.logger.Debug("bootstrapped with %d workspace folder(s)", len(app.workspace.Folders()))
	return nil
}

// workDir starts the terminal in the first local workspace folder.
func (app *Application) workDir() string {
	for _, f := range app.workspace.Folders() {
		if f.IsLocal() {
			return f.FSPath()
		}
	}
	return ""
}

// taskLogger logs task execution events.
type taskLogger struct {
	logger *logging.Logger
}

func (l *taskLogger) OnExecutionStarted(exec *task.Execution) {
	l.logger.Info("task %q started (%s)", exec.Task.Name, exec.ID)
}

func (l *taskLogger) OnExecutionOutput(exec *task.Execution, line task.OutputLine) {}

func (l *taskLogger) OnExecutionCompleted(exec *task.Execution) {
	if err := exec.Err(); err != nil {
		l.logger.Warn("task %q %s: %v", exec.Task.Name, exec.State(), err)
		return
	}
	l.logger.Info("task %q %s in %s", exec.Task.Name, exec.State(), exec.Duration())
}
