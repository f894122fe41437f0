package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/dokd/internal/config/loader"
	"github.com/dshills/dokd/internal/logging"
)

// EnvPrefix prefixes environment variables read as configuration.
const EnvPrefix = "DOKD_"

// StartupScriptName is the terminal startup script shipped with dokd.
const StartupScriptName = "terminalStartup.ps1"

// Config is the dokd host configuration.
type Config struct {
	Terminal TerminalConfig `toml:"terminal"`
	Tasks    TasksConfig    `toml:"tasks"`
	Logging  LoggingConfig  `toml:"logging"`
}

// TerminalConfig configures the shared DOK Dsc terminal.
type TerminalConfig struct {
	// Name is the terminal's display name.
	Name string `toml:"name"`

	// Shell is the PowerShell executable.
	Shell string `toml:"shell"`

	// Args precede the startup script path on the shell command line.
	Args []string `toml:"args"`

	// StartupScript is run by the shell when the terminal starts.
	StartupScript string `toml:"startupScript"`

	Cols int `toml:"cols"`
	Rows int `toml:"rows"`
}

// TasksConfig configures the task executor.
type TasksConfig struct {
	Shell     string   `toml:"shell"`
	ShellArgs []string `toml:"shellArgs"`
}

// LoggingConfig configures the application logger.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	shell := "pwsh"
	if runtime.GOOS == "windows" {
		shell = "PowerShell.exe"
	}

	return Config{
		Terminal: TerminalConfig{
			Name:          "DOK Dsc",
			Shell:         shell,
			Args:          []string{"-NoExit", "-File"},
			StartupScript: defaultStartupScript(),
			Cols:          120,
			Rows:          30,
		},
		Tasks: TasksConfig{
			Shell:     shell,
			ShellArgs: []string{"-NoProfile", "-Command"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultStartupScript locates the startup script next to the executable.
func defaultStartupScript() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join("scripts", StartupScriptName)
	}
	return filepath.Join(filepath.Dir(exe), "scripts", StartupScriptName)
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dokd", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "dokd", "config.toml")
}

// Load builds the configuration from defaults, the TOML file at path and
// the environment. A missing file is not an error; an empty path skips
// the file layer.
func Load(path string) (Config, error) {
	layers := []loader.Loader{}
	if path != "" {
		layers = append(layers, loader.NewTOMLLoader(path))
	}
	env := loader.NewEnvLoader(EnvPrefix)
	env.AddMapping(EnvPrefix+"LOG_LEVEL", "logging.level")
	layers = append(layers, env)

	return LoadLayers(layers...)
}

// LoadLayers merges the given layers over the defaults.
func LoadLayers(layers ...loader.Loader) (Config, error) {
	merged, err := toMap(Default())
	if err != nil {
		return Config{}, err
	}

	for _, l := range layers {
		data, err := l.Load()
		if err != nil {
			return Config{}, err
		}
		merged = loader.DeepMerge(merged, data)
	}

	data, err := toml.Marshal(merged)
	if err != nil {
		return Config{}, fmt.Errorf("encode config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func toMap(cfg Config) (map[string]any, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}
	return loader.Parse("<defaults>", data)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.Terminal.Shell == "":
		return &ValidationError{Path: "terminal.shell", Message: "must not be empty"}
	case c.Terminal.Cols < 0:
		return &ValidationError{Path: "terminal.cols", Message: "must not be negative"}
	case c.Terminal.Rows < 0:
		return &ValidationError{Path: "terminal.rows", Message: "must not be negative"}
	case c.Tasks.Shell == "":
		return &ValidationError{Path: "tasks.shell", Message: "must not be empty"}
	case !logging.ValidLevel(c.Logging.Level):
		return &ValidationError{Path: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	return nil
}

// LaunchArgs returns the terminal shell arguments: the configured args
// followed by the startup script.
func (c Config) LaunchArgs() []string {
	args := append([]string(nil), c.Terminal.Args...)
	if c.Terminal.StartupScript != "" {
		args = append(args, c.Terminal.StartupScript)
	}
	return args
}
