package loader

import (
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// EnvLoader loads configuration from prefixed environment variables.
// DOKD_TERMINAL_STARTUP_SCRIPT sets terminal.startupScript: the first word
// names the section and the rest form a camelCase key.
type EnvLoader struct {
	prefix  string
	mapping map[string]string // env var -> config path
	environ func() []string
}

// NewEnvLoader creates an environment loader. The prefix includes the
// trailing underscore, e.g. "DOKD_".
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: make(map[string]string),
		environ: os.Environ,
	}
}

// AddMapping routes an environment variable to an explicit config path.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	l.mapping[envVar] = configPath
}

// Load returns the configuration set through the environment. Empty values
// count as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}

		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		setByPath(config, path, ParseValue(value))
	}

	return config, nil
}

// envToPath converts DOKD_TASKS_SHELL_ARGS to tasks.shellArgs.
func (l *EnvLoader) envToPath(env string) string {
	parts := strings.Split(strings.TrimPrefix(env, l.prefix), "_")
	if len(parts) == 0 || parts[0] == "" {
		return ""
	}

	section := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return section
	}

	key := strings.ToLower(parts[1])
	for _, part := range parts[2:] {
		if part != "" {
			key += strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
		}
	}
	return section + "." + key
}

// ParseValue converts an environment string to a bool, integer, float,
// JSON array or object, falling back to the string itself.
func ParseValue(s string) any {
	switch strings.ToLower(s) {
	case "":
		return s
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if (strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")) && gjson.Valid(s) {
		return gjson.Parse(s).Value()
	}

	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
