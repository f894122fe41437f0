package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTOMLLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", `
[terminal]
shell = "pwsh"
args = ["-NoExit", "-File"]
cols = 120
`)

	config, err := NewTOMLLoader(path).Load()
	require.NoError(t, err)

	terminal := config["terminal"].(map[string]any)
	assert.Equal(t, "pwsh", terminal["shell"])
	assert.Equal(t, []any{"-NoExit", "-File"}, terminal["args"])
	assert.Equal(t, int64(120), terminal["cols"])
}

func TestTOMLLoaderMissingFile(t *testing.T) {
	config, err := NewTOMLLoader(filepath.Join(t.TempDir(), "none.toml")).Load()
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestTOMLLoaderInvalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.toml", "[terminal\nshell = ")

	_, err := NewTOMLLoader(path).Load()
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, path, perr.Path)
	assert.Positive(t, perr.Line)
}

func TestTOMLLoaderIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.toml", `
[terminal]
shell = "powershell"
cols = 100

[logging]
level = "warn"
`)
	path := writeFile(t, dir, "config.toml", `
"@include" = "base.toml"

[terminal]
shell = "pwsh"
`)

	config, err := NewTOMLLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"terminal": map[string]any{"shell": "pwsh", "cols": int64(100)},
		"logging":  map[string]any{"level": "warn"},
	}, config)
}

func TestTOMLLoaderIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.toml", `"@include" = "b.toml"`)
	writeFile(t, dir, "b.toml", `"@include" = "a.toml"`)

	_, err := NewTOMLLoader(filepath.Join(dir, "a.toml")).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include depth exceeded")
}

func TestTOMLLoaderBadInclude(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `"@include" = 3`)

	_, err := NewTOMLLoader(path).Load()
	assert.Error(t, err)
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"terminal": map[string]any{"shell": "pwsh", "cols": int64(80)},
		"logging":  map[string]any{"level": "info"},
	}
	src := map[string]any{
		"terminal": map[string]any{"cols": int64(120)},
		"logging":  "off",
	}

	got := DeepMerge(dst, src)
	assert.Equal(t, map[string]any{
		"terminal": map[string]any{"shell": "pwsh", "cols": int64(120)},
		"logging":  "off",
	}, got)

	assert.Equal(t, map[string]any{"a": 1}, DeepMerge(nil, map[string]any{"a": 1}))
}

func TestClone(t *testing.T) {
	src := map[string]any{
		"terminal": map[string]any{"args": []any{"-NoExit"}},
	}

	dst := Clone(src)
	dst["terminal"].(map[string]any)["args"].([]any)[0] = "-NoLogo"

	assert.Equal(t, "-NoExit", src["terminal"].(map[string]any)["args"].([]any)[0])
	assert.Nil(t, Clone(nil))
}
