package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dshills/dokd/internal/app"
	"github.com/dshills/dokd/internal/integration/terminal"
	"github.com/dshills/dokd/internal/workspace"
)

type fakeSession struct {
	mu   sync.Mutex
	sent []string
	done chan struct{}
	once sync.Once
}

func (s *fakeSession) ID() string   { return "fake" }
func (s *fakeSession) Name() string { return "DOK Dsc" }
func (s *fakeSession) PID() int     { return 7 }
func (s *fakeSession) Show() error  { return nil }

func (s *fakeSession) SendText(text string, addNewLine bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, text)
	return nil
}

func (s *fakeSession) Done() <-chan struct{} { return s.done }

func (s *fakeSession) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

type harness struct {
	cli      *cli
	sessions []*fakeSession
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{}
	h.cli = &cli{newApp: func(opts app.Options) (*app.Application, error) {
		opts.TerminalFactory = func(terminal.Options) (terminal.Session, error) {
			s := &fakeSession{done: make(chan struct{})}
			h.sessions = append(h.sessions, s)
			return s, nil
		}
		return app.New(opts)
	}}
	return h
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := h.cli.rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.toml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func workspaceWith(t *testing.T, settings string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, workspace.SettingsDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, workspace.SettingsFile), []byte(settings), 0o644))
	return root
}

func TestVersion(t *testing.T) {
	out, err := newHarness(t).run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dokd dev")
}

func TestTasksText(t *testing.T) {
	root := workspaceWith(t, `{"collections":[{"name":"Web"}]}`)

	out, err := newHarness(t).run(t, "tasks", "-f", root)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "Build collection Web "))
	assert.True(t, strings.HasPrefix(lines[2], "Build collection Web (Full)"))
	assert.True(t, strings.HasPrefix(lines[3], "Publish collection Web"))
}

func TestTasksJSON(t *testing.T) {
	root := workspaceWith(t, `{"collections":[{"name":"Web"}]}`)

	out, err := newHarness(t).run(t, "tasks", "-f", root, "--output", "json")
	require.NoError(t, err)

	var tasks []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 3)
	assert.Equal(t, "Publish collection Web", tasks[2]["name"])
	assert.Equal(t, "DOK Dsc", tasks[2]["source"])
	assert.Equal(t, map[string]any{"type": "dokd", "collectionName": "Web"}, tasks[2]["definition"])
}

func TestTasksYAML(t *testing.T) {
	root := workspaceWith(t, `{"collections":[{"name":"Web"}]}`)

	out, err := newHarness(t).run(t, "tasks", "-f", root, "-o", "yaml")
	require.NoError(t, err)

	var tasks []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 3)
	assert.Equal(t, "build", tasks[0]["group"])
}

func TestTasksNoSettings(t *testing.T) {
	out, err := newHarness(t).run(t, "tasks", "-f", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "No tasks found\n", out)
}

func TestTasksInvalidOutput(t *testing.T) {
	_, err := newHarness(t).run(t, "tasks", "-o", "xml")
	assert.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := newHarness(t).run(t, "--log-level", "loud", "version")
	assert.Error(t, err)
}

func TestNewCollectionDetached(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "new-collection", "--name", "O'Brien", "--detach", "-f", t.TempDir())
	require.NoError(t, err)

	require.Len(t, h.sessions, 1)
	assert.Equal(t, []string{"New-DOKDscCollection -Name 'O''Brien';"}, h.sessions[0].sent)
}

func TestBuildAllDetached(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "build-all", "--detach", "-f", t.TempDir())
	require.NoError(t, err)

	require.Len(t, h.sessions, 1)
	assert.Equal(t, []string{"Invoke-DOKDscBuild;"}, h.sessions[0].sent)
}

func TestRunUnknownTask(t *testing.T) {
	_, err := newHarness(t).run(t, "run", "Build collection Nope", "-f", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
