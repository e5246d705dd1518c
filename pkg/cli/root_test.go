package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/subdesk/pkg/plans"
	"github.com/platinummonkey/subdesk/pkg/records"
	"github.com/platinummonkey/subdesk/pkg/storage"
	"github.com/platinummonkey/subdesk/pkg/subscribers"
)

// syncBuffer is a bytes.Buffer safe for the watch goroutines
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testEnv struct {
	app  *App
	out  *syncBuffer
	path string
}

// newTestEnv builds an App on a file store in a temp dir, reading input
func newTestEnv(t *testing.T, input string) *testEnv {
	t.Helper()

	path := filepath.Join(t.TempDir(), "users.txt")
	store, err := storage.NewFileStore(path)
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	reg := records.NewRegistry(plans.DefaultCatalog(), store, records.WithLogger(log))
	require.NoError(t, reg.Load(context.Background()))

	out := &syncBuffer{}
	return &testEnv{
		app: &App{
			Registry:  reg,
			Log:       log,
			In:        strings.NewReader(input),
			Out:       out,
			WatchPath: path,
		},
		out:  out,
		path: path,
	}
}

func (e *testEnv) addSubscriber(t *testing.T, name, phone, planName string, used float64) {
	t.Helper()
	plan, found := e.app.Registry.Catalog().Lookup(planName)
	require.True(t, found)
	_, err := e.app.Registry.Create(context.Background(), subscribers.Params{
		Name:         name,
		PhoneNumber:  phone,
		Plan:         plan,
		InitialUsage: used,
	})
	require.NoError(t, err)
}

func TestNewRootCommand(t *testing.T) {
	env := newTestEnv(t, "")
	root := NewRootCommand(env.app)

	// Test basic properties
	assert.Equal(t, "subdesk", root.Name)
	assert.Equal(t, "Subdesk - subscriber and plan record manager", root.Description)
	assert.NotNil(t, root.Subcommands)
	assert.NotNil(t, root.Flags)
	assert.NotNil(t, root.Run)

	// Test that all expected subcommands are registered
	expectedCommands := []string{
		"menu",
		"list",
		"plans",
		"add",
		"edit",
		"usage",
		"watch",
		"history",
	}

	for _, cmdName := range expectedCommands {
		assert.Contains(t, root.Subcommands, cmdName, "Expected subcommand %s to be registered", cmdName)
		assert.NotNil(t, root.Subcommands[cmdName], "Expected subcommand %s to be non-nil", cmdName)
	}

	// Verify the exact number of subcommands
	assert.Equal(t, len(expectedCommands), len(root.Subcommands))
}

func TestNewRootCommandDefaults(t *testing.T) {
	app := &App{}
	root := NewRootCommand(app)

	assert.NotNil(t, root)
	assert.NotNil(t, app.In)
	assert.NotNil(t, app.Out)
	assert.NotNil(t, app.Log)
}

func TestCommandUsage(t *testing.T) {
	env := newTestEnv(t, "")
	root := NewRootCommand(env.app)

	err := root.usage()
	assert.NoError(t, err)

	output := env.out.String()
	assert.Contains(t, output, "Usage: subdesk [command] [args]")
	assert.Contains(t, output, "Commands:")
	for name := range root.Subcommands {
		assert.Contains(t, output, name)
	}

	// Sorted for stable output
	assert.Less(t, strings.Index(output, "  add"), strings.Index(output, "  watch"))
}

func TestCommandExecute_Help(t *testing.T) {
	for _, arg := range []string{"-h", "--help", "help"} {
		t.Run(arg, func(t *testing.T) {
			env := newTestEnv(t, "")
			root := NewRootCommand(env.app)

			err := root.ExecuteArgs(context.Background(), []string{arg})
			assert.NoError(t, err)
			assert.Contains(t, env.out.String(), "Usage: subdesk")
		})
	}
}

func TestCommandExecute_NoArgsRunsMenu(t *testing.T) {
	env := newTestEnv(t, "4\n")
	root := NewRootCommand(env.app)

	err := root.ExecuteArgs(context.Background(), nil)
	assert.NoError(t, err)
	assert.Contains(t, env.out.String(), "1. View all users")
	assert.Contains(t, env.out.String(), "Exiting program...")
}

func TestCommandExecute_NoArgsWithoutRun(t *testing.T) {
	env := newTestEnv(t, "")
	root := NewRootCommand(env.app)
	root.Run = nil

	err := root.ExecuteArgs(context.Background(), nil)
	assert.NoError(t, err)
	assert.Contains(t, env.out.String(), "Usage: subdesk")
}

func TestCommandExecute_UnknownCommand(t *testing.T) {
	env := newTestEnv(t, "")
	root := NewRootCommand(env.app)

	err := root.ExecuteArgs(context.Background(), []string{"delete"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command: delete")
}

func TestCommandExecute_Subcommand(t *testing.T) {
	env := newTestEnv(t, "")
	env.addSubscriber(t, "Alice", "555-0100", "Basic", 1)
	root := NewRootCommand(env.app)

	err := root.ExecuteArgs(context.Background(), []string{"list"})
	require.NoError(t, err)
	assert.Contains(t, env.out.String(), "1. Alice (555-0100) - Plan: Basic, Internet used: 1 GB")
}
