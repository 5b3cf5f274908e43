package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/4thel00z/memtree/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupE2E initializes a project workspace in a temp dir and returns an app
// resolving to it.
func setupE2E(t *testing.T) (*app, string) {
	t.Helper()
	work := t.TempDir()
	a := newApp(internal.NewScopeResolverAt(t.TempDir(), work))

	run(t, a, nil, "init")
	return a, work
}

// run executes one CLI invocation and returns its stdout.
func run(t *testing.T, a *app, stdin io.Reader, args ...string) string {
	t.Helper()
	out, err := tryRun(a, stdin, args...)
	require.NoError(t, err, "memtree %s", strings.Join(args, " "))
	return out
}

func tryRun(a *app, stdin io.Reader, args ...string) (string, error) {
	root := NewRootCmd("test", a)
	root.SetArgs(args)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	root.SetIn(stdin)
	err := root.Execute()
	return out.String(), err
}

func addedID(t *testing.T, out string) string {
	t.Helper()
	id, ok := strings.CutPrefix(strings.TrimSpace(out), "Added ")
	require.True(t, ok, "unexpected add output %q", out)
	return id
}

func TestE2EFullWorkflow(t *testing.T) {
	a, _ := setupE2E(t)

	// 1. Build a small tree
	root := addedID(t, run(t, a, nil, "add", "Childhood", "Growing up by the sea", "--date", "1995-07-01"))
	school := addedID(t, run(t, a, nil, "add", "School", "First day", "--parent", root, "--date", "2001-09-01"))
	addedID(t, run(t, a, strings.NewReader("Bike ride\n"), "add", "Summer", "--parent", school, "--date", "2002-06-01"))
	other := addedID(t, run(t, a, nil, "add", "Trip", "Mountains", "--date", "2010-08-10"))

	// 2. The tree renders with nesting
	tree := run(t, a, nil, "list")
	assert.Contains(t, tree, "1995-07-01  Childhood  "+root)
	assert.Contains(t, tree, "└── 2001-09-01  School")
	assert.Contains(t, tree, "    └── 2002-06-01  Summer")

	// 3. Stats see every active memory
	var stats internal.Statistics
	require.NoError(t, json.Unmarshal([]byte(run(t, a, nil, "stats", "--json")), &stats))
	assert.Equal(t, 4, stats.TotalMemories)
	assert.Equal(t, 2, stats.RootMemories)
	assert.Equal(t, 3, stats.DeepestBranch)

	// 4. Archive a subtree and find it in the archive
	assert.Contains(t, run(t, a, nil, "archive", school), "(2 memories)")
	assert.NotContains(t, run(t, a, nil, "list"), "School")
	assert.Contains(t, run(t, a, nil, "archived", "--search", "first"), "School")
	assert.Contains(t, run(t, a, nil, "archived", "--year", "2001"), school)
	assert.Contains(t, run(t, a, nil, "archived", "--year", "1990"), "No archived memories.")

	// 5. Restore it as a new root
	run(t, a, nil, "restore", school)
	require.NoError(t, json.Unmarshal([]byte(run(t, a, nil, "stats", "--json")), &stats))
	assert.Equal(t, 3, stats.RootMemories)

	// 6. Delete with --yes
	assert.Contains(t, run(t, a, nil, "rm", other, "--yes"), "Deleted "+other)
	_, err := tryRun(a, nil, "show", other)
	assert.ErrorIs(t, err, internal.ErrNodeNotFound)

	// 7. Every step is in the history
	log := run(t, a, nil, "log", "--oneline", "-n", "20")
	assert.Contains(t, log, "add: Childhood")
	assert.Contains(t, log, "archive: School")
	assert.Contains(t, log, "restore: School")
	assert.Contains(t, log, "delete: Trip")
	assert.Contains(t, log, "init: initialize memtree store")
}

func TestE2EShowAndMedia(t *testing.T) {
	a, work := setupE2E(t)

	photo := filepath.Join(work, "note.txt")
	require.NoError(t, os.WriteFile(photo, []byte("hello from the beach"), 0644))

	id := addedID(t, run(t, a, nil, "add", "Beach", "Sunny", "--attach", photo))

	out := run(t, a, nil, "show", id)
	assert.Contains(t, out, "Beach")
	assert.Contains(t, out, "note.txt (text/plain)")

	dir := filepath.Join(work, "media")
	run(t, a, nil, "show", id, "--save-media", dir)
	data, err := os.ReadFile(filepath.Join(dir, "note.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello from the beach", string(data))
}

func TestE2EMediaTooLarge(t *testing.T) {
	a, work := setupE2E(t)

	scope := internal.NewScope(internal.ScopeProject, work)
	cfg := internal.DefaultConfig()
	cfg.Media.MaxSizeBytes = 8
	require.NoError(t, internal.SaveConfig(scope, cfg))

	big := filepath.Join(work, "big.bin")
	require.NoError(t, os.WriteFile(big, bytes.Repeat([]byte{1}, 64), 0644))

	_, err := tryRun(a, nil, "add", "Too big", "x", "--attach", big)
	assert.ErrorIs(t, err, internal.ErrMediaTooLarge)
	assert.Contains(t, run(t, a, nil, "list"), "No memories yet.")
}

func TestE2EConfirmDelete(t *testing.T) {
	a, _ := setupE2E(t)
	id := addedID(t, run(t, a, nil, "add", "Keep me", "please"))

	out := run(t, a, strings.NewReader("n\n"), "rm", id)
	assert.Contains(t, out, "[y/N]")
	assert.Contains(t, run(t, a, nil, "list"), "Keep me")

	run(t, a, strings.NewReader("y\n"), "rm", id)
	assert.Contains(t, run(t, a, nil, "list"), "No memories yet.")

	// with confirmation disabled no prompt is shown
	id = addedID(t, run(t, a, nil, "add", "Other", "x"))
	run(t, a, nil, "settings", "--confirm-delete=false")
	out = run(t, a, nil, "rm", id)
	assert.NotContains(t, out, "[y/N]")
	assert.Contains(t, out, "Deleted "+id)
}

func TestE2EExportImport(t *testing.T) {
	a, work := setupE2E(t)
	root := addedID(t, run(t, a, nil, "add", "Root", "x", "--date", "2020-01-01"))
	run(t, a, nil, "add", "Child", "y", "--parent", root)
	run(t, a, nil, "theme", "dark")

	backup := filepath.Join(work, "backup.json")
	require.NoError(t, os.WriteFile(backup, []byte(run(t, a, nil, "export")), 0644))

	// unchanged state diffs clean
	assert.Contains(t, run(t, a, nil, "diff", "--backup", backup), "No changes.")

	run(t, a, nil, "clear", "--yes")
	assert.Contains(t, run(t, a, nil, "list"), "No memories yet.")
	assert.Contains(t, run(t, a, nil, "diff", "--backup", backup), "removed")

	b, _ := setupE2E(t)
	out := run(t, b, nil, "import", backup)
	assert.Contains(t, out, "Imported 1 active and 0 archived memories")
	assert.Contains(t, run(t, b, nil, "list"), "└── ")
	assert.Equal(t, "dark\n", run(t, b, nil, "theme"))

	_, err := tryRun(b, strings.NewReader(`{"hello": "world"}`), "import", "-")
	assert.ErrorIs(t, err, internal.ErrInvalidFormat)
}

func TestE2ESeedOnInit(t *testing.T) {
	work := t.TempDir()
	seed := filepath.Join(work, "data.json")
	require.NoError(t, os.WriteFile(seed, []byte(`{"memories":[{"id":"mem_seed","title":"Seeded","content":"c","date":"2020-01-01"}]}`), 0644))

	a := newApp(internal.NewScopeResolverAt(t.TempDir(), work))
	out := run(t, a, nil, "init", "--seed", seed)
	assert.Contains(t, out, "Seeded from")
	assert.Contains(t, run(t, a, nil, "list"), "mem_seed")

	_, err := tryRun(a, nil, "init")
	assert.Error(t, err)
}

func TestE2ESettingsAndTheme(t *testing.T) {
	a, _ := setupE2E(t)

	out := run(t, a, nil, "settings")
	assert.Contains(t, out, "font-size:      medium")
	assert.Contains(t, out, "confirm-delete: true")

	run(t, a, nil, "settings", "--font-size", "large", "--auto-save=false")
	var settings internal.Settings
	require.NoError(t, json.Unmarshal([]byte(run(t, a, nil, "settings", "--json")), &settings))
	assert.Equal(t, internal.Settings{FontSize: "large", AutoSave: false, ConfirmDeleteEnabled: true}, settings)

	_, err := tryRun(a, nil, "settings", "--font-size", "huge")
	assert.Error(t, err)

	assert.Equal(t, "light\n", run(t, a, nil, "theme"))
	assert.Equal(t, "dark\n", run(t, a, nil, "theme", "toggle"))
	assert.Equal(t, "light\n", run(t, a, nil, "theme", "light"))
	_, err = tryRun(a, nil, "theme", "sepia")
	assert.Error(t, err)
}

func TestE2ERevert(t *testing.T) {
	a, _ := setupE2E(t)
	run(t, a, nil, "add", "First", "x")

	log := run(t, a, nil, "log", "--oneline", "-n", "1")
	ref := strings.Fields(log)[0]

	run(t, a, nil, "add", "Second", "y")
	assert.Contains(t, run(t, a, nil, "diff", ref), "Second")

	assert.Contains(t, run(t, a, nil, "revert", ref), "revert: restore")
	tree := run(t, a, nil, "list")
	assert.Contains(t, tree, "First")
	assert.NotContains(t, tree, "Second")
}

func TestE2EUninitialized(t *testing.T) {
	a := newApp(internal.NewScopeResolverAt(t.TempDir(), t.TempDir()))

	_, err := tryRun(a, nil, "list")
	assert.ErrorIs(t, err, internal.ErrStorageUnavailable)
}
