package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScopePaths(t *testing.T) {
	scope := NewScope(ScopeGlobal, "/home/user")

	if scope.DataPath != "/home/user/.memtree" {
		t.Errorf("data path = %q", scope.DataPath)
	}
	if got := scope.BlobPath(); got != "/home/user/.memtree/store" {
		t.Errorf("blob path = %q", got)
	}
	if got := scope.GitPath(); got != "/home/user/.memtree/history" {
		t.Errorf("git path = %q", got)
	}
	if got := scope.ConfigPath(); got != "/home/user/.memtree/config.yaml" {
		t.Errorf("config path = %q", got)
	}
}

func TestScopeInitialized(t *testing.T) {
	scope := NewScope(ScopeProject, t.TempDir())
	if scope.Initialized() {
		t.Fatal("fresh directory should not be initialized")
	}

	if _, err := InitGitBlobStore(scope); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !scope.Initialized() {
		t.Error("expected scope to be initialized")
	}
}

func TestScopeResolverGlobal(t *testing.T) {
	home := t.TempDir()
	resolver := NewScopeResolverAt(home, t.TempDir())

	scope := resolver.Global()
	if scope.Type != ScopeGlobal {
		t.Errorf("expected ScopeGlobal, got %q", scope.Type)
	}
	if scope.DataPath != filepath.Join(home, DataDirName) {
		t.Errorf("data path = %q", scope.DataPath)
	}
}

func TestScopeResolverProjectNotFound(t *testing.T) {
	resolver := NewScopeResolverAt(t.TempDir(), t.TempDir())

	if _, found := resolver.Project(); found {
		t.Error("expected Project() to return false when no .memtree exists")
	}
	if got := resolver.Resolve(""); got.Type != ScopeGlobal {
		t.Errorf("expected fallback to global, got %q", got.Type)
	}
}

func TestScopeResolverProjectWalksUp(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, DataDirName), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	resolver := NewScopeResolverAt(t.TempDir(), nested)
	scope, found := resolver.Project()
	if !found {
		t.Fatal("expected project scope")
	}
	if scope.Path != root {
		t.Errorf("path = %q, want %q", scope.Path, root)
	}

	if got := resolver.Resolve("global"); got.Type != ScopeGlobal {
		t.Errorf("explicit global ignored, got %q", got.Type)
	}
	if got := resolver.Resolve(""); got.Path != root {
		t.Errorf("resolve = %q, want %q", got.Path, root)
	}
}

func TestScopeResolverSkipsHome(t *testing.T) {
	home := t.TempDir()
	if err := os.MkdirAll(filepath.Join(home, DataDirName), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	work := filepath.Join(home, "project")
	if err := os.MkdirAll(work, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	resolver := NewScopeResolverAt(home, work)
	if _, found := resolver.Project(); found {
		t.Error("home data dir must not count as a project")
	}
	if got := resolver.Here(); got.Path != work {
		t.Errorf("here = %q, want %q", got.Path, work)
	}
}
