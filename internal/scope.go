package internal

import (
	"os"
	"path/filepath"
)

const DataDirName = ".memtree"

type ScopeType string

const (
	ScopeGlobal  ScopeType = "global"
	ScopeProject ScopeType = "project"
)

// Scope locates one memtree workspace on disk.
type Scope struct {
	Type     ScopeType
	Path     string // directory holding the data dir
	DataPath string // .memtree directory
}

func NewScope(typ ScopeType, root string) Scope {
	return Scope{
		Type:     typ,
		Path:     root,
		DataPath: filepath.Join(root, DataDirName),
	}
}

// BlobPath is the git worktree holding the persisted documents.
func (s Scope) BlobPath() string {
	return filepath.Join(s.DataPath, "store")
}

func (s Scope) GitPath() string {
	return filepath.Join(s.DataPath, "history")
}

func (s Scope) ConfigPath() string {
	return filepath.Join(s.DataPath, "config.yaml")
}

func (s Scope) Initialized() bool {
	info, err := os.Stat(s.GitPath())
	return err == nil && info.IsDir()
}

type ScopeResolver struct {
	homeDir string
	workDir string
}

func NewScopeResolver() *ScopeResolver {
	home, _ := os.UserHomeDir()
	cwd, _ := os.Getwd()
	return &ScopeResolver{homeDir: home, workDir: cwd}
}

// NewScopeResolverAt resolves scopes relative to explicit directories.
func NewScopeResolverAt(homeDir, workDir string) *ScopeResolver {
	return &ScopeResolver{homeDir: homeDir, workDir: workDir}
}

func (r *ScopeResolver) Global() Scope {
	return NewScope(ScopeGlobal, r.homeDir)
}

// Here is the project scope rooted at the working directory, whether or not
// it exists yet.
func (r *ScopeResolver) Here() Scope {
	return NewScope(ScopeProject, r.workDir)
}

func (r *ScopeResolver) Project() (Scope, bool) {
	if r.workDir == "" {
		return Scope{}, false
	}
	return r.findProjectScope(r.workDir)
}

func (r *ScopeResolver) findProjectScope(dir string) (Scope, bool) {
	for {
		dataPath := filepath.Join(dir, DataDirName)
		info, err := os.Stat(dataPath)
		if err == nil && info.IsDir() && dir != r.homeDir {
			return NewScope(ScopeProject, dir), true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Scope{}, false
		}
		dir = parent
	}
}

// Resolve picks the nearest project workspace unless global is requested.
func (r *ScopeResolver) Resolve(explicit string) Scope {
	if explicit == string(ScopeGlobal) {
		return r.Global()
	}
	if scope, ok := r.Project(); ok {
		return scope
	}
	return r.Global()
}
