package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/go-git/go-git/v5/storage/memory"
)

const (
	DefaultBranch = "main"
	DefaultAuthor = "memtree"
	DefaultEmail  = "memtree@local"

	initMarker = ".memtree-init"
)

var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the durable key-value store the persistence adapter writes
// whole documents into.
type BlobStore interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Put(ctx context.Context, key Key, data []byte) error
	Delete(ctx context.Context, key Key) error
	// Commit records pending writes. It returns nil, nil when nothing
	// changed since the last commit.
	Commit(ctx context.Context, message string) (*Commit, error)
}

type Commit struct {
	Hash      string
	Message   string
	Author    string
	Timestamp time.Time
	Parents   []string
}

// GitBlobStore keeps each blob as a file in a git worktree; every commit is
// one saved snapshot.
type GitBlobStore struct {
	repo     *git.Repository
	worktree *git.Worktree
	fs       billy.Filesystem
	dirty    bool
}

func OpenGitBlobStore(scope Scope) (*GitBlobStore, error) {
	if !scope.Initialized() {
		return nil, fmt.Errorf("store not initialized: %s: %w", scope.DataPath, ErrStorageUnavailable)
	}

	storer := filesystem.NewStorage(osfs.New(scope.GitPath()), cache.NewObjectLRUDefault())
	wt := osfs.New(scope.BlobPath())

	repo, err := git.Open(storer, wt)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return newGitBlobStore(repo, wt)
}

func InitGitBlobStore(scope Scope) (*GitBlobStore, error) {
	for _, dir := range []string{scope.GitPath(), scope.BlobPath()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	storer := filesystem.NewStorage(osfs.New(scope.GitPath()), cache.NewObjectLRUDefault())
	return initGitBlobStore(storer, osfs.New(scope.BlobPath()))
}

// OpenOrInitGitBlobStore opens the workspace store, creating it on first use.
func OpenOrInitGitBlobStore(scope Scope) (*GitBlobStore, error) {
	if scope.Initialized() {
		return OpenGitBlobStore(scope)
	}
	return InitGitBlobStore(scope)
}

// NewMemoryBlobStore returns a store that lives only in process memory.
func NewMemoryBlobStore() (*GitBlobStore, error) {
	return initGitBlobStore(memory.NewStorage(), memfs.New())
}

func initGitBlobStore(storer storage.Storer, wt billy.Filesystem) (*GitBlobStore, error) {
	repo, err := git.Init(storer, wt)
	if err != nil {
		return nil, fmt.Errorf("init repository: %w", err)
	}

	cfg, err := repo.Config()
	if err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}
	cfg.Init.DefaultBranch = DefaultBranch
	if err := repo.SetConfig(cfg); err != nil {
		return nil, fmt.Errorf("set config: %w", err)
	}

	store, err := newGitBlobStore(repo, wt)
	if err != nil {
		return nil, err
	}

	if err := util.WriteFile(wt, initMarker, []byte("memtree store initialized\n"), 0644); err != nil {
		return nil, fmt.Errorf("write init file: %w", err)
	}
	if _, err := store.worktree.Add(initMarker); err != nil {
		return nil, fmt.Errorf("stage init file: %w", err)
	}
	store.dirty = true
	if _, err := store.Commit(context.Background(), "init: initialize memtree store"); err != nil {
		return nil, fmt.Errorf("initial commit: %w", err)
	}

	return store, nil
}

func newGitBlobStore(repo *git.Repository, wt billy.Filesystem) (*GitBlobStore, error) {
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}
	return &GitBlobStore{repo: repo, worktree: worktree, fs: wt}, nil
}

func (s *GitBlobStore) Get(ctx context.Context, key Key) ([]byte, error) {
	data, err := util.ReadFile(s.fs, key.String())
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("get %s: %w", key, ErrBlobNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (s *GitBlobStore) Put(ctx context.Context, key Key, data []byte) error {
	if err := util.WriteFile(s.fs, key.String(), data, 0644); err != nil {
		return fmt.Errorf("write %s: %w: %v", key, ErrStorageUnavailable, err)
	}
	if _, err := s.worktree.Add(key.String()); err != nil {
		return fmt.Errorf("stage %s: %w: %v", key, ErrStorageUnavailable, err)
	}
	s.dirty = true
	return nil
}

func (s *GitBlobStore) Delete(ctx context.Context, key Key) error {
	if _, err := s.fs.Stat(key.String()); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, ErrBlobNotFound)
	}
	if _, err := s.worktree.Remove(key.String()); err != nil {
		return fmt.Errorf("remove %s: %w: %v", key, ErrStorageUnavailable, err)
	}
	s.dirty = true
	return nil
}

func (s *GitBlobStore) Commit(ctx context.Context, message string) (*Commit, error) {
	if !s.dirty {
		return nil, nil
	}

	hash, err := s.worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  DefaultAuthor,
			Email: DefaultEmail,
			When:  time.Now(),
		},
	})
	if errors.Is(err, git.ErrEmptyCommit) {
		s.dirty = false
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("commit: %w: %v", ErrStorageUnavailable, err)
	}
	s.dirty = false

	commit, err := s.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get commit: %w", err)
	}
	return toCommit(commit), nil
}

// Log lists saved snapshots, newest first.
func (s *GitBlobStore) Log(ctx context.Context, limit int) ([]*Commit, error) {
	iter, err := s.repo.Log(&git.LogOptions{})
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return []*Commit{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	defer iter.Close()

	commits := []*Commit{}
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(commits) >= limit {
			return io.EOF
		}
		commits = append(commits, toCommit(c))
		return nil
	})
	if err != nil && err != io.EOF {
		return nil, err
	}

	return commits, nil
}

// Revert rewrites the given blobs with their content at ref and records the
// result as a new snapshot. Blobs absent at ref are deleted.
func (s *GitBlobStore) Revert(ctx context.Context, ref string, keys []Key) (*Commit, error) {
	resolved, err := s.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("resolve ref: %w", err)
	}

	target, err := s.repo.CommitObject(*resolved)
	if err != nil {
		return nil, fmt.Errorf("get commit: %w", err)
	}

	tree, err := target.Tree()
	if err != nil {
		return nil, fmt.Errorf("get tree: %w", err)
	}

	for _, key := range keys {
		f, err := tree.File(key.String())
		if errors.Is(err, object.ErrFileNotFound) {
			if err := s.Delete(ctx, key); err != nil && !errors.Is(err, ErrBlobNotFound) {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s at %s: %w", key, ref, err)
		}

		contents, err := f.Contents()
		if err != nil {
			return nil, fmt.Errorf("read %s at %s: %w", key, ref, err)
		}
		if err := s.Put(ctx, key, []byte(contents)); err != nil {
			return nil, err
		}
	}

	return s.Commit(ctx, fmt.Sprintf("revert: restore %s", resolved.String()[:7]))
}

// Diff renders the patch from ref to the latest snapshot.
func (s *GitBlobStore) Diff(ctx context.Context, ref string) (string, error) {
	head, err := s.repo.Head()
	if err != nil {
		return "", fmt.Errorf("get HEAD: %w", err)
	}

	headCommit, err := s.repo.CommitObject(head.Hash())
	if err != nil {
		return "", fmt.Errorf("get HEAD commit: %w", err)
	}

	resolved, err := s.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("resolve ref: %w", err)
	}

	targetCommit, err := s.repo.CommitObject(*resolved)
	if err != nil {
		return "", fmt.Errorf("get target commit: %w", err)
	}

	headTree, err := headCommit.Tree()
	if err != nil {
		return "", fmt.Errorf("get HEAD tree: %w", err)
	}

	targetTree, err := targetCommit.Tree()
	if err != nil {
		return "", fmt.Errorf("get target tree: %w", err)
	}

	changes, err := targetTree.Diff(headTree)
	if err != nil {
		return "", fmt.Errorf("diff trees: %w", err)
	}

	patch, err := changes.Patch()
	if err != nil {
		return "", fmt.Errorf("get patch: %w", err)
	}
	return patch.String(), nil
}

func toCommit(c *object.Commit) *Commit {
	var parents []string
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}

	return &Commit{
		Hash:      c.Hash.String(),
		Message:   strings.TrimSpace(c.Message),
		Author:    c.Author.Name,
		Timestamp: c.Author.When,
		Parents:   parents,
	}
}
