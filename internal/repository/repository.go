// internal/repository/repository.go
package repository

import (
	stderrors "errors"
	"fmt"
	"path/filepath"

	"gitpanel/internal/errors"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Handle is a freshly opened repository. Handles are cheap and meant to be
// discarded after a single operation; nothing here is safe to cache across
// calls because the on-disk index and refs may change underneath it.
type Handle struct {
	root string
	repo *git.Repository
	wt   *git.Worktree
}

// Open validates path as a non-bare git working directory. Parent directories
// are not searched: path must be the work tree root.
func Open(path string) (*Handle, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NotARepository(path, err)
	}

	repo, err := git.PlainOpenWithOptions(absPath, &git.PlainOpenOptions{DetectDotGit: false})
	if err != nil {
		if stderrors.Is(err, git.ErrRepositoryNotExists) {
			return nil, errors.NotARepository(path, err)
		}
		return nil, errors.Repository(err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		if stderrors.Is(err, git.ErrIsBareRepository) {
			return nil, errors.NotARepository(path, err)
		}
		return nil, errors.Repository(err)
	}

	return &Handle{
		root: absPath,
		repo: repo,
		wt:   wt,
	}, nil
}

// Root returns the absolute path of the working tree.
func (h *Handle) Root() string {
	return h.root
}

func (h *Handle) Repo() *git.Repository {
	return h.repo
}

func (h *Handle) Worktree() *git.Worktree {
	return h.wt
}

// Head returns the commit HEAD resolves to, or nil when HEAD is unborn.
func (h *Handle) Head() (*object.Commit, error) {
	ref, err := h.repo.Head()
	if err != nil {
		if stderrors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}

	c, err := h.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("loading HEAD commit %s: %w", ref.Hash(), err)
	}
	return c, nil
}

// Index reads the current staging area from disk.
func (h *Handle) Index() (*index.Index, error) {
	idx, err := h.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	return idx, nil
}
