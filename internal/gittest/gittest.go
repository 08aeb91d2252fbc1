// Package gittest builds throwaway repositories for tests.
package gittest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

const (
	Name  = "Test User"
	Email = "test@example.com"
)

// Init creates an empty non-bare repository with a local identity.
func Init(t *testing.T) string {
	t.Helper()
	dir := InitWithoutIdentity(t)
	SetIdentity(t, dir, Name, Email)
	return dir
}

func InitWithoutIdentity(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return dir
}

func SetIdentity(t *testing.T, dir, name, email string) {
	t.Helper()
	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)

	cfg, err := repo.Config()
	require.NoError(t, err)
	cfg.User.Name = name
	cfg.User.Email = email
	require.NoError(t, repo.SetConfig(cfg))
}

// WriteFile writes content to a slash-separated path under dir.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func Remove(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.Remove(filepath.Join(dir, filepath.FromSlash(name))))
}

// CommitAll stages every change (deletions included) and commits it with a
// fixed author time so ordering in tests is deterministic.
func CommitAll(t *testing.T, dir, message string, when time.Time) plumbing.Hash {
	t.Helper()
	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, wt.AddWithOptions(&git.AddOptions{All: true}))

	sig := &object.Signature{Name: Name, Email: Email, When: when}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author:            sig,
		Committer:         sig,
		AllowEmptyCommits: true,
	})
	require.NoError(t, err)
	return hash
}

// CountCommits returns the number of commits reachable from HEAD.
func CountCommits(t *testing.T, dir string) int {
	t.Helper()
	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)

	ref, err := repo.Head()
	if err == plumbing.ErrReferenceNotFound {
		return 0
	}
	require.NoError(t, err)

	iter, err := repo.Log(&git.LogOptions{From: ref.Hash()})
	require.NoError(t, err)
	n := 0
	require.NoError(t, iter.ForEach(func(*object.Commit) error {
		n++
		return nil
	}))
	return n
}

// HeadHash returns HEAD's commit id, or the zero hash when unborn.
func HeadHash(t *testing.T, dir string) plumbing.Hash {
	t.Helper()
	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	ref, err := repo.Head()
	if err == plumbing.ErrReferenceNotFound {
		return plumbing.ZeroHash
	}
	require.NoError(t, err)
	return ref.Hash()
}
