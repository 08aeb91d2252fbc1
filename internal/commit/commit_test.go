package commit

import (
	"testing"
	"time"

	"gitpanel/internal/errors"
	"gitpanel/internal/gittest"
	"gitpanel/internal/repository"
	"gitpanel/internal/stage"
	"gitpanel/internal/status"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, dir string) *repository.Handle {
	t.Helper()
	h, err := repository.Open(dir)
	require.NoError(t, err)
	return h
}

func fixedClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Minute)
		return now
	}
}

func newWriter() *Writer {
	w := NewWriter(config.LocalScope, nil)
	w.Now = fixedClock(time.Unix(1700000000, 0))
	return w
}

func TestWriterInitialAndFollowUp(t *testing.T) {
	dir := gittest.Init(t)
	gittest.WriteFile(t, dir, "a.txt", "one\n")
	gittest.WriteFile(t, dir, "docs/guide/intro.md", "# intro\n")
	_, err := stage.New(nil).All(open(t, dir))
	require.NoError(t, err)

	w := newWriter()
	first, err := w.Commit(open(t, dir), "initial")
	require.NoError(t, err)
	assert.Empty(t, first.Parents)
	assert.Equal(t, gittest.Name, first.Author.Name)
	assert.Equal(t, gittest.Email, first.Author.Email)
	assert.Equal(t, "initial", first.Message)
	assert.Equal(t, int64(1700000000), first.Timestamp)
	assert.Equal(t, plumbing.NewHash(first.ID), gittest.HeadHash(t, dir))

	second, err := w.Commit(open(t, dir), "again")
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID}, second.Parents)
	assert.NotEqual(t, first.ID, second.ID, "unchanged index still yields a new commit")
	assert.Equal(t, plumbing.NewHash(second.ID), gittest.HeadHash(t, dir))
	assert.Equal(t, 2, gittest.CountCommits(t, dir))

	// The written tree must equal the index: a clean status proves it.
	report, err := status.Scan(open(t, dir))
	require.NoError(t, err)
	assert.True(t, report.Clean())

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	c, err := repo.CommitObject(plumbing.NewHash(second.ID))
	require.NoError(t, err)
	_, err = c.File("docs/guide/intro.md")
	assert.NoError(t, err)
}

func TestWriterWithoutIdentity(t *testing.T) {
	dir := gittest.InitWithoutIdentity(t)
	gittest.WriteFile(t, dir, "a.txt", "one\n")

	_, err := newWriter().Commit(open(t, dir), "initial")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNoIdentity))
	assert.Equal(t, 0, gittest.CountCommits(t, dir))
}

func TestWorkflowNothingToCommit(t *testing.T) {
	dir := gittest.Init(t)
	wf := NewWorkflow(stage.New(nil), newWriter(), nil)

	_, err := wf.CommitChanges(open(t, dir), "noop")
	assert.ErrorIs(t, err, ErrNothingToCommit)
	assert.Equal(t, 0, gittest.CountCommits(t, dir))

	gittest.WriteFile(t, dir, "a.txt", "one\n")
	gittest.CommitAll(t, dir, "initial", time.Unix(1600000000, 0))
	_, err = wf.CommitChanges(open(t, dir), "noop")
	assert.ErrorIs(t, err, ErrNothingToCommit)
	assert.Equal(t, 1, gittest.CountCommits(t, dir))
}

func TestWorkflowStagesThenCommits(t *testing.T) {
	dir := gittest.Init(t)
	gittest.WriteFile(t, dir, "a.txt", "one\n")
	gittest.CommitAll(t, dir, "initial", time.Unix(1600000000, 0))
	before := gittest.HeadHash(t, dir)

	gittest.WriteFile(t, dir, "a.txt", "two\n")
	gittest.WriteFile(t, dir, "b.txt", "new\n")

	wf := NewWorkflow(stage.New(nil), newWriter(), nil)
	record, err := wf.CommitChanges(open(t, dir), "update")
	require.NoError(t, err)
	assert.Equal(t, []string{before.String()}, record.Parents)

	report, err := status.Scan(open(t, dir))
	require.NoError(t, err)
	assert.True(t, report.Clean())
}

func TestWorkflowKeepsStagingWhenCommitFails(t *testing.T) {
	dir := gittest.InitWithoutIdentity(t)
	gittest.WriteFile(t, dir, "a.txt", "one\n")

	wf := NewWorkflow(stage.New(nil), newWriter(), nil)
	_, err := wf.CommitChanges(open(t, dir), "initial")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNoIdentity))

	report, err := status.Scan(open(t, dir))
	require.NoError(t, err)
	assert.Equal(t, []status.Change{{Status: status.StagedNew, Path: "a.txt"}}, report.Changes)
}

func TestWorkflowDeletionOnly(t *testing.T) {
	dir := gittest.Init(t)
	gittest.WriteFile(t, dir, "a.txt", "one\n")
	gittest.WriteFile(t, dir, "b.txt", "two\n")
	gittest.CommitAll(t, dir, "initial", time.Unix(1600000000, 0))
	gittest.Remove(t, dir, "b.txt")

	wf := NewWorkflow(stage.New(nil), newWriter(), nil)
	_, err := wf.CommitChanges(open(t, dir), "delete b")
	require.NoError(t, err)
	assert.Equal(t, 2, gittest.CountCommits(t, dir))

	// The deletion is reported as a change but never staged.
	report, err := status.Scan(open(t, dir))
	require.NoError(t, err)
	assert.Equal(t, []status.Change{{Status: status.Deleted, Path: "b.txt"}}, report.Changes)
}
