package service

import (
	"testing"
	"time"

	"gitpanel/internal/errors"
	"gitpanel/internal/gittest"
	"gitpanel/shared/types"

	"github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *Service {
	next := time.Unix(1700000000, 0)
	return New(Options{
		IdentityScope: config.LocalScope,
		Now: func() time.Time {
			now := next
			next = next.Add(time.Minute)
			return now
		},
	})
}

func TestEmptyRepository(t *testing.T) {
	dir := gittest.Init(t)
	svc := newService()

	st, err := svc.Status(dir)
	require.NoError(t, err)
	assert.Equal(t, types.MessageNoChanges, st.Message)
	assert.Empty(t, st.Files)

	add, err := svc.Add(dir)
	require.NoError(t, err)
	assert.Equal(t, types.MessageNoFilesAdded, add.Message)

	cc, err := svc.CommitChanges(dir, "anything")
	require.NoError(t, err)
	assert.False(t, cc.Committed())
	assert.Equal(t, types.MessageNoChangesToCommit, cc.Message)
	assert.Equal(t, 0, gittest.CountCommits(t, dir))
}

func TestStatusAndAdd(t *testing.T) {
	dir := gittest.Init(t)
	gittest.WriteFile(t, dir, "tracked.txt", "one\n")
	gittest.CommitAll(t, dir, "initial", time.Unix(1700000000, 0))
	gittest.WriteFile(t, dir, "tracked.txt", "two\n")
	gittest.WriteFile(t, dir, "new.txt", "new\n")

	svc := newService()
	st, err := svc.Status(dir)
	require.NoError(t, err)
	assert.Equal(t, []types.FileStatus{
		{Status: "?", Path: "new.txt"},
		{Status: "M", Path: "tracked.txt"},
	}, st.Files)

	add, err := svc.Add(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"new.txt", "tracked.txt"}, add.AddedFiles)

	st, err = svc.Status(dir)
	require.NoError(t, err)
	assert.Equal(t, []types.FileStatus{
		{Status: "A", Path: "new.txt"},
		{Status: "M", Path: "tracked.txt"},
	}, st.Files)

	again, err := svc.Add(dir)
	require.NoError(t, err)
	assert.Equal(t, types.MessageNoFilesAdded, again.Message)
}

func TestCommitChangesRoundTrip(t *testing.T) {
	dir := gittest.Init(t)
	gittest.WriteFile(t, dir, "notes.txt", "hello\n")

	svc := newService()
	resp, err := svc.CommitChanges(dir, "test")
	require.NoError(t, err)
	require.True(t, resp.Committed())
	assert.Equal(t, "test", resp.Message)
	assert.Equal(t, gittest.Name, resp.Author.Name)
	assert.Equal(t, gittest.Email, resp.Author.Email)
	assert.Equal(t, int64(1700000000), resp.Timestamp)
	assert.Equal(t, gittest.HeadHash(t, dir).String(), resp.ID)

	st, err := svc.Status(dir)
	require.NoError(t, err)
	assert.Equal(t, types.MessageNoChanges, st.Message)

	hist, err := svc.History(dir, "notes.txt")
	require.NoError(t, err)
	require.Len(t, hist.Commits, 1)
	assert.Equal(t, "test", hist.Commits[0].Message)
	assert.Equal(t, resp.ID[:7], hist.Commits[0].ID)
	assert.Equal(t, "2023-11-14 22:13:20", hist.Commits[0].Date)
}

func TestCommitAfterAdd(t *testing.T) {
	dir := gittest.Init(t)
	svc := newService()

	gittest.WriteFile(t, dir, "a.txt", "one\n")
	_, err := svc.Add(dir)
	require.NoError(t, err)
	first, err := svc.Commit(dir, "first")
	require.NoError(t, err)

	gittest.WriteFile(t, dir, "a.txt", "two\n")
	_, err = svc.Add(dir)
	require.NoError(t, err)
	second, err := svc.Commit(dir, "second")
	require.NoError(t, err)

	assert.Equal(t, 2, gittest.CountCommits(t, dir))
	assert.Equal(t, second.ID, gittest.HeadHash(t, dir).String())

	hist, err := svc.History(dir, "a.txt")
	require.NoError(t, err)
	require.Len(t, hist.Commits, 2)
	assert.Equal(t, second.ID[:7], hist.Commits[0].ID)
	assert.Equal(t, first.ID[:7], hist.Commits[1].ID)
}

func TestHistoryAbsentFile(t *testing.T) {
	dir := gittest.Init(t)
	gittest.WriteFile(t, dir, "a.txt", "one\n")
	gittest.CommitAll(t, dir, "root", time.Unix(1700000000, 0))
	gittest.WriteFile(t, dir, "a.txt", "two\n")
	gittest.CommitAll(t, dir, "edit", time.Unix(1700000060, 0))

	hist, err := newService().History(dir, "other.txt")
	require.NoError(t, err)
	// The root commit always qualifies.
	require.Len(t, hist.Commits, 1)
	assert.Equal(t, "root", hist.Commits[0].Message)
}

func TestErrors(t *testing.T) {
	svc := newService()

	t.Run("not a repository", func(t *testing.T) {
		_, err := svc.Status(t.TempDir())
		assert.True(t, errors.IsType(err, errors.ErrorTypeNotARepository))
	})

	t.Run("no identity", func(t *testing.T) {
		dir := gittest.InitWithoutIdentity(t)
		gittest.WriteFile(t, dir, "a.txt", "one\n")
		_, err := svc.CommitChanges(dir, "msg")
		assert.True(t, errors.IsType(err, errors.ErrorTypeNoIdentity))
	})

	t.Run("path outside work tree", func(t *testing.T) {
		dir := gittest.Init(t)
		gittest.WriteFile(t, dir, "a.txt", "one\n")
		gittest.CommitAll(t, dir, "root", time.Unix(1700000000, 0))
		_, err := svc.History(dir, "../escape.txt")
		assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidPath))
	})
}
