package stage

import (
	"testing"
	"time"

	"gitpanel/internal/gittest"
	"gitpanel/internal/repository"
	"gitpanel/internal/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, dir string) *repository.Handle {
	t.Helper()
	h, err := repository.Open(dir)
	require.NoError(t, err)
	return h
}

func TestStageAll(t *testing.T) {
	dir := gittest.Init(t)
	gittest.WriteFile(t, dir, "edit.txt", "one\n")
	gittest.WriteFile(t, dir, "gone.txt", "bye\n")
	gittest.CommitAll(t, dir, "initial", time.Unix(1700000000, 0))

	gittest.WriteFile(t, dir, "edit.txt", "one\ntwo\n")
	gittest.WriteFile(t, dir, "dir/new.txt", "fresh\n")
	gittest.Remove(t, dir, "gone.txt")

	s := New(nil)
	result, err := s.All(open(t, dir))
	require.NoError(t, err)
	assert.False(t, result.Empty())
	assert.Equal(t, []string{"dir/new.txt", "edit.txt"}, result.Paths)

	report, err := status.Scan(open(t, dir))
	require.NoError(t, err)
	assert.Equal(t, []status.Change{
		{Status: status.StagedNew, Path: "dir/new.txt"},
		{Status: status.StagedModified, Path: "edit.txt"},
		{Status: status.Deleted, Path: "gone.txt"},
	}, report.Changes, "deletions stay unstaged")
}

func TestStageAllIsIdempotent(t *testing.T) {
	dir := gittest.Init(t)
	gittest.WriteFile(t, dir, "a.txt", "a\n")

	s := New(nil)
	first, err := s.All(open(t, dir))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, first.Paths)

	second, err := s.All(open(t, dir))
	require.NoError(t, err)
	assert.True(t, second.Empty())
}

func TestStageAllCleanRepository(t *testing.T) {
	dir := gittest.Init(t)
	result, err := New(nil).All(open(t, dir))
	require.NoError(t, err)
	assert.True(t, result.Empty())

	var nilResult *Result
	assert.True(t, nilResult.Empty())
}

func TestIndexEntrySize(t *testing.T) {
	dir := gittest.Init(t)
	gittest.WriteFile(t, dir, "a.txt", "twelve bytes")

	h := open(t, dir)
	_, err := New(nil).All(h)
	require.NoError(t, err)

	idx, err := open(t, dir).Index()
	require.NoError(t, err)
	entry, err := idx.Entry("a.txt")
	require.NoError(t, err)
	assert.Equal(t, uint32(12), entry.Size)

	assert.Equal(t, uint32(5), indexSize(1<<32+5))
	assert.Equal(t, uint32(1<<32-1), indexSize(1<<32-1))
}
