package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gitpanel/internal/config"
	"gitpanel/internal/gittest"
	"gitpanel/internal/logging"
	"gitpanel/internal/service"
	"gitpanel/shared/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, h http.Handler, path string, req types.Request, out any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", path, bytes.NewReader(body)))
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
	return rec
}

func TestServerEndToEnd(t *testing.T) {
	cfg := config.Default()
	cfg.Identity.Scope = "local"

	srv, err := New(cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { srv.close() })
	h := srv.Handler()

	dir := gittest.Init(t)
	gittest.WriteFile(t, dir, "a.txt", "one\n")
	gittest.CommitAll(t, dir, "first", time.Unix(1700000000, 0))

	var st types.StatusResponse
	rec := call(t, h, "/api/status", types.Request{LocalPath: dir}, &st)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, types.MessageNoChanges, st.Message)

	gittest.WriteFile(t, dir, "a.txt", "two\n")
	var committed types.CommitResponse
	rec = call(t, h, "/api/commit-changes", types.Request{LocalPath: dir, Message: "second"}, &committed)
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, committed.Committed())

	var hist types.HistoryResponse
	call(t, h, "/api/history", types.Request{LocalPath: dir, FilePath: "a.txt"}, &hist)
	require.Len(t, hist.Commits, 2)
	assert.Equal(t, "second", hist.Commits[0].Message)
	assert.Equal(t, committed.ID[:7], hist.Commits[0].ID)

	// served from the cache on the second call
	var again types.HistoryResponse
	call(t, h, "/api/history", types.Request{LocalPath: dir, FilePath: "a.txt"}, &again)
	assert.Equal(t, hist, again)

	var fail types.ErrorResponse
	rec = call(t, h, "/api/status", types.Request{LocalPath: t.TempDir()}, &fail)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, fail.Error, "not a git repository")
}

func TestServicesShareCachePath(t *testing.T) {
	cfg := config.Default()
	cfg.Identity.Scope = "local"
	cfg.Cache.Path = t.TempDir()

	first, closeFirst, err := NewService(cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { closeFirst() })
	second, closeSecond, err := NewService(cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { closeSecond() })

	dir := gittest.Init(t)
	gittest.WriteFile(t, dir, "a.txt", "one\n")
	gittest.CommitAll(t, dir, "first", time.Unix(1700000000, 0))

	// The first service takes the database lock; the second keeps working.
	for _, svc := range []*service.Service{first, second} {
		st, err := svc.Status(dir)
		require.NoError(t, err)
		assert.Equal(t, types.MessageNoChanges, st.Message)

		hist, err := svc.History(dir, "a.txt")
		require.NoError(t, err)
		require.Len(t, hist.Commits, 1)
		assert.Equal(t, "first", hist.Commits[0].Message)
	}
}

func TestNewServiceRejectsBadScope(t *testing.T) {
	cfg := config.Default()
	cfg.Identity.Scope = "team"
	_, _, err := NewService(cfg, logging.NewNop())
	assert.Error(t, err)
}
