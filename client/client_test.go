package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gitpanel/shared/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer answers every endpoint with a canned body and records requests.
func fakeServer(t *testing.T, code int, body string) (*Client, *[]types.Request, *[]string) {
	t.Helper()
	var reqs []types.Request
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.Method == http.MethodPost {
			var req types.Request
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			reqs = append(reqs, req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL + "/"), &reqs, &paths
}

func TestStatus(t *testing.T) {
	c, reqs, paths := fakeServer(t, http.StatusOK, `{"files":[{"status":"?","path":"a.txt"}]}`)

	resp, err := c.Status("/repo")
	require.NoError(t, err)
	assert.Equal(t, []types.FileStatus{{Status: "?", Path: "a.txt"}}, resp.Files)
	assert.Equal(t, []string{"/api/status"}, *paths)
	assert.Equal(t, "/repo", (*reqs)[0].LocalPath)
}

func TestAdd(t *testing.T) {
	c, _, paths := fakeServer(t, http.StatusOK, `{"message":"No files added"}`)

	resp, err := c.Add("/repo")
	require.NoError(t, err)
	assert.Equal(t, types.MessageNoFilesAdded, resp.Message)
	assert.Equal(t, []string{"/api/add"}, *paths)
}

func TestCommit(t *testing.T) {
	c, reqs, paths := fakeServer(t, http.StatusCreated,
		`{"id":"abc","author":{"name":"Test User","email":"test@example.com"},"message":"msg","timestamp":1700000000}`)

	resp, err := c.Commit("/repo", "msg")
	require.NoError(t, err)
	assert.True(t, resp.Committed())
	assert.Equal(t, "Test User", resp.Author.Name)
	assert.Equal(t, int64(1700000000), resp.Timestamp)

	_, err = c.CommitChanges("/repo", "msg")
	require.NoError(t, err)
	assert.Equal(t, []string{"/api/commit", "/api/commit-changes"}, *paths)
	assert.Equal(t, "msg", (*reqs)[1].Message)
}

func TestHistory(t *testing.T) {
	c, reqs, _ := fakeServer(t, http.StatusOK,
		`{"commits":[{"id":"abc1234","author":"Test User","date":"2023-11-14 22:13:20","message":"initial"}]}`)

	resp, err := c.History("/repo", "a.txt")
	require.NoError(t, err)
	require.Len(t, resp.Commits, 1)
	assert.Equal(t, "initial", resp.Commits[0].Message)
	assert.Equal(t, "a.txt", (*reqs)[0].FilePath)
}

func TestErrors(t *testing.T) {
	t.Run("server error body", func(t *testing.T) {
		c, _, _ := fakeServer(t, http.StatusNotFound, `{"error":"not a git repository: /repo"}`)
		_, err := c.Status("/repo")
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, "not a git repository: /repo", err.Error())
	})

	t.Run("no error body", func(t *testing.T) {
		c, _, _ := fakeServer(t, http.StatusBadGateway, `oops`)
		_, err := c.History("/repo", "a.txt")
		assert.ErrorContains(t, err, "unexpected status")
	})

	t.Run("health", func(t *testing.T) {
		c, _, _ := fakeServer(t, http.StatusOK, `{"status":"ok"}`)
		assert.NoError(t, c.Health())
	})
}
