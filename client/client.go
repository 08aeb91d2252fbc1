// client/client.go
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gitpanel/shared/types"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
	}
}

func (c *Client) Health() error {
	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return nil
}

func (c *Client) Status(localPath string) (*types.StatusResponse, error) {
	var out types.StatusResponse
	if err := c.post("/api/status", types.Request{LocalPath: localPath}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Add(localPath string) (*types.AddResponse, error) {
	var out types.AddResponse
	if err := c.post("/api/add", types.Request{LocalPath: localPath}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Commit(localPath, message string) (*types.CommitResponse, error) {
	var out types.CommitResponse
	if err := c.post("/api/commit", types.Request{LocalPath: localPath, Message: message}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CommitChanges(localPath, message string) (*types.CommitResponse, error) {
	var out types.CommitResponse
	if err := c.post("/api/commit-changes", types.Request{LocalPath: localPath, Message: message}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) History(localPath, filePath string) (*types.HistoryResponse, error) {
	var out types.HistoryResponse
	if err := c.post("/api/history", types.Request{LocalPath: localPath, FilePath: filePath}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(path string, req types.Request, out any) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body types.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
			return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("unexpected status: %s", resp.Status)}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
