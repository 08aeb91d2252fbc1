// Package types holds the JSON envelopes exchanged between the server, the
// HTTP client and the CLI.
package types

const (
	MessageNoChanges         = "No changes"
	MessageNoFilesAdded      = "No files added"
	MessageNoChangesToCommit = "No changes to commit"
	MessageNoHistory         = "No history found"
)

// Request is the body accepted by every /api endpoint. Field names follow the
// command arguments the UI already sends.
type Request struct {
	LocalPath string `json:"local_path"`
	Message   string `json:"message,omitempty"`
	FilePath  string `json:"file_path,omitempty"`
}

type FileStatus struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

type StatusResponse struct {
	Files   []FileStatus `json:"files,omitempty"`
	Message string       `json:"message,omitempty"`
}

type AddResponse struct {
	AddedFiles []string `json:"added_files,omitempty"`
	Message    string   `json:"message,omitempty"`
}

type Author struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CommitResponse is either a commit payload or, when ID is empty, a sentinel
// carried in Message.
type CommitResponse struct {
	ID        string  `json:"id,omitempty"`
	Author    *Author `json:"author,omitempty"`
	Message   string  `json:"message"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

func (c *CommitResponse) Committed() bool {
	return c.ID != ""
}

type HistoryEntry struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

type HistoryResponse struct {
	Commits []HistoryEntry `json:"commits,omitempty"`
	Message string         `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
