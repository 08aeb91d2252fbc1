// internal/service/service.go
package service

import (
	stderrors "errors"
	"time"

	"gitpanel/internal/commit"
	"gitpanel/internal/history"
	"gitpanel/internal/repository"
	"gitpanel/internal/stage"
	"gitpanel/internal/status"
	"gitpanel/shared/types"

	"github.com/go-git/go-git/v5/config"
	"go.uber.org/zap"
)

const unknownAuthor = "Unknown"

type Options struct {
	// IdentityScope selects the git config consulted for the commit identity.
	IdentityScope config.Scope
	// HistoryCache is optional.
	HistoryCache history.Cache
	Now          func() time.Time
	Logger       *zap.Logger
}

// Service maps the git operations onto response envelopes. It holds no
// repository state: every call opens the repository at the given path.
type Service struct {
	stager   *stage.Stager
	writer   *commit.Writer
	workflow *commit.Workflow
	walker   *history.Walker
	logger   *zap.Logger
}

func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	stager := stage.New(logger.Named("stage"))
	writer := commit.NewWriter(opts.IdentityScope, logger.Named("commit"))
	if opts.Now != nil {
		writer.Now = opts.Now
	}

	return &Service{
		stager:   stager,
		writer:   writer,
		workflow: commit.NewWorkflow(stager, writer, logger.Named("commit")),
		walker:   history.NewWalker(opts.HistoryCache, logger.Named("history")),
		logger:   logger,
	}
}

func (s *Service) Status(localPath string) (*types.StatusResponse, error) {
	h, err := repository.Open(localPath)
	if err != nil {
		return nil, err
	}

	report, err := status.Scan(h)
	if err != nil {
		return nil, err
	}
	if report.Clean() {
		return &types.StatusResponse{Message: types.MessageNoChanges}, nil
	}

	resp := &types.StatusResponse{Files: make([]types.FileStatus, 0, len(report.Changes))}
	for _, c := range report.Changes {
		resp.Files = append(resp.Files, types.FileStatus{
			Status: c.Status.Symbol(),
			Path:   c.Path,
		})
	}
	return resp, nil
}

func (s *Service) Add(localPath string) (*types.AddResponse, error) {
	h, err := repository.Open(localPath)
	if err != nil {
		return nil, err
	}

	result, err := s.stager.All(h)
	if err != nil {
		return nil, err
	}
	if result.Empty() {
		return &types.AddResponse{Message: types.MessageNoFilesAdded}, nil
	}
	return &types.AddResponse{AddedFiles: result.Paths}, nil
}

func (s *Service) Commit(localPath, message string) (*types.CommitResponse, error) {
	h, err := repository.Open(localPath)
	if err != nil {
		return nil, err
	}

	record, err := s.writer.Commit(h, message)
	if err != nil {
		return nil, err
	}
	return commitResponse(record), nil
}

func (s *Service) CommitChanges(localPath, message string) (*types.CommitResponse, error) {
	h, err := repository.Open(localPath)
	if err != nil {
		return nil, err
	}

	record, err := s.workflow.CommitChanges(h, message)
	if stderrors.Is(err, commit.ErrNothingToCommit) {
		return &types.CommitResponse{Message: types.MessageNoChangesToCommit}, nil
	}
	if err != nil {
		return nil, err
	}
	return commitResponse(record), nil
}

func (s *Service) History(localPath, filePath string) (*types.HistoryResponse, error) {
	h, err := repository.Open(localPath)
	if err != nil {
		return nil, err
	}

	entries, err := s.walker.History(h, filePath)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return &types.HistoryResponse{Message: types.MessageNoHistory}, nil
	}

	resp := &types.HistoryResponse{Commits: make([]types.HistoryEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Commits = append(resp.Commits, types.HistoryEntry(e))
	}
	return resp, nil
}

func commitResponse(r *commit.Record) *types.CommitResponse {
	name := r.Author.Name
	if name == "" {
		name = unknownAuthor
	}
	return &types.CommitResponse{
		ID: r.ID,
		Author: &types.Author{
			Name:  name,
			Email: r.Author.Email,
		},
		Message:   r.Message,
		Timestamp: r.Timestamp,
	}
}
