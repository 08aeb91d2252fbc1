// internal/commit/workflow.go
package commit

import (
	stderrors "errors"

	"gitpanel/internal/repository"
	"gitpanel/internal/stage"
	"gitpanel/internal/status"

	"go.uber.org/zap"
)

var ErrNothingToCommit = stderrors.New("there is nothing to commit")

// Workflow is the auto-stage-then-commit operation. It runs in two phases
// that are not transactional: once staging has persisted the index, a failing
// commit does not roll it back.
type Workflow struct {
	Stager *stage.Stager
	Writer *Writer
	Logger *zap.Logger
}

func NewWorkflow(s *stage.Stager, w *Writer, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{Stager: s, Writer: w, Logger: logger}
}

// CommitChanges returns ErrNothingToCommit, without touching the index or
// refs, when the status scan finds no change of any kind.
//
// A working-tree deletion counts as a change here even though the stager
// does not remove it from the index, so a tree whose only change is a
// deletion still produces a commit that does not record the deletion.
func (wf *Workflow) CommitChanges(h *repository.Handle, message string) (*Record, error) {
	report, err := status.Scan(h)
	if err != nil {
		return nil, err
	}
	if !report.HasChanges() {
		return nil, ErrNothingToCommit
	}

	staged, err := wf.Stager.All(h)
	if err != nil {
		return nil, err
	}

	record, err := wf.Writer.Commit(h, message)
	if err != nil {
		if !staged.Empty() {
			wf.Logger.Warn("commit failed after staging; index left staged",
				zap.String("root", h.Root()),
				zap.Strings("staged", staged.Paths),
				zap.Error(err))
		}
		return nil, err
	}
	return record, nil
}
