// internal/commit/reflog.go
package commit

import (
	"fmt"
	"os"
	"path"
	"strings"

	"gitpanel/internal/repository"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"go.uber.org/zap"
)

const reflogDir = "logs"

type reflogUpdate struct {
	Ref     plumbing.ReferenceName
	Old     plumbing.Hash
	New     plumbing.Hash
	Who     *object.Signature
	Message string
}

// line renders the update in the format git writes under .git/logs.
func (u reflogUpdate) line() string {
	return fmt.Sprintf("%s %s %s <%s> %d %s\t%s\n",
		u.Old, u.New, u.Who.Name, u.Who.Email,
		u.Who.When.Unix(), u.Who.When.Format("-0700"), u.Message)
}

func reflogMessage(message string, initial bool) string {
	subject, _, _ := strings.Cut(strings.TrimLeft(message, "\n"), "\n")
	subject = strings.TrimSpace(subject)
	if initial {
		return "commit (initial): " + subject
	}
	return "commit: " + subject
}

// appendReflog records the update for HEAD and, when HEAD is symbolic, for
// the branch it points at. The commit is already in place, so failures are
// logged and not returned.
func (w *Writer) appendReflog(h *repository.Handle, u reflogUpdate) {
	st, ok := h.Repo().Storer.(*filesystem.Storage)
	if !ok {
		return
	}
	fs := st.Filesystem()

	names := []plumbing.ReferenceName{plumbing.HEAD}
	if u.Ref != plumbing.HEAD {
		names = append(names, u.Ref)
	}
	line := u.line()
	for _, name := range names {
		if err := appendLine(fs, path.Join(reflogDir, name.String()), line); err != nil {
			w.Logger.Warn("writing reflog",
				zap.String("root", h.Root()),
				zap.String("ref", name.String()),
				zap.Error(err))
		}
	}
}

func appendLine(fs billy.Filesystem, name, line string) error {
	if err := fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return err
	}
	f, err := fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write([]byte(line)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
