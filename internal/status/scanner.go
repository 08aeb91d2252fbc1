// internal/status/scanner.go
package status

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"

	"gitpanel/internal/errors"
	"gitpanel/internal/repository"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
)

// Classify maps a go-git file status to a single Status following the
// precedence documented on the Status type. typeChanged upgrades a
// working-tree modification whose file kind differs from the index entry.
func Classify(fs *git.FileStatus, typeChanged bool) Status {
	if fs == nil {
		return None
	}

	switch fs.Worktree {
	case git.Untracked:
		return Untracked
	case git.Modified:
		if typeChanged {
			return TypeChanged
		}
		return Modified
	case git.Deleted:
		return Deleted
	case git.Renamed:
		return Renamed
	}

	switch fs.Staging {
	case git.Added:
		return StagedNew
	case git.Modified:
		return StagedModified
	case git.Deleted:
		return StagedDeleted
	}

	return None
}

// Scan enumerates working-tree and index differences against HEAD. Untracked
// files are included; unmodified and ignored files are not.
func Scan(h *repository.Handle) (*Report, error) {
	st, err := h.Worktree().Status()
	if err != nil {
		return nil, errors.Repository(err)
	}

	var idx *index.Index
	report := &Report{Changes: make([]Change, 0, len(st))}
	for path, fs := range st {
		if fs.Worktree == git.Unmodified && fs.Staging == git.Unmodified {
			continue
		}

		typeChanged := false
		if fs.Worktree == git.Modified {
			if idx == nil {
				if idx, err = h.Index(); err != nil {
					return nil, errors.Repository(err)
				}
			}
			if typeChanged, err = kindChanged(h.Root(), path, idx); err != nil {
				return nil, errors.Repository(err)
			}
		}

		report.Changes = append(report.Changes, Change{
			Status: Classify(fs, typeChanged),
			Path:   path,
		})
	}

	sort.Slice(report.Changes, func(i, j int) bool {
		return report.Changes[i].Path < report.Changes[j].Path
	})
	return report, nil
}

type fileKind int

const (
	kindRegular fileKind = iota
	kindSymlink
	kindGitlink
	kindOther
)

func kindOfIndexMode(m filemode.FileMode) fileKind {
	switch m {
	case filemode.Regular, filemode.Executable, filemode.Deprecated:
		return kindRegular
	case filemode.Symlink:
		return kindSymlink
	case filemode.Submodule:
		return kindGitlink
	default:
		return kindOther
	}
}

func kindOfOSMode(m os.FileMode) fileKind {
	switch {
	case m&os.ModeSymlink != 0:
		return kindSymlink
	case m.IsDir():
		return kindGitlink
	case m.IsRegular():
		return kindRegular
	default:
		return kindOther
	}
}

// kindChanged compares the on-disk file kind with the index entry for path.
func kindChanged(root, path string, idx *index.Index) (bool, error) {
	entry, err := idx.Entry(path)
	if err != nil {
		if stderrors.Is(err, index.ErrEntryNotFound) {
			return false, nil
		}
		return false, err
	}

	fi, err := os.Lstat(filepath.Join(root, filepath.FromSlash(path)))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return kindOfIndexMode(entry.Mode) != kindOfOSMode(fi.Mode()), nil
}
