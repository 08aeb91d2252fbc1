// internal/stage/stage.go
package stage

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"gitpanel/internal/errors"
	"gitpanel/internal/repository"
	"gitpanel/internal/status"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"go.uber.org/zap"
)

// Stageable lists the classifications a commit would plausibly want to pick up
// automatically. Deletions are not in the list: the index entry of a file
// removed from the working tree is left alone.
var Stageable = []status.Status{
	status.Untracked,
	status.Modified,
	status.TypeChanged,
	status.Renamed,
}

// Result lists the paths written to the index.
type Result struct {
	Paths []string
}

// Empty is the "nothing added" result.
func (r *Result) Empty() bool {
	return r == nil || len(r.Paths) == 0
}

type Stager struct {
	Logger *zap.Logger
}

func New(logger *zap.Logger) *Stager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stager{Logger: logger}
}

// All stages every stageable path reported by the status scan. Blobs are
// written first and the index is persisted once at the end, so a failure
// leaves the on-disk index exactly as it was.
func (s *Stager) All(h *repository.Handle) (*Result, error) {
	report, err := status.Scan(h)
	if err != nil {
		return nil, err
	}

	candidates := report.Select(Stageable...)
	result := &Result{Paths: make([]string, 0, len(candidates))}
	if len(candidates) == 0 {
		s.Logger.Debug("nothing to stage", zap.String("root", h.Root()))
		return result, nil
	}

	idx, err := h.Index()
	if err != nil {
		return nil, errors.IndexWrite(err)
	}

	objects := h.Repo().Storer
	for _, c := range candidates {
		if err := stagePath(objects, idx, h.Root(), c.Path); err != nil {
			return nil, errors.IndexWrite(fmt.Errorf("staging %s: %w", c.Path, err))
		}
		result.Paths = append(result.Paths, c.Path)
	}

	if err := objects.SetIndex(idx); err != nil {
		return nil, errors.IndexWrite(err)
	}

	s.Logger.Info("staged paths",
		zap.String("root", h.Root()),
		zap.Int("count", len(result.Paths)))
	return result, nil
}

func stagePath(objects storer.EncodedObjectStorer, idx *index.Index, root, path string) error {
	abs := filepath.Join(root, filepath.FromSlash(path))
	fi, err := os.Lstat(abs)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	mode, err := filemode.NewFromOSFileMode(fi.Mode())
	if err != nil {
		return err
	}

	hash, err := writeBlob(objects, abs, fi)
	if err != nil {
		return err
	}

	entry, err := idx.Entry(path)
	if err != nil {
		if !stderrors.Is(err, index.ErrEntryNotFound) {
			return err
		}
		entry = idx.Add(path)
	}
	entry.Hash = hash
	entry.Mode = mode
	entry.ModifiedAt = fi.ModTime()
	entry.Size = indexSize(fi.Size())
	return nil
}

// indexSize truncates to the 32-bit size field of an index entry. git stores
// sizes of 4 GiB and above modulo 2^32 too; the field only feeds the stat
// check and content is compared by hash.
func indexSize(n int64) uint32 {
	return uint32(n)
}

// writeBlob stores the file content (or the link target for symlinks) as a
// loose blob object.
func writeBlob(objects storer.EncodedObjectStorer, abs string, fi os.FileInfo) (plumbing.Hash, error) {
	var data []byte
	if fi.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(abs)
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("reading link: %w", err)
		}
		data = []byte(filepath.ToSlash(target))
	} else {
		content, err := os.ReadFile(abs)
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("reading file: %w", err)
		}
		data = content
	}

	obj := objects.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("opening blob writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return plumbing.ZeroHash, fmt.Errorf("writing blob: %w", err)
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("closing blob writer: %w", err)
	}

	hash, err := objects.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("storing blob: %w", err)
	}
	return hash, nil
}
