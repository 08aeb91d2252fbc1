// internal/history/walker.go
package history

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"gitpanel/internal/errors"
	"gitpanel/internal/repository"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"go.uber.org/zap"
)

const (
	// MaxCommits caps the number of relevant commits returned.
	MaxCommits = 100

	ShortIDLength = 7
	DateLayout    = "2006-01-02 15:04:05"
	UnknownAuthor = "Unknown"
)

// Entry is the display view of one commit that touched the file.
type Entry struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

// Cache stores walk results. Keys embed the HEAD commit id, and commits are
// immutable, so an entry never goes stale.
type Cache interface {
	Get(key string) ([]Entry, bool)
	Put(key string, entries []Entry) error
}

type Walker struct {
	Limit  int
	Cache  Cache
	Logger *zap.Logger
}

func NewWalker(cache Cache, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{
		Limit:  MaxCommits,
		Cache:  cache,
		Logger: logger,
	}
}

// ResolvePath turns filePath (absolute, or relative to the work tree root)
// into the slash-separated path used inside trees.
func ResolvePath(root, filePath string) (string, error) {
	if !utf8.ValidString(filePath) {
		return "", errors.InvalidPath(filePath, "not valid UTF-8")
	}
	if strings.TrimSpace(filePath) == "" {
		return "", errors.InvalidPath(filePath, "empty path")
	}

	abs := filePath
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, filePath)
	}
	rel, err := filepath.Rel(root, filepath.Clean(abs))
	if err != nil {
		return "", errors.InvalidPath(filePath, err.Error())
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.InvalidPath(filePath, "outside of the working tree")
	}
	return filepath.ToSlash(rel), nil
}

// History returns the commits reachable from HEAD that touched filePath,
// newest commit time first, at most Limit of them.
//
// A commit counts as touching the file when the diff between its first parent
// and itself has a change whose new-side path is exactly the file. Changes
// reaching a merge only through its other parents are not seen, and neither
// are deletions of the file. A root commit is always included.
func (w *Walker) History(h *repository.Handle, filePath string) ([]Entry, error) {
	target, err := ResolvePath(h.Root(), filePath)
	if err != nil {
		return nil, err
	}

	head, err := h.Repo().Head()
	if err != nil {
		return nil, errors.Repository(err)
	}

	key := fmt.Sprintf("%s:%d:%s", head.Hash(), w.limit(), target)
	if w.Cache != nil {
		if entries, ok := w.Cache.Get(key); ok {
			w.Logger.Debug("history cache hit", zap.String("path", target))
			return entries, nil
		}
	}

	iter, err := h.Repo().Log(&git.LogOptions{
		From:  head.Hash(),
		Order: git.LogOrderCommitterTime,
	})
	if err != nil {
		return nil, errors.Repository(err)
	}
	defer iter.Close()

	entries := make([]Entry, 0)
	visited := 0
	err = iter.ForEach(func(c *object.Commit) error {
		visited++
		relevant, err := touches(c, target)
		if err != nil {
			return err
		}
		if !relevant {
			return nil
		}

		entry, err := newEntry(c)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
		if len(entries) >= w.limit() {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, errors.Repository(err)
	}

	w.Logger.Debug("walked history",
		zap.String("path", target),
		zap.Int("visited", visited),
		zap.Int("entries", len(entries)))

	if w.Cache != nil {
		if err := w.Cache.Put(key, entries); err != nil {
			w.Logger.Warn("caching history failed", zap.String("path", target), zap.Error(err))
		}
	}
	return entries, nil
}

func (w *Walker) limit() int {
	if w.Limit <= 0 {
		return MaxCommits
	}
	return w.Limit
}

// touches reports whether c changed target relative to its first parent.
func touches(c *object.Commit, target string) (bool, error) {
	if c.NumParents() == 0 {
		return true, nil
	}

	parent, err := c.Parent(0)
	if err != nil {
		return false, fmt.Errorf("loading parent of %s: %w", c.Hash, err)
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return false, fmt.Errorf("loading tree of %s: %w", parent.Hash, err)
	}
	tree, err := c.Tree()
	if err != nil {
		return false, fmt.Errorf("loading tree of %s: %w", c.Hash, err)
	}

	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return false, fmt.Errorf("diffing %s: %w", c.Hash, err)
	}
	for _, change := range changes {
		if change.To.Name == target {
			return true, nil
		}
	}
	return false, nil
}

func newEntry(c *object.Commit) (Entry, error) {
	date, err := formatDate(c.Author.When.Unix())
	if err != nil {
		return Entry{}, err
	}

	author := c.Author.Name
	if author == "" {
		author = UnknownAuthor
	}

	return Entry{
		ID:      c.Hash.String()[:ShortIDLength],
		Author:  author,
		Date:    date,
		Message: strings.TrimSpace(c.Message),
	}, nil
}

// formatDate renders seconds since the epoch in UTC. Years that need more
// than four digits cannot be shown in the fixed layout.
func formatDate(seconds int64) (string, error) {
	t := time.Unix(seconds, 0).UTC()
	if t.Year() < 0 || t.Year() > 9999 {
		return "", errors.InvalidTimestamp(seconds)
	}
	return t.Format(DateLayout), nil
}
