// internal/commit/writer.go
package commit

import (
	"fmt"
	"time"

	"gitpanel/internal/errors"
	"gitpanel/internal/repository"

	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"
)

type Author struct {
	Name  string
	Email string
}

// Record describes a commit written by the Writer.
type Record struct {
	ID        string
	Parents   []string
	Author    Author
	Message   string
	Timestamp int64
}

// Writer turns the current index into a commit on top of HEAD.
type Writer struct {
	// Scope selects which git config files are consulted for user.name and
	// user.email.
	Scope  config.Scope
	Now    func() time.Time
	Logger *zap.Logger
}

func NewWriter(scope config.Scope, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		Scope:  scope,
		Now:    time.Now,
		Logger: logger,
	}
}

// Commit writes a commit whose tree is the current index and whose only
// parent is HEAD (no parent when HEAD is unborn), then advances HEAD. Calling
// it twice with an unchanged index produces two commits.
func (w *Writer) Commit(h *repository.Handle, message string) (*Record, error) {
	repo := h.Repo()

	sig, err := w.signature(h)
	if err != nil {
		return nil, err
	}

	idx, err := h.Index()
	if err != nil {
		return nil, errors.Repository(err)
	}
	treeHash, err := writeTree(repo.Storer, idx)
	if err != nil {
		return nil, errors.Repository(err)
	}

	head, err := h.Head()
	if err != nil {
		return nil, errors.Repository(err)
	}

	c := &object.Commit{
		Author:    *sig,
		Committer: *sig,
		Message:   message,
		TreeHash:  treeHash,
	}
	if head != nil {
		c.ParentHashes = []plumbing.Hash{head.Hash}
	}

	obj := repo.Storer.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		return nil, errors.Repository(fmt.Errorf("encoding commit: %w", err))
	}
	hash, err := repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return nil, errors.Repository(err)
	}

	name, old, err := advanceHead(h, hash)
	if err != nil {
		return nil, errors.Repository(err)
	}
	w.appendReflog(h, reflogUpdate{
		Ref:     name,
		Old:     old,
		New:     hash,
		Who:     sig,
		Message: reflogMessage(message, head == nil),
	})

	record := &Record{
		ID: hash.String(),
		Author: Author{
			Name:  sig.Name,
			Email: sig.Email,
		},
		Message:   message,
		Timestamp: sig.When.Unix(),
	}
	for _, p := range c.ParentHashes {
		record.Parents = append(record.Parents, p.String())
	}

	w.Logger.Info("created commit",
		zap.String("root", h.Root()),
		zap.String("id", record.ID),
		zap.Int("parents", len(record.Parents)))
	return record, nil
}

func (w *Writer) signature(h *repository.Handle) (*object.Signature, error) {
	cfg, err := h.Repo().ConfigScoped(w.Scope)
	if err != nil {
		return nil, errors.Repository(err)
	}
	if cfg.User.Name == "" || cfg.User.Email == "" {
		return nil, errors.NoIdentity()
	}

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	return &object.Signature{
		Name:  cfg.User.Name,
		Email: cfg.User.Email,
		When:  now(),
	}, nil
}

// advanceHead moves the branch HEAD points at, or HEAD itself when detached,
// and returns the updated ref with its previous value. The update is a
// compare-and-swap against the ref value read here so a concurrent writer
// surfaces as an error instead of a lost commit.
func advanceHead(h *repository.Handle, hash plumbing.Hash) (plumbing.ReferenceName, plumbing.Hash, error) {
	refs := h.Repo().Storer

	head, err := refs.Reference(plumbing.HEAD)
	if err != nil {
		return "", plumbing.ZeroHash, fmt.Errorf("reading HEAD: %w", err)
	}

	name := plumbing.HEAD
	if head.Type() == plumbing.SymbolicReference {
		name = head.Target()
	}

	old, err := refs.Reference(name)
	if err != nil && err != plumbing.ErrReferenceNotFound {
		return "", plumbing.ZeroHash, fmt.Errorf("reading %s: %w", name, err)
	}
	if err == plumbing.ErrReferenceNotFound {
		old = nil
	}

	if err := refs.CheckAndSetReference(plumbing.NewHashReference(name, hash), old); err != nil {
		return "", plumbing.ZeroHash, fmt.Errorf("updating %s: %w", name, err)
	}

	prev := plumbing.ZeroHash
	if old != nil {
		prev = old.Hash()
	}
	return name, prev, nil
}
