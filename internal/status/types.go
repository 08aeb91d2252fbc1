// internal/status/types.go
package status

// Status classifies a single path. The declaration order below is the
// classification precedence: when a path carries both working-tree and index
// changes, the working-tree state wins because it is the most immediate one.
type Status int

const (
	None Status = iota
	Untracked
	Modified
	Deleted
	TypeChanged
	Renamed
	StagedNew
	StagedModified
	StagedDeleted
)

var names = map[Status]string{
	None:           "none",
	Untracked:      "untracked",
	Modified:       "modified",
	Deleted:        "deleted",
	TypeChanged:    "type-changed",
	Renamed:        "renamed",
	StagedNew:      "staged-new",
	StagedModified: "staged-modified",
	StagedDeleted:  "staged-deleted",
}

func (s Status) String() string {
	if n, ok := names[s]; ok {
		return n
	}
	return "unknown"
}

// Symbol is the short code shown to users. Staged and unstaged modifications
// share "M", as do both kinds of deletion.
func (s Status) Symbol() string {
	switch s {
	case Untracked:
		return "?"
	case Modified, StagedModified:
		return "M"
	case Deleted, StagedDeleted:
		return "D"
	case TypeChanged:
		return "T"
	case Renamed:
		return "R"
	case StagedNew:
		return "A"
	default:
		return ""
	}
}

// Unstaged reports whether s describes a working-tree change.
func (s Status) Unstaged() bool {
	return s >= Untracked && s <= Renamed
}

// Change is one path and its classification.
type Change struct {
	Status Status
	Path   string
}

// Report is the result of a scan. An empty report is the "no changes" result.
type Report struct {
	Changes []Change
}

// Clean reports whether the scan found nothing to show.
func (r *Report) Clean() bool {
	return r == nil || len(r.Changes) == 0
}

// HasChanges reports whether any path classifies as something other than None.
func (r *Report) HasChanges() bool {
	if r == nil {
		return false
	}
	for _, c := range r.Changes {
		if c.Status != None {
			return true
		}
	}
	return false
}

// Select returns the changes whose status is one of want, in scan order.
func (r *Report) Select(want ...Status) []Change {
	if r == nil {
		return nil
	}
	set := make(map[Status]bool, len(want))
	for _, s := range want {
		set[s] = true
	}
	var out []Change
	for _, c := range r.Changes {
		if set[c.Status] {
			out = append(out, c)
		}
	}
	return out
}
