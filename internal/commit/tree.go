// internal/commit/tree.go
package commit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// treeNode is one directory level while turning the flat index into nested
// tree objects.
type treeNode struct {
	files []object.TreeEntry
	dirs  map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{dirs: make(map[string]*treeNode)}
}

func (n *treeNode) insert(parts []string, e *index.Entry) {
	if len(parts) == 1 {
		n.files = append(n.files, object.TreeEntry{
			Name: parts[0],
			Mode: e.Mode,
			Hash: e.Hash,
		})
		return
	}

	child, ok := n.dirs[parts[0]]
	if !ok {
		child = newTreeNode()
		n.dirs[parts[0]] = child
	}
	child.insert(parts[1:], e)
}

func (n *treeNode) write(objects storer.EncodedObjectStorer) (plumbing.Hash, error) {
	entries := make([]object.TreeEntry, 0, len(n.files)+len(n.dirs))
	entries = append(entries, n.files...)
	for name, child := range n.dirs {
		hash, err := child.write(objects)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries = append(entries, object.TreeEntry{
			Name: name,
			Mode: filemode.Dir,
			Hash: hash,
		})
	}

	// git orders tree entries as if directory names carried a trailing slash
	sort.Slice(entries, func(i, j int) bool {
		return sortKey(entries[i]) < sortKey(entries[j])
	})

	tree := &object.Tree{Entries: entries}
	obj := objects.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encoding tree: %w", err)
	}
	return objects.SetEncodedObject(obj)
}

func sortKey(e object.TreeEntry) string {
	if e.Mode == filemode.Dir {
		return e.Name + "/"
	}
	return e.Name
}

// writeTree snapshots idx into tree objects and returns the root tree id.
func writeTree(objects storer.EncodedObjectStorer, idx *index.Index) (plumbing.Hash, error) {
	root := newTreeNode()
	for _, e := range idx.Entries {
		if e.Stage != 0 {
			return plumbing.ZeroHash, fmt.Errorf("index contains unmerged entry %s", e.Name)
		}
		root.insert(strings.Split(e.Name, "/"), e)
	}
	return root.write(objects)
}
