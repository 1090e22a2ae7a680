package fs

import (
	"context"
	"path/filepath"
	"strings"
)

// Source supplies entry trees for a set of roots and performs filesystem
// mutations on them. Snapshot and lookup methods are cheap and may be called
// from the control loop; mutations block and are meant to run on a task
// goroutine. Implementations must be safe for concurrent use.
type Source interface {
	// Roots returns root ids in display order.
	Roots() []RootID
	Snapshot(root RootID) (*Snapshot, bool)
	RootForEntry(id EntryID) (RootID, bool)

	CreateEntry(ctx context.Context, root RootID, path string, isDir bool) (Entry, error)
	RenameEntry(ctx context.Context, id EntryID, newPath string) (Entry, error)
	DeleteEntry(ctx context.Context, id EntryID) error
	CopyEntry(ctx context.Context, id EntryID, newPath string) (Entry, error)
	// ExpandEntry makes sure the children of a directory are loaded.
	ExpandEntry(ctx context.Context, root RootID, id EntryID) error

	// SetChangeHandler registers the callback invoked after a root's snapshot
	// has been replaced. It may be called from any goroutine.
	SetChangeHandler(fn func(RootID))
}

// Lookup finds the entry at an absolute path in the first root containing it.
func Lookup(src Source, absPath string) (RootID, Entry, bool) {
	absPath = filepath.Clean(absPath)
	for _, root := range src.Roots() {
		snap, ok := src.Snapshot(root)
		if !ok {
			continue
		}
		rel, err := filepath.Rel(filepath.Clean(snap.AbsPath()), absPath)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if rel == ".." || strings.HasPrefix(rel, "../") {
			continue
		}
		if rel == "." {
			rel = ""
		}
		if entry, ok := snap.EntryForPath(rel); ok {
			return root, entry, true
		}
	}
	return 0, Entry{}, false
}
