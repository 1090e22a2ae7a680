package state

import (
	"sort"
	"strings"

	"github.com/kk-code-lab/rtree/internal/fs"
	"golang.org/x/text/cases"
)

// syntheticComponent is appended to the anchor path of a new-entry
// placeholder. It folds to itself and sorts before any real name.
const syntheticComponent = "\x00"

// RootEntries is one root's slice of the visible projection.
type RootEntries struct {
	Root    fs.RootID
	Entries []fs.Entry
}

// Projection is the flattened, ordered list of visible entries across roots.
// It is rebuilt wholesale and never mutated in place.
type Projection []RootEntries

// Len returns the total number of visible entries.
func (p Projection) Len() int {
	n := 0
	for _, r := range p {
		n += len(r.Entries)
	}
	return n
}

// BuildProjection walks every root of src, emitting expanded subtrees and the
// new-entry placeholder, then sorts each root's entries. A root whose root
// entry becomes available for the first time gets its root entry expanded.
func BuildProjection(src fs.Source, expansion *ExpansionTable, edit *EditSession, includeIgnored bool) Projection {
	folder := cases.Fold()
	var out Projection

	for _, root := range src.Roots() {
		snap, ok := src.Snapshot(root)
		if !ok {
			out = append(out, RootEntries{Root: root})
			continue
		}

		expanded, ok := expansion.Get(root)
		if !ok {
			rootEntry, hasRoot := snap.RootEntry()
			if !hasRoot {
				out = append(out, RootEntries{Root: root})
				continue
			}
			expanded = expansion.ensureRoot(root, rootEntry.ID)
		}

		var newParent fs.EntryID
		newKind := fs.KindDir
		hasNew := false
		if edit != nil && edit.Root == root && edit.IsNew {
			newParent = edit.Anchor
			hasNew = true
			if !edit.IsDir {
				newKind = fs.KindFile
			}
		}

		var entries []fs.Entry
		for t := snap.Traverse(includeIgnored); ; {
			e, ok := t.Entry()
			if !ok {
				break
			}
			entries = append(entries, e)
			if hasNew && e.ID == newParent {
				entries = append(entries, fs.Entry{
					ID:        fs.SyntheticID,
					Path:      fs.JoinPath(e.Path, syntheticComponent),
					Kind:      newKind,
					GitStatus: e.GitStatus,
					Mtime:     e.Mtime,
				})
			}
			if !expanded.Contains(e.ID) {
				t.AdvanceToSibling()
				continue
			}
			t.Advance()
		}

		snap.PropagateStatus(entries)
		sortEntries(entries, folder)
		out = append(out, RootEntries{Root: root, Entries: entries})
	}
	return out
}

type entryKey struct {
	raw    []string
	folded []string
	isFile bool
}

// sortEntries orders entries component-wise from the root: at each level
// directories come before files, then names compare case-insensitively.
func sortEntries(entries []fs.Entry, folder cases.Caser) {
	keys := make([]entryKey, len(entries))
	for i, e := range entries {
		raw := fs.Components(e.Path)
		folded := make([]string, len(raw))
		for j, c := range raw {
			folded[j] = folder.String(c)
		}
		keys[i] = entryKey{raw: raw, folded: folded, isFile: e.IsFile()}
	}

	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return compareEntryKeys(keys[idx[a]], keys[idx[b]]) < 0
	})

	sorted := make([]fs.Entry, len(entries))
	for i, j := range idx {
		sorted[i] = entries[j]
	}
	copy(entries, sorted)
}

func compareEntryKeys(a, b entryKey) int {
	for i := 0; ; i++ {
		aDone, bDone := i >= len(a.raw), i >= len(b.raw)
		switch {
		case aDone && bDone:
			return 0
		case aDone:
			return -1
		case bDone:
			return 1
		}

		aFile := a.isFile && i == len(a.raw)-1
		bFile := b.isFile && i == len(b.raw)-1
		if aFile != bFile {
			if aFile {
				return 1
			}
			return -1
		}
		if c := strings.Compare(a.folded[i], b.folded[i]); c != 0 {
			return c
		}
		if c := strings.Compare(a.raw[i], b.raw[i]); c != 0 {
			return c
		}
	}
}
