package state

import "github.com/kk-code-lab/rtree/internal/fs"

// Index locates an entry in the projection.
type Index struct {
	Root  int // position of the root in the projection
	Entry int // position within that root's entries
	Flat  int // position across all roots
}

// IndexFor scans the projection for sel. The scan is linear in the number of
// visible entries.
func (p Projection) IndexFor(sel Selection) (Index, bool) {
	flat := 0
	for ri, r := range p {
		if r.Root != sel.Root {
			flat += len(r.Entries)
			continue
		}
		for ei, e := range r.Entries {
			if e.ID == sel.ID {
				return Index{Root: ri, Entry: ei, Flat: flat + ei}, true
			}
		}
		flat += len(r.Entries)
	}
	return Index{}, false
}

// At returns the entry at a flat index.
func (p Projection) At(flat int) (fs.RootID, fs.Entry, bool) {
	if flat < 0 {
		return 0, fs.Entry{}, false
	}
	for _, r := range p {
		if flat < len(r.Entries) {
			return r.Root, r.Entries[flat], true
		}
		flat -= len(r.Entries)
	}
	return 0, fs.Entry{}, false
}

// entryAt returns the entry at a root/entry position pair.
func (p Projection) entryAt(rootIdx, entryIdx int) (fs.RootID, fs.Entry, bool) {
	if rootIdx < 0 || rootIdx >= len(p) {
		return 0, fs.Entry{}, false
	}
	r := p[rootIdx]
	if entryIdx < 0 || entryIdx >= len(r.Entries) {
		return 0, fs.Entry{}, false
	}
	return r.Root, r.Entries[entryIdx], true
}

// next returns the position after idx, crossing into the next root.
func (p Projection) next(idx Index) (int, int) {
	if idx.Root < len(p) && idx.Entry+1 < len(p[idx.Root].Entries) {
		return idx.Root, idx.Entry + 1
	}
	return idx.Root + 1, 0
}

// prev returns the position before idx, crossing into the previous root.
// ok is false at the very first entry.
func (p Projection) prev(idx Index) (int, int, bool) {
	if idx.Entry > 0 {
		return idx.Root, idx.Entry - 1, true
	}
	if idx.Root > 0 && idx.Root <= len(p) {
		return idx.Root - 1, len(p[idx.Root-1].Entries) - 1, true
	}
	return 0, 0, false
}
