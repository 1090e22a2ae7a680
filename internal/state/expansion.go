package state

import (
	"sort"

	"github.com/kk-code-lab/rtree/internal/fs"
)

// ExpansionSet is a sorted, duplicate-free set of expanded directory ids.
type ExpansionSet struct {
	ids []fs.EntryID
}

func (s *ExpansionSet) search(id fs.EntryID) (int, bool) {
	idx := sort.Search(len(s.ids), func(i int) bool {
		return s.ids[i].Compare(id) >= 0
	})
	return idx, idx < len(s.ids) && s.ids[idx] == id
}

// Contains reports whether id is expanded.
func (s *ExpansionSet) Contains(id fs.EntryID) bool {
	if s == nil {
		return false
	}
	_, ok := s.search(id)
	return ok
}

// Insert adds id; it returns false if id was already present.
func (s *ExpansionSet) Insert(id fs.EntryID) bool {
	idx, ok := s.search(id)
	if ok {
		return false
	}
	s.ids = append(s.ids, fs.EntryID{})
	copy(s.ids[idx+1:], s.ids[idx:])
	s.ids[idx] = id
	return true
}

// Remove drops id; it returns false if id was not present.
func (s *ExpansionSet) Remove(id fs.EntryID) bool {
	idx, ok := s.search(id)
	if !ok {
		return false
	}
	s.ids = append(s.ids[:idx], s.ids[idx+1:]...)
	return true
}

// Toggle flips id and reports whether it is now expanded.
func (s *ExpansionSet) Toggle(id fs.EntryID) bool {
	if s.Remove(id) {
		return false
	}
	s.Insert(id)
	return true
}

func (s *ExpansionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// IDs returns a copy of the expanded ids in ascending order.
func (s *ExpansionSet) IDs() []fs.EntryID {
	if s == nil {
		return nil
	}
	out := make([]fs.EntryID, len(s.ids))
	copy(out, s.ids)
	return out
}

// ExpansionTable maps each root to its expansion set. A root has no set until
// its root entry is first seen by a rebuild.
type ExpansionTable struct {
	sets map[fs.RootID]*ExpansionSet
}

func NewExpansionTable() *ExpansionTable {
	return &ExpansionTable{sets: make(map[fs.RootID]*ExpansionSet)}
}

// Get returns the set for root if one exists.
func (t *ExpansionTable) Get(root fs.RootID) (*ExpansionSet, bool) {
	s, ok := t.sets[root]
	return s, ok
}

// ensureRoot creates the set for root with the root entry expanded, the
// first time the root entry becomes available.
func (t *ExpansionTable) ensureRoot(root fs.RootID, rootEntry fs.EntryID) *ExpansionSet {
	if s, ok := t.sets[root]; ok {
		return s
	}
	s := &ExpansionSet{ids: []fs.EntryID{rootEntry}}
	t.sets[root] = s
	return s
}

// Remove forgets a root.
func (t *ExpansionTable) Remove(root fs.RootID) {
	delete(t.sets, root)
}

// Clear drops every set; roots are re-expanded on the next rebuild.
func (t *ExpansionTable) Clear() {
	t.sets = make(map[fs.RootID]*ExpansionSet)
}

// Expanded reports whether id is expanded under root.
func (t *ExpansionTable) Expanded(root fs.RootID, id fs.EntryID) bool {
	return t.sets[root].Contains(id)
}
