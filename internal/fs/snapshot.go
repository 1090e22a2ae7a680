package fs

import (
	"sort"
	"strings"
)

// Snapshot is an immutable observation of one root's entry tree. Entries are
// kept in pre-order so a subtree is a contiguous range and can be skipped in
// one step.
type Snapshot struct {
	root    RootID
	name    string
	absPath string

	entries []Entry
	ends    []int // index one past the last descendant of entries[i]
	status  []GitStatus
	byID    map[EntryID]int
	byPath  map[string]int
}

// NewSnapshot builds a snapshot from entries in any order. Paths must be unique.
func NewSnapshot(root RootID, name, absPath string, entries []Entry) *Snapshot {
	ordered := make([]Entry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return comparePathsRaw(ordered[i].Path, ordered[j].Path) < 0
	})

	s := &Snapshot{
		root:    root,
		name:    name,
		absPath: absPath,
		entries: ordered,
		ends:    make([]int, len(ordered)),
		status:  make([]GitStatus, len(ordered)),
		byID:    make(map[EntryID]int, len(ordered)),
		byPath:  make(map[string]int, len(ordered)),
	}

	parents := make([]int, len(ordered))
	var stack []int
	for i, e := range ordered {
		s.byID[e.ID] = i
		s.byPath[e.Path] = i
		s.status[i] = e.GitStatus
		for len(stack) > 0 && !isWithin(e.Path, ordered[stack[len(stack)-1]].Path) {
			top := stack[len(stack)-1]
			s.ends[top] = i
			stack = stack[:len(stack)-1]
		}
		parents[i] = -1
		if len(stack) > 0 {
			parents[i] = stack[len(stack)-1]
		}
		stack = append(stack, i)
	}
	for _, idx := range stack {
		s.ends[idx] = len(ordered)
	}

	for i := len(ordered) - 1; i >= 0; i-- {
		if p := parents[i]; p >= 0 && s.status[i] > s.status[p] {
			s.status[p] = s.status[i]
		}
	}
	return s
}

// isWithin reports whether p is a strict descendant of dir.
func isWithin(p, dir string) bool {
	if dir == "" {
		return p != ""
	}
	return len(p) > len(dir) && strings.HasPrefix(p, dir) && p[len(dir)] == '/'
}

func comparePathsRaw(a, b string) int {
	ac, bc := Components(a), Components(b)
	for i := 0; i < len(ac) && i < len(bc); i++ {
		if c := strings.Compare(ac[i], bc[i]); c != 0 {
			return c
		}
	}
	return len(ac) - len(bc)
}

func (s *Snapshot) RootID() RootID   { return s.root }
func (s *Snapshot) RootName() string { return s.name }
func (s *Snapshot) AbsPath() string  { return s.absPath }
func (s *Snapshot) Len() int         { return len(s.entries) }

// RootEntry returns the entry for the root directory itself, if loaded.
func (s *Snapshot) RootEntry() (Entry, bool) {
	return s.EntryForPath("")
}

func (s *Snapshot) EntryForID(id EntryID) (Entry, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return Entry{}, false
	}
	return s.entries[idx], true
}

func (s *Snapshot) EntryForPath(p string) (Entry, bool) {
	idx, ok := s.byPath[p]
	if !ok {
		return Entry{}, false
	}
	return s.entries[idx], true
}

// Children returns the direct children of dir in pre-order.
func (s *Snapshot) Children(dir string) []Entry {
	idx, ok := s.byPath[dir]
	if !ok {
		return nil
	}
	var out []Entry
	for i := idx + 1; i < s.ends[idx]; i = s.ends[i] {
		out = append(out, s.entries[i])
	}
	return out
}

// Entries returns a copy of all entries in pre-order.
func (s *Snapshot) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// AbsFor joins the root's absolute path with a relative entry path.
func (s *Snapshot) AbsFor(p string) string {
	if p == "" {
		return s.absPath
	}
	return strings.TrimSuffix(s.absPath, "/") + "/" + p
}

// PropagateStatus replaces each real entry's status with the strongest status
// found in its subtree. Synthetic entries keep their own status.
func (s *Snapshot) PropagateStatus(entries []Entry) {
	for i := range entries {
		if entries[i].IsSynthetic() {
			continue
		}
		if idx, ok := s.byID[entries[i].ID]; ok {
			entries[i].GitStatus = s.status[idx]
		}
	}
}

// Traverse walks the tree depth first starting at the root entry.
func (s *Snapshot) Traverse(includeIgnored bool) *Traversal {
	t := &Traversal{snap: s, includeIgnored: includeIgnored}
	t.skipIgnored()
	return t
}

// Traversal is a cursor over a snapshot in pre-order.
type Traversal struct {
	snap           *Snapshot
	includeIgnored bool
	pos            int
}

// Entry returns the current entry; ok is false once the walk is exhausted.
func (t *Traversal) Entry() (Entry, bool) {
	if t.pos >= len(t.snap.entries) {
		return Entry{}, false
	}
	return t.snap.entries[t.pos], true
}

// Advance moves to the next entry, descending into directories.
func (t *Traversal) Advance() {
	if t.pos < len(t.snap.entries) {
		t.pos++
	}
	t.skipIgnored()
}

// AdvanceToSibling moves past every descendant of the current entry.
func (t *Traversal) AdvanceToSibling() {
	if t.pos < len(t.snap.entries) {
		t.pos = t.snap.ends[t.pos]
	}
	t.skipIgnored()
}

func (t *Traversal) skipIgnored() {
	if t.includeIgnored {
		return
	}
	for t.pos < len(t.snap.entries) && t.snap.entries[t.pos].Ignored {
		t.pos = t.snap.ends[t.pos]
	}
}
