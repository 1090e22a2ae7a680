package state

import (
	"reflect"
	"testing"

	"github.com/kk-code-lab/rtree/internal/fs"
)

func ids(ns ...uint64) []fs.EntryID {
	out := make([]fs.EntryID, len(ns))
	for i, n := range ns {
		out[i] = fs.RealID(n)
	}
	return out
}

func TestExpansionSetKeepsSortedUnique(t *testing.T) {
	var s ExpansionSet
	for _, n := range []uint64{5, 1, 9, 5, 3, 1} {
		s.Insert(fs.RealID(n))
	}
	if got, want := s.IDs(), ids(1, 3, 5, 9); !reflect.DeepEqual(got, want) {
		t.Fatalf("IDs = %v, want %v", got, want)
	}

	if s.Insert(fs.RealID(3)) {
		t.Errorf("Insert of present id reported a change")
	}
	if !s.Remove(fs.RealID(5)) || s.Remove(fs.RealID(5)) {
		t.Errorf("Remove should succeed once")
	}
	if got, want := s.IDs(), ids(1, 3, 9); !reflect.DeepEqual(got, want) {
		t.Fatalf("IDs after remove = %v, want %v", got, want)
	}
}

func TestExpansionSetToggle(t *testing.T) {
	var s ExpansionSet
	s.Insert(fs.RealID(2))
	before := s.IDs()

	if !s.Toggle(fs.RealID(7)) {
		t.Fatalf("first toggle should expand")
	}
	if s.Toggle(fs.RealID(7)) {
		t.Fatalf("second toggle should collapse")
	}
	if got := s.IDs(); !reflect.DeepEqual(got, before) {
		t.Fatalf("toggle twice = %v, want %v", got, before)
	}
}

func TestExpansionSetNil(t *testing.T) {
	var s *ExpansionSet
	if s.Contains(fs.RealID(1)) || s.Len() != 0 || s.IDs() != nil {
		t.Fatalf("nil set should be empty")
	}
}

func TestExpansionTableRoots(t *testing.T) {
	table := NewExpansionTable()
	if _, ok := table.Get(1); ok {
		t.Fatalf("fresh table has a set")
	}

	set := table.ensureRoot(1, fs.RealID(10))
	if !set.Contains(fs.RealID(10)) {
		t.Fatalf("root entry not expanded")
	}
	set.Remove(fs.RealID(10))
	if again := table.ensureRoot(1, fs.RealID(10)); again != set || again.Contains(fs.RealID(10)) {
		t.Fatalf("ensureRoot re-expanded an existing set")
	}

	table.Clear()
	if table.Expanded(1, fs.RealID(10)) {
		t.Fatalf("Clear kept expansion")
	}
	table.ensureRoot(2, fs.RealID(20))
	table.Remove(2)
	if _, ok := table.Get(2); ok {
		t.Fatalf("Remove kept the set")
	}
}
