package state

import (
	"context"
	"reflect"
	"testing"

	"github.com/kk-code-lab/rtree/internal/fs"
)

// ===== PROJECTION SCENARIOS =====

func TestVisibleList(t *testing.T) {
	h := newPanelHarness(t, twoRootSource())
	h.assertRows(0, 50,
		"v root1",
		"    > .git",
		"    > a",
		"    > b",
		"    > C",
		"      .dockerignore",
		"v root2",
		"    > d",
		"    > e",
	)

	h.toggle("root1/b")
	h.assertRows(0, 50,
		"v root1",
		"    > .git",
		"    > a",
		"    v b  <== selected",
		"        > 3",
		"        > 4",
		"    > C",
		"      .dockerignore",
		"v root2",
		"    > d",
		"    > e",
	)

	h.assertRows(6, 9,
		"    > C",
		"      .dockerignore",
		"v root2",
	)
}

func TestExpandRequestsMaterialization(t *testing.T) {
	src := twoRootSource()
	h := newPanelHarness(t, src)
	root := h.root("root1")

	h.toggle("root1/a")
	h.runUntilParked()
	h.selectPath("root1/a/1")
	h.do(ExpandSelectedAction{})
	h.runUntilParked()

	want := []fs.ExpandRequest{
		{Root: root, ID: src.ID(root, "a")},
		{Root: root, ID: src.ID(root, "a/1")},
	}
	if got := src.ExpandRequests(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expand requests = %+v, want %+v", got, want)
	}
}

// ===== NAVIGATION =====

func TestSelectNextAndPrev(t *testing.T) {
	h := newPanelHarness(t, twoRootSource())

	h.do(SelectPrevAction{})
	h.assertRows(0, 1, "v root1  <== selected")

	h.do(SelectPrevAction{})
	h.assertRows(0, 1, "v root1  <== selected")

	h.do(SelectNextAction{})
	h.assertRows(0, 2, "v root1", "    > .git  <== selected")

	// Crossing from the last entry of one root into the next root.
	h.selectPath("root1/.dockerignore")
	h.do(SelectNextAction{})
	h.assertRows(5, 7, "      .dockerignore", "v root2  <== selected")
	h.do(SelectPrevAction{})
	h.assertRows(5, 7, "      .dockerignore  <== selected", "v root2")

	// The absolute last entry stays put.
	h.selectPath("root2/e")
	h.do(SelectNextAction{})
	h.assertRows(8, 9, "    > e  <== selected")

	if got := h.host.scrolls[len(h.host.scrolls)-1]; got != 8 {
		t.Fatalf("last scroll = %d, want 8", got)
	}
}

func TestStaleSelectionNavigatesFromStart(t *testing.T) {
	h := newPanelHarness(t, twoRootSource())
	h.selectPath("root1/a/0/q") // not visible

	h.do(SelectNextAction{})
	h.assertRows(0, 2, "v root1", "    > .git  <== selected")
}

func TestSelectFirst(t *testing.T) {
	h := newPanelHarness(t, twoRootSource())
	h.selectPath("root2/d")
	h.do(SelectFirstAction{})
	if got := *h.state.Selection; got.ID != h.src.ID(h.root("root1"), "") {
		t.Fatalf("selection = %+v, want root1 root entry", got)
	}
}

func TestSelectionIndexRoundTrip(t *testing.T) {
	h := newPanelHarness(t, twoRootSource())
	h.toggle("root1/a")
	h.toggle("root1/a/2")
	h.toggle("root2/d")

	n := h.state.Projection.Len()
	for i := 0; i < n; i++ {
		root, entry, ok := h.state.Projection.At(i)
		if !ok {
			t.Fatalf("At(%d) missing", i)
		}
		idx, ok := h.state.Projection.IndexFor(Selection{Root: root, ID: entry.ID})
		if !ok || idx.Flat != i {
			t.Fatalf("IndexFor(At(%d)) = %+v, %v", i, idx, ok)
		}
		gotRoot, gotEntry, _ := h.state.Projection.entryAt(idx.Root, idx.Entry)
		if gotRoot != root || gotEntry.ID != entry.ID {
			t.Fatalf("entryAt(%d, %d) = %v/%v, want %v/%v", idx.Root, idx.Entry, gotRoot, gotEntry.ID, root, entry.ID)
		}
	}
	if _, _, ok := h.state.Projection.At(n); ok {
		t.Fatalf("At(len) should miss")
	}
}

// ===== EXPANSION =====

func TestExpandSelectedTwiceMovesDown(t *testing.T) {
	h := newPanelHarness(t, twoRootSource())
	h.selectPath("root1/a")

	h.do(ExpandSelectedAction{})
	h.assertRows(2, 4, "    v a  <== selected", "        > 0")

	h.do(ExpandSelectedAction{})
	h.assertRows(2, 4, "    v a", "        > 0  <== selected")
}

func TestExpandSelectedIgnoresFiles(t *testing.T) {
	h := newPanelHarness(t, twoRootSource())
	h.selectPath("root1/.dockerignore")
	before := h.rows(0, 50)
	h.do(ExpandSelectedAction{})
	if got := h.rows(0, 50); !reflect.DeepEqual(got, before) {
		t.Fatalf("expanding a file changed rows: %v", got)
	}
}

func TestCollapseSelected(t *testing.T) {
	h := newPanelHarness(t, twoRootSource())
	h.toggle("root1/a")
	h.toggle("root1/a/0")

	// A file collapses its parent and selects it.
	h.selectPath("root1/a/0/q")
	h.do(CollapseSelectedAction{})
	h.assertRows(2, 5, "    v a", "        > 0  <== selected", "        > 1")

	// A collapsed directory collapses its nearest expanded ancestor.
	h.do(CollapseSelectedAction{})
	h.assertRows(2, 4, "    > a  <== selected", "    > b")

	h.selectPath("root1")
	h.do(CollapseSelectedAction{})
	h.assertRows(0, 3, "> root1  <== selected", "v root2", "    > d")
}

func TestCollapseAll(t *testing.T) {
	h := newPanelHarness(t, twoRootSource())
	h.toggle("root1/a")
	h.toggle("root1/a/0")
	h.toggle("root2/d")

	h.do(CollapseAllAction{})
	h.assertRows(0, 50,
		"v root1",
		"    > .git",
		"    > a",
		"    > b",
		"    > C",
		"      .dockerignore",
		"v root2",
		"    > d  <== selected",
		"    > e",
	)
}

func TestExpandCollapseRestoresSet(t *testing.T) {
	h := newPanelHarness(t, twoRootSource())
	root := h.root("root1")
	set, _ := h.state.Expansion.Get(root)
	before := set.IDs()

	h.toggle("root1/C")
	h.toggle("root1/C")
	if got := set.IDs(); !reflect.DeepEqual(got, before) {
		t.Fatalf("expansion after expand+collapse = %v, want %v", got, before)
	}
}

func TestRevealEntryExpandsAncestors(t *testing.T) {
	h := newPanelHarness(t, twoRootSource())
	root := h.root("root1")
	h.do(RevealEntryAction{ID: h.src.ID(root, "a/2/x")})
	h.assertRows(2, 9,
		"    v a",
		"        > 0",
		"        > 1",
		"        v 2",
		"              v",
		"              w",
		"              x  <== selected",
	)
	if len(h.host.scrolls) == 0 || h.host.scrolls[len(h.host.scrolls)-1] != 8 {
		t.Fatalf("scrolls = %v, want last 8", h.host.scrolls)
	}
}

func TestRootRemoved(t *testing.T) {
	src := twoRootSource()
	h := newPanelHarness(t, src)
	root2 := h.root("root2")

	src.RemoveRoot(root2)
	h.do(RootRemovedAction{Root: root2})
	h.runUntilParked()

	if _, ok := h.state.Expansion.Get(root2); ok {
		t.Fatalf("expansion set kept for removed root")
	}
	if got := len(h.state.Projection); got != 1 {
		t.Fatalf("projection roots = %d, want 1", got)
	}
}

func TestIgnoredEntriesHidden(t *testing.T) {
	src := twoRootSource()
	root := src.Roots()[0]
	src.SetIgnored(root, ".git")

	h := newPanelHarness(t, src, WithShowIgnored(false))
	h.assertRows(0, 3, "v root1", "    > a", "    > b")

	shown := newPanelHarness(t, src)
	rows := VisibleRows(shown.state, src, 1, 2, DefaultDisplayConfig(), nil)
	if len(rows) != 1 || rows[0].Filename != ".git" || !rows[0].Ignored {
		t.Fatalf("rows = %+v, want ignored .git", rows)
	}
}

// ===== CLIPBOARD =====

func TestCopyPaste(t *testing.T) {
	src := fs.NewMemorySource()
	src.AddRoot("root1", "one.two.txt", "one.txt")
	h := newPanelHarness(t, src)

	h.selectPath("root1/one.two.txt")
	h.do(CopyAction{})
	h.do(PasteAction{})
	h.runUntilParked()
	h.assertRows(0, 50,
		"v root1",
		"      one.two copy.txt",
		"      one.two.txt  <== selected",
		"      one.txt",
	)

	h.do(PasteAction{})
	h.runUntilParked()
	h.assertRows(0, 50,
		"v root1",
		"      one.two copy 1.txt",
		"      one.two copy.txt",
		"      one.two.txt  <== selected",
		"      one.txt",
	)
}

func TestCutPasteMovesIntoDirectory(t *testing.T) {
	src := fs.NewMemorySource()
	root := src.AddRoot("root1", "notes.txt", "docs/")
	h := newPanelHarness(t, src)
	id := src.ID(root, "notes.txt")

	h.selectPath("root1/notes.txt")
	h.do(CutAction{})
	rows := VisibleRows(h.state, src, 0, 10, DefaultDisplayConfig(), nil)
	if !rows[len(rows)-1].Cut {
		t.Fatalf("cut row not flagged: %+v", rows)
	}

	h.selectPath("root1/docs")
	h.do(PasteAction{})
	h.runUntilParked()

	snap, _ := src.Snapshot(root)
	moved, ok := snap.EntryForID(id)
	if !ok || moved.Path != "docs/notes.txt" {
		t.Fatalf("cut entry = %+v, %v; want docs/notes.txt", moved, ok)
	}
	if h.state.Clipboard == nil {
		t.Fatalf("clipboard cleared by paste")
	}
}

func TestPasteAcrossRootsIsNoop(t *testing.T) {
	src := twoRootSource()
	h := newPanelHarness(t, src)
	h.selectPath("root1/.dockerignore")
	h.do(CopyAction{})
	h.selectPath("root2/e")
	h.do(PasteAction{})
	h.runUntilParked()

	snap, _ := src.Snapshot(h.root("root2"))
	if _, ok := snap.EntryForPath("e/.dockerignore"); ok {
		t.Fatalf("paste crossed roots")
	}
}

func TestCopyPaths(t *testing.T) {
	h := newPanelHarness(t, twoRootSource())
	h.selectPath("root1/b")
	h.do(CopyAbsolutePathAction{})
	h.runUntilParked()
	h.do(CopyRelativePathAction{})
	h.runUntilParked()
	h.do(RevealInFileManagerAction{})
	h.runUntilParked()

	if want := []string{"/root1/b", "b"}; !reflect.DeepEqual(h.host.clipboard, want) {
		t.Fatalf("clipboard = %v, want %v", h.host.clipboard, want)
	}
	if want := []string{"/root1/b"}; !reflect.DeepEqual(h.host.revealed, want) {
		t.Fatalf("revealed = %v, want %v", h.host.revealed, want)
	}
	if h.state.StatusMessage != "Copied b" {
		t.Fatalf("status = %q", h.state.StatusMessage)
	}
}

// ===== DELETE =====

func TestDeleteRequiresConfirmation(t *testing.T) {
	tests := []struct {
		name    string
		answer  int
		deleted bool
	}{
		{"confirmed", 0, true},
		{"cancelled", 1, false},
		{"dismissed", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := twoRootSource()
			h := newPanelHarness(t, src)
			h.host.answer = tt.answer

			h.selectPath("root1/b")
			h.do(DeleteAction{})
			h.runUntilParked()

			if want := []string{`Delete "b"?`}; !reflect.DeepEqual(h.host.prompts, want) {
				t.Fatalf("prompts = %v, want %v", h.host.prompts, want)
			}
			snap, _ := src.Snapshot(h.root("root1"))
			_, exists := snap.EntryForPath("b")
			if exists == tt.deleted {
				t.Fatalf("b exists = %v after answer %d", exists, tt.answer)
			}
		})
	}
}

func TestDeleteRootEntryIsNoop(t *testing.T) {
	h := newPanelHarness(t, twoRootSource())
	h.host.answer = 0
	h.selectPath("root1")
	h.do(DeleteAction{})
	h.runUntilParked()
	if len(h.host.prompts) != 0 {
		t.Fatalf("prompted for root deletion: %v", h.host.prompts)
	}
}

// ===== EVENTS =====

func TestOpenAndClickEvents(t *testing.T) {
	h := newPanelHarness(t, twoRootSource())
	root := h.root("root1")
	file := h.src.ID(root, ".dockerignore")

	h.do(ClickEntryAction{Root: root, ID: file, ClickCount: 1})
	h.do(ClickEntryAction{Root: root, ID: file, ClickCount: 2})
	h.do(ClickEntryAction{Root: root, ID: file, ClickCount: 1, Split: true})
	h.do(OpenSelectedAction{})

	want := []Event{
		OpenedEntryEvent{Root: root, ID: file, Focus: false},
		OpenedEntryEvent{Root: root, ID: file, Focus: true},
		SplitEntryEvent{Root: root, ID: file},
		OpenedEntryEvent{Root: root, ID: file, Focus: true},
	}
	if got := h.host.takeEvents(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %#v\nwant %#v", got, want)
	}

	// Clicking a directory toggles it.
	dir := h.src.ID(root, "a")
	h.do(ClickEntryAction{Root: root, ID: dir, ClickCount: 1})
	if !h.state.Expansion.Expanded(root, dir) {
		t.Fatalf("click did not expand directory")
	}
	h.do(OpenSelectedAction{})
	if h.state.Expansion.Expanded(root, dir) {
		t.Fatalf("open on a directory did not collapse it")
	}
}

func TestNewSearchOnlyForDirectories(t *testing.T) {
	h := newPanelHarness(t, twoRootSource())
	root := h.root("root1")

	h.selectPath("root1/.dockerignore")
	h.do(NewSearchInDirectoryAction{})
	if got := h.host.takeEvents(); len(got) != 0 {
		t.Fatalf("file emitted %v", got)
	}

	h.selectPath("root1/a")
	h.do(NewSearchInDirectoryAction{})
	got := h.host.takeEvents()
	if len(got) != 1 {
		t.Fatalf("events = %v", got)
	}
	ev, ok := got[0].(NewSearchInDirectoryEvent)
	if !ok || ev.Root != root || ev.Dir.Path != "a" {
		t.Fatalf("event = %#v", got[0])
	}
}

func TestFocusEmittedOnTransition(t *testing.T) {
	h := newPanelHarness(t, twoRootSource())
	h.do(BlurPanelAction{})
	h.do(FocusPanelAction{})
	h.do(FocusPanelAction{})
	h.do(ActivatePanelAction{})

	want := []Event{FocusEvent{}, ActivatePanelEvent{}}
	if got := h.host.takeEvents(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %#v, want %#v", got, want)
	}
}

// ===== PERSISTENCE =====

func TestPanelWidthPersisted(t *testing.T) {
	h := newPanelHarness(t, twoRootSource())
	h.do(SetPanelWidthAction{Width: 55})
	h.do(SetPanelWidthAction{Width: 0})
	h.runUntilParked()

	if h.state.Width != 55 {
		t.Fatalf("width = %d, want 55", h.state.Width)
	}
	if raw := h.store.values[PanelKey]; raw != `{"width":55}` {
		t.Fatalf("stored = %q", raw)
	}

	panel, ok, err := LoadPanel(context.Background(), h.store)
	if err != nil || !ok || panel.Width != 55 {
		t.Fatalf("LoadPanel = %+v, %v, %v", panel, ok, err)
	}

	fresh := NewPanelState(30)
	if _, err := h.reducer.Reduce(fresh, PanelLoadedAction{Width: panel.Width}); err != nil {
		t.Fatal(err)
	}
	if fresh.Width != 55 {
		t.Fatalf("loaded width = %d", fresh.Width)
	}
}

func TestLoadPanelMissingAndCorrupt(t *testing.T) {
	store := &memoryKV{}
	if _, ok, err := LoadPanel(context.Background(), store); ok || err != nil {
		t.Fatalf("empty store = %v, %v", ok, err)
	}
	store.WriteKV(context.Background(), PanelKey, "{not json")
	if _, ok, err := LoadPanel(context.Background(), store); ok || err == nil {
		t.Fatalf("corrupt value = %v, %v; want error", ok, err)
	}
}

func TestUnknownAction(t *testing.T) {
	h := newPanelHarness(t, twoRootSource())
	if _, err := h.reducer.Reduce(h.state, struct{}{}); err == nil {
		t.Fatal("expected error for unknown action")
	}
}
