package state

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/kk-code-lab/rtree/internal/fs"
)

// recordingHost captures everything the reducer asks of its host.
type recordingHost struct {
	mu        sync.Mutex
	events    []Event
	scrolls   []int
	clipboard []string
	revealed  []string
	prompts   []string
	answer    int // -1 dismisses prompts
}

func (h *recordingHost) Emit(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHost) ScrollToItem(i int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scrolls = append(h.scrolls, i)
}

func (h *recordingHost) WriteClipboard(text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clipboard = append(h.clipboard, text)
	return nil
}

func (h *recordingHost) RevealPath(p string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.revealed = append(h.revealed, p)
	return nil
}

func (h *recordingHost) Prompt(msg string, answers []string) <-chan int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.prompts = append(h.prompts, msg)
	ch := make(chan int, 1)
	if h.answer >= 0 {
		ch <- h.answer
	}
	close(ch)
	return ch
}

func (h *recordingHost) takeEvents() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.events
	h.events = nil
	return out
}

// memoryKV is an in-memory KVStore.
type memoryKV struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memoryKV) ReadKV(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryKV) WriteKV(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

// panelHarness drives a reducer over a MemorySource the way the app loop
// does, with dispatched actions queued until runUntilParked drains them.
type panelHarness struct {
	t       *testing.T
	src     *fs.MemorySource
	host    *recordingHost
	store   *memoryKV
	reducer *PanelReducer
	state   *PanelState

	mu      sync.Mutex
	pending []Action
}

func newPanelHarness(t *testing.T, src *fs.MemorySource, opts ...ReducerOption) *panelHarness {
	t.Helper()
	h := &panelHarness{
		t:     t,
		src:   src,
		host:  &recordingHost{answer: -1},
		store: &memoryKV{},
	}
	queue := NewTaskQueue(nil)
	t.Cleanup(queue.Close)

	opts = append([]ReducerOption{WithHost(h.host), WithTasks(queue), WithStore(h.store)}, opts...)
	h.reducer = NewPanelReducer(src, opts...)
	h.state = NewPanelState(40)
	h.state.Focused = true
	h.state.SetDispatch(h.enqueue)
	src.SetChangeHandler(func(root fs.RootID) {
		h.enqueue(SnapshotChangedAction{Root: root})
	})
	h.do(SnapshotChangedAction{})
	return h
}

func (h *panelHarness) enqueue(a Action) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = append(h.pending, a)
}

func (h *panelHarness) do(a Action) {
	h.t.Helper()
	if _, err := h.reducer.Reduce(h.state, a); err != nil {
		h.t.Fatalf("Reduce(%T): %v", a, err)
	}
}

// runUntilParked waits for background tasks and applies what they
// dispatched, until nothing is left.
func (h *panelHarness) runUntilParked() {
	h.t.Helper()
	for {
		h.reducer.Tasks().Wait()
		h.mu.Lock()
		pending := h.pending
		h.pending = nil
		h.mu.Unlock()
		if len(pending) == 0 {
			return
		}
		for _, a := range pending {
			h.do(a)
		}
	}
}

func (h *panelHarness) root(name string) fs.RootID {
	h.t.Helper()
	for _, root := range h.src.Roots() {
		if snap, ok := h.src.Snapshot(root); ok && snap.RootName() == name {
			return root
		}
	}
	h.t.Fatalf("no root named %q", name)
	return 0
}

// selectPath selects "rootname/relative/path".
func (h *panelHarness) selectPath(p string) {
	h.t.Helper()
	name, rel, _ := strings.Cut(p, "/")
	root := h.root(name)
	id := h.src.ID(root, rel)
	if id.IsZero() {
		h.t.Fatalf("no entry for %q", p)
	}
	h.do(SelectEntryAction{Root: root, ID: id})
}

func (h *panelHarness) toggle(p string) {
	h.t.Helper()
	name, rel, _ := strings.Cut(p, "/")
	h.do(ToggleExpandedAction{ID: h.src.ID(h.root(name), rel)})
}

// setText replaces the editor contents.
func (h *panelHarness) setText(text string) {
	n := len([]rune(text))
	h.state.Editor.SetText(text, n, n)
}

func (h *panelHarness) rows(start, end int) []string {
	return FormatRows(VisibleRows(h.state, h.src, start, end, DefaultDisplayConfig(), nil))
}

func (h *panelHarness) assertRows(start, end int, want ...string) {
	h.t.Helper()
	got := h.rows(start, end)
	if !reflect.DeepEqual(got, want) {
		h.t.Fatalf("rows[%d:%d]:\n got:\n  %s\nwant:\n  %s", start, end,
			strings.Join(got, "\n  "), strings.Join(want, "\n  "))
	}
}

// twoRootSource builds the root1/root2 fixture used across the tests.
func twoRootSource() *fs.MemorySource {
	src := fs.NewMemorySource()
	src.AddRoot("root1",
		".dockerignore",
		".git/HEAD",
		"a/0/q", "a/0/r", "a/0/s",
		"a/1/t", "a/1/u",
		"a/2/v", "a/2/w", "a/2/x", "a/2/y", "a/2/z",
		"b/3/Q",
		"b/4/R", "b/4/S", "b/4/T", "b/4/U",
		"C/5/",
		"C/6/V", "C/6/W",
		"C/7/X",
		"C/8/Y/", "C/8/Z",
	)
	src.AddRoot("root2", "d/9", "e/")
	return src
}
