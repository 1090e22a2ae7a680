package fs

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Operation names used for injected failures and logging.
const (
	OpCreate = "create"
	OpRename = "rename"
	OpDelete = "delete"
	OpCopy   = "copy"
	OpExpand = "expand"
)

// ExpandRequest records a call to MemorySource.ExpandEntry.
type ExpandRequest struct {
	Root RootID
	ID   EntryID
}

// MemorySource is an in-memory Source. Trees are declared as path lists where
// a trailing slash marks a directory; missing parents are created.
type MemorySource struct {
	mu       sync.Mutex
	nextID   uint64
	nextRoot RootID
	order    []RootID
	roots    map[RootID]*memRoot
	owner    map[EntryID]RootID
	failures map[string]error
	expands  []ExpandRequest
	handler  func(RootID)
}

type memRoot struct {
	name    string
	absPath string
	entries map[string]Entry
	snap    *Snapshot
}

func NewMemorySource() *MemorySource {
	return &MemorySource{
		roots:    make(map[RootID]*memRoot),
		owner:    make(map[EntryID]RootID),
		failures: make(map[string]error),
	}
}

// AddRoot mounts a new root named name containing paths.
func (m *MemorySource) AddRoot(name string, paths ...string) RootID {
	m.mu.Lock()
	m.nextRoot++
	id := m.nextRoot
	r := &memRoot{
		name:    name,
		absPath: "/" + name,
		entries: make(map[string]Entry),
	}
	m.roots[id] = r
	m.order = append(m.order, id)
	m.ensureLocked(id, r, "", KindDir)
	for _, p := range paths {
		kind := KindFile
		if strings.HasSuffix(p, "/") {
			kind = KindDir
		}
		m.ensureLocked(id, r, CleanRelative(p), kind)
	}
	m.refreshLocked(r, id)
	m.mu.Unlock()
	m.notify(id)
	return id
}

// RemoveRoot unmounts a root.
func (m *MemorySource) RemoveRoot(root RootID) {
	m.mu.Lock()
	r, ok := m.roots[root]
	if !ok {
		m.mu.Unlock()
		return
	}
	for _, e := range r.entries {
		delete(m.owner, e.ID)
	}
	delete(m.roots, root)
	for i, id := range m.order {
		if id == root {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
	m.notify(root)
}

// SetGitStatus assigns a status to an existing path.
func (m *MemorySource) SetGitStatus(root RootID, p string, status GitStatus) {
	m.update(root, p, func(e *Entry) { e.GitStatus = status })
}

// SetIgnored flags a path and its descendants as ignored.
func (m *MemorySource) SetIgnored(root RootID, p string) {
	m.mu.Lock()
	r, ok := m.roots[root]
	if !ok {
		m.mu.Unlock()
		return
	}
	for ep, e := range r.entries {
		if ep == p || isWithin(ep, p) {
			e.Ignored = true
			r.entries[ep] = e
		}
	}
	m.refreshLocked(r, root)
	m.mu.Unlock()
	m.notify(root)
}

// FailNext makes the next call of op return err.
func (m *MemorySource) FailNext(op string, err error) {
	m.mu.Lock()
	m.failures[op] = err
	m.mu.Unlock()
}

// ExpandRequests returns every ExpandEntry call made so far.
func (m *MemorySource) ExpandRequests() []ExpandRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ExpandRequest, len(m.expands))
	copy(out, m.expands)
	return out
}

// ID returns the entry id for a path, or the zero id.
func (m *MemorySource) ID(root RootID, p string) EntryID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.roots[root]; ok {
		return r.entries[p].ID
	}
	return EntryID{}
}

func (m *MemorySource) Roots() []RootID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RootID, len(m.order))
	copy(out, m.order)
	return out
}

func (m *MemorySource) Snapshot(root RootID) (*Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roots[root]
	if !ok {
		return nil, false
	}
	return r.snap, true
}

func (m *MemorySource) RootForEntry(id EntryID) (RootID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	root, ok := m.owner[id]
	return root, ok
}

func (m *MemorySource) SetChangeHandler(fn func(RootID)) {
	m.mu.Lock()
	m.handler = fn
	m.mu.Unlock()
}

func (m *MemorySource) CreateEntry(ctx context.Context, root RootID, p string, isDir bool) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	m.mu.Lock()
	if err := m.takeFailureLocked(OpCreate); err != nil {
		m.mu.Unlock()
		return Entry{}, err
	}
	r, ok := m.roots[root]
	if !ok {
		m.mu.Unlock()
		return Entry{}, fmt.Errorf("create %q: %w", p, ErrNotFound)
	}
	p = CleanRelative(p)
	if _, exists := r.entries[p]; exists || p == "" {
		m.mu.Unlock()
		return Entry{}, fmt.Errorf("create %q: %w", p, ErrExists)
	}
	kind := KindFile
	if isDir {
		kind = KindDir
	}
	e := m.ensureLocked(root, r, p, kind)
	m.refreshLocked(r, root)
	m.mu.Unlock()
	m.notify(root)
	return e, nil
}

func (m *MemorySource) RenameEntry(ctx context.Context, id EntryID, newPath string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	m.mu.Lock()
	if err := m.takeFailureLocked(OpRename); err != nil {
		m.mu.Unlock()
		return Entry{}, err
	}
	root, r, e, err := m.lookupLocked(id)
	if err != nil {
		m.mu.Unlock()
		return Entry{}, fmt.Errorf("rename: %w", err)
	}
	newPath = CleanRelative(newPath)
	if _, exists := r.entries[newPath]; exists {
		m.mu.Unlock()
		return Entry{}, fmt.Errorf("rename %q: %w", newPath, ErrExists)
	}
	if newPath == "" || isWithin(newPath, e.Path) {
		m.mu.Unlock()
		return Entry{}, fmt.Errorf("rename %q: %w", newPath, ErrOutsideRoot)
	}
	if parent, ok := ParentPath(newPath); ok {
		m.ensureLocked(root, r, parent, KindDir)
	}
	moved := make(map[string]Entry)
	for ep, child := range r.entries {
		if ep == e.Path || isWithin(ep, e.Path) {
			delete(r.entries, ep)
			child.Path = newPath + strings.TrimPrefix(ep, e.Path)
			moved[child.Path] = child
		}
	}
	for p, child := range moved {
		r.entries[p] = child
	}
	result := r.entries[newPath]
	m.refreshLocked(r, root)
	m.mu.Unlock()
	m.notify(root)
	return result, nil
}

func (m *MemorySource) DeleteEntry(ctx context.Context, id EntryID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	if err := m.takeFailureLocked(OpDelete); err != nil {
		m.mu.Unlock()
		return err
	}
	root, r, e, err := m.lookupLocked(id)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("delete: %w", err)
	}
	if e.Path == "" {
		m.mu.Unlock()
		return fmt.Errorf("delete root: %w", ErrOutsideRoot)
	}
	for ep, child := range r.entries {
		if ep == e.Path || isWithin(ep, e.Path) {
			delete(r.entries, ep)
			delete(m.owner, child.ID)
		}
	}
	m.refreshLocked(r, root)
	m.mu.Unlock()
	m.notify(root)
	return nil
}

func (m *MemorySource) CopyEntry(ctx context.Context, id EntryID, newPath string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	m.mu.Lock()
	if err := m.takeFailureLocked(OpCopy); err != nil {
		m.mu.Unlock()
		return Entry{}, err
	}
	root, r, e, err := m.lookupLocked(id)
	if err != nil {
		m.mu.Unlock()
		return Entry{}, fmt.Errorf("copy: %w", err)
	}
	newPath = CleanRelative(newPath)
	if _, exists := r.entries[newPath]; exists || newPath == "" {
		m.mu.Unlock()
		return Entry{}, fmt.Errorf("copy %q: %w", newPath, ErrExists)
	}
	var sources []Entry
	for ep, child := range r.entries {
		if ep == e.Path || isWithin(ep, e.Path) {
			sources = append(sources, child)
		}
	}
	for _, src := range sources {
		m.ensureLocked(root, r, newPath+strings.TrimPrefix(src.Path, e.Path), src.Kind)
	}
	result := r.entries[newPath]
	m.refreshLocked(r, root)
	m.mu.Unlock()
	m.notify(root)
	return result, nil
}

func (m *MemorySource) ExpandEntry(ctx context.Context, root RootID, id EntryID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expands = append(m.expands, ExpandRequest{Root: root, ID: id})
	if err := m.takeFailureLocked(OpExpand); err != nil {
		return err
	}
	if _, ok := m.roots[root]; !ok {
		return fmt.Errorf("expand: %w", ErrNotFound)
	}
	return nil
}

func (m *MemorySource) update(root RootID, p string, fn func(*Entry)) {
	m.mu.Lock()
	r, ok := m.roots[root]
	if !ok {
		m.mu.Unlock()
		return
	}
	e, ok := r.entries[p]
	if !ok {
		m.mu.Unlock()
		return
	}
	fn(&e)
	r.entries[p] = e
	m.refreshLocked(r, root)
	m.mu.Unlock()
	m.notify(root)
}

func (m *MemorySource) lookupLocked(id EntryID) (RootID, *memRoot, Entry, error) {
	root, ok := m.owner[id]
	if !ok {
		return 0, nil, Entry{}, ErrNotFound
	}
	r := m.roots[root]
	for _, e := range r.entries {
		if e.ID == id {
			return root, r, e, nil
		}
	}
	return 0, nil, Entry{}, ErrNotFound
}

// ensureLocked creates p and any missing parents, returning the entry at p.
func (m *MemorySource) ensureLocked(root RootID, r *memRoot, p string, kind Kind) Entry {
	if e, ok := r.entries[p]; ok {
		return e
	}
	if parent, ok := ParentPath(p); ok {
		m.ensureLocked(root, r, parent, KindDir)
	}
	m.nextID++
	e := Entry{
		ID:    RealID(m.nextID),
		Path:  p,
		Kind:  kind,
		Mtime: time.Unix(0, 0).UTC(),
	}
	if parent, ok := ParentPath(p); ok && r.entries[parent].Ignored {
		e.Ignored = true
	}
	r.entries[p] = e
	m.owner[e.ID] = root
	return e
}

func (m *MemorySource) refreshLocked(r *memRoot, root RootID) {
	entries := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.snap = NewSnapshot(root, r.name, r.absPath, entries)
}

func (m *MemorySource) takeFailureLocked(op string) error {
	err, ok := m.failures[op]
	if !ok {
		return nil
	}
	delete(m.failures, op)
	return fmt.Errorf("%s: %w", op, err)
}

func (m *MemorySource) notify(root RootID) {
	m.mu.Lock()
	fn := m.handler
	m.mu.Unlock()
	if fn != nil {
		fn(root)
	}
}

var _ Source = (*MemorySource)(nil)
