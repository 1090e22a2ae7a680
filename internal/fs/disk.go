package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

const (
	dirPermission  = 0o755
	filePermission = 0o644
)

// DiskSource serves entries from the local filesystem. Ignored directories
// and .git are listed but only walked once ExpandEntry asks for them.
type DiskSource struct {
	mu       sync.Mutex
	nextID   uint64
	nextRoot RootID
	order    []RootID
	roots    map[RootID]*diskRoot
	owner    map[EntryID]RootID
	handler  func(RootID)

	logger    *zap.Logger
	gitStatus bool
}

type diskRoot struct {
	absPath string
	name    string
	ids     map[string]EntryID
	loaded  map[string]bool
	ignore  *ignoreTree
	snap    *Snapshot
}

// DiskOption configures a DiskSource.
type DiskOption func(*DiskSource)

// WithLogger sets the logger used for scan warnings.
func WithLogger(l *zap.Logger) DiskOption {
	return func(d *DiskSource) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithGitStatus toggles git status collection.
func WithGitStatus(enabled bool) DiskOption {
	return func(d *DiskSource) { d.gitStatus = enabled }
}

func NewDiskSource(opts ...DiskOption) *DiskSource {
	d := &DiskSource{
		roots:     make(map[RootID]*diskRoot),
		owner:     make(map[EntryID]RootID),
		logger:    zap.NewNop(),
		gitStatus: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AddRoot mounts dir and performs the initial scan.
func (d *DiskSource) AddRoot(ctx context.Context, dir string) (RootID, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("resolve root %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return 0, fmt.Errorf("stat root %q: %w", abs, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("root %q is not a directory", abs)
	}

	d.mu.Lock()
	d.nextRoot++
	id := d.nextRoot
	d.roots[id] = &diskRoot{
		absPath: abs,
		name:    filepath.Base(abs),
		ids:     make(map[string]EntryID),
		loaded:  make(map[string]bool),
		ignore:  newIgnoreTree(abs),
	}
	d.order = append(d.order, id)
	d.mu.Unlock()

	if err := d.Rescan(ctx, id); err != nil {
		return id, err
	}
	return id, nil
}

// RemoveRoot unmounts a root.
func (d *DiskSource) RemoveRoot(root RootID) {
	d.mu.Lock()
	r, ok := d.roots[root]
	if !ok {
		d.mu.Unlock()
		return
	}
	for _, id := range r.ids {
		delete(d.owner, id)
	}
	delete(d.roots, root)
	for i, id := range d.order {
		if id == root {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	d.mu.Unlock()
	d.notify(root)
}

func (d *DiskSource) Roots() []RootID {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]RootID, len(d.order))
	copy(out, d.order)
	return out
}

func (d *DiskSource) Snapshot(root RootID) (*Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.roots[root]
	if !ok || r.snap == nil {
		return nil, false
	}
	return r.snap, true
}

func (d *DiskSource) RootForEntry(id EntryID) (RootID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	root, ok := d.owner[id]
	return root, ok
}

func (d *DiskSource) SetChangeHandler(fn func(RootID)) {
	d.mu.Lock()
	d.handler = fn
	d.mu.Unlock()
}

// Dirs returns the absolute paths of every loaded, non-ignored directory.
func (d *DiskSource) Dirs(root RootID) []string {
	snap, ok := d.Snapshot(root)
	if !ok {
		return nil
	}
	var out []string
	for t := snap.Traverse(false); ; t.Advance() {
		e, ok := t.Entry()
		if !ok {
			break
		}
		if e.IsDir() {
			out = append(out, filepath.FromSlash(snap.AbsFor(e.Path)))
		}
	}
	return out
}

type scannedEntry struct {
	path    string
	kind    Kind
	ignored bool
	info    iofs.FileInfo
}

// Rescan walks the root again and replaces its snapshot. Entry ids are kept
// for paths that still exist.
func (d *DiskSource) Rescan(ctx context.Context, root RootID) error {
	d.mu.Lock()
	r, ok := d.roots[root]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("rescan root %d: %w", root, ErrNotFound)
	}
	abs := r.absPath
	ignore := r.ignore
	loaded := make(map[string]bool, len(r.loaded))
	for k, v := range r.loaded {
		loaded[k] = v
	}
	d.mu.Unlock()

	scanned, err := walkRoot(ctx, abs, ignore, loaded)
	if err != nil {
		return fmt.Errorf("scan %s: %w", abs, err)
	}

	statuses := StatusMap{}
	if d.gitStatus {
		statuses, err = LoadGitStatus(ctx, abs)
		if err != nil {
			d.logger.Warn("git status failed", zap.String("root", abs), zap.Error(err))
		}
	}

	d.mu.Lock()
	r, ok = d.roots[root]
	if !ok {
		d.mu.Unlock()
		return nil
	}
	seen := make(map[string]bool, len(scanned))
	entries := make([]Entry, 0, len(scanned))
	for _, s := range scanned {
		id, ok := r.ids[s.path]
		if !ok {
			d.nextID++
			id = RealID(d.nextID)
			r.ids[s.path] = id
			d.owner[id] = root
		}
		seen[s.path] = true
		e := Entry{
			ID:      id,
			Path:    s.path,
			Kind:    s.kind,
			Ignored: s.ignored,
		}
		if s.info != nil {
			e.Mtime = s.info.ModTime()
		}
		if !s.ignored {
			e.GitStatus = statuses.Lookup(s.path)
		}
		entries = append(entries, e)
	}
	for p, id := range r.ids {
		if !seen[p] {
			delete(r.ids, p)
			delete(d.owner, id)
		}
	}
	r.snap = NewSnapshot(root, r.name, abs, entries)
	d.mu.Unlock()

	d.notify(root)
	return nil
}

func walkRoot(ctx context.Context, abs string, ignore *ignoreTree, loaded map[string]bool) ([]scannedEntry, error) {
	rootInfo, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	out := []scannedEntry{{path: "", kind: KindDir, info: rootInfo}}
	var mu sync.Mutex

	conf := &fastwalk.Config{Follow: false}
	err = fastwalk.Walk(conf, abs, func(fullPath string, de iofs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			return nil
		}
		rel, err := filepath.Rel(abs, fullPath)
		if err != nil || rel == "." {
			return nil
		}
		rel = norm.NFC.String(filepath.ToSlash(rel))

		isDir := de.IsDir()
		ignored := isIgnoredPath(ignore, rel, isDir)
		info, _ := de.Info()
		kind := KindFile
		if isDir {
			kind = KindDir
		}

		mu.Lock()
		out = append(out, scannedEntry{path: rel, kind: kind, ignored: ignored, info: info})
		mu.Unlock()

		if isDir && ignored && !loaded[rel] {
			return fastwalk.SkipDir
		}
		return nil
	})
	if err != nil && !errors.Is(err, fastwalk.SkipDir) {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out, nil
}

// isIgnoredPath applies the rules of every ancestor directory, so contents of
// an ignored directory stay ignored once it is loaded.
func isIgnoredPath(ignore *ignoreTree, rel string, isDir bool) bool {
	if ignore.ignored(rel, isDir) {
		return true
	}
	for p, ok := ParentPath(rel); ok && p != ""; p, ok = ParentPath(p) {
		if ignore.ignored(p, true) {
			return true
		}
	}
	return false
}

func (d *DiskSource) resolve(id EntryID) (RootID, string, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	root, ok := d.owner[id]
	if !ok {
		return 0, "", "", ErrNotFound
	}
	r := d.roots[root]
	for p, candidate := range r.ids {
		if candidate == id {
			return root, p, r.absPath, nil
		}
	}
	return 0, "", "", ErrNotFound
}

func (d *DiskSource) absRoot(root RootID) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.roots[root]
	if !ok {
		return "", ErrNotFound
	}
	return r.absPath, nil
}

func (d *DiskSource) entryAt(root RootID, p string) (Entry, error) {
	snap, ok := d.Snapshot(root)
	if !ok {
		return Entry{}, ErrNotFound
	}
	e, ok := snap.EntryForPath(p)
	if !ok {
		return Entry{}, fmt.Errorf("%q after rescan: %w", p, ErrNotFound)
	}
	return e, nil
}

func joinAbs(absRoot, rel string) string {
	return filepath.Join(absRoot, filepath.FromSlash(rel))
}

func (d *DiskSource) CreateEntry(ctx context.Context, root RootID, p string, isDir bool) (Entry, error) {
	abs, err := d.absRoot(root)
	if err != nil {
		return Entry{}, fmt.Errorf("create %q: %w", p, err)
	}
	p = CleanRelative(p)
	if p == "" {
		return Entry{}, fmt.Errorf("create root: %w", ErrExists)
	}
	target := joinAbs(abs, p)
	if _, err := os.Lstat(target); err == nil {
		return Entry{}, fmt.Errorf("create %q: %w", p, ErrExists)
	}
	if isDir {
		err = os.MkdirAll(target, dirPermission)
	} else {
		err = createFile(target)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("create %q: %w", p, err)
	}
	if err := d.Rescan(ctx, root); err != nil {
		return Entry{}, err
	}
	return d.entryAt(root, p)
}

func createFile(target string) error {
	if err := os.MkdirAll(filepath.Dir(target), dirPermission); err != nil {
		return err
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePermission)
	if err != nil {
		return err
	}
	return f.Close()
}

func (d *DiskSource) RenameEntry(ctx context.Context, id EntryID, newPath string) (Entry, error) {
	root, oldPath, abs, err := d.resolve(id)
	if err != nil {
		return Entry{}, fmt.Errorf("rename: %w", err)
	}
	newPath = CleanRelative(newPath)
	if oldPath == "" || newPath == "" || isWithin(newPath, oldPath) {
		return Entry{}, fmt.Errorf("rename %q to %q: %w", oldPath, newPath, ErrOutsideRoot)
	}
	target := joinAbs(abs, newPath)
	if _, err := os.Lstat(target); err == nil {
		return Entry{}, fmt.Errorf("rename to %q: %w", newPath, ErrExists)
	}
	if err := os.MkdirAll(filepath.Dir(target), dirPermission); err != nil {
		return Entry{}, fmt.Errorf("rename to %q: %w", newPath, err)
	}
	if err := os.Rename(joinAbs(abs, oldPath), target); err != nil {
		return Entry{}, fmt.Errorf("rename to %q: %w", newPath, err)
	}

	d.mu.Lock()
	if r, ok := d.roots[root]; ok {
		moved := make(map[string]EntryID)
		for p, eid := range r.ids {
			if p == oldPath || isWithin(p, oldPath) {
				delete(r.ids, p)
				moved[newPath+strings.TrimPrefix(p, oldPath)] = eid
			}
		}
		for p, eid := range moved {
			r.ids[p] = eid
		}
	}
	d.mu.Unlock()

	if err := d.Rescan(ctx, root); err != nil {
		return Entry{}, err
	}
	return d.entryAt(root, newPath)
}

func (d *DiskSource) DeleteEntry(ctx context.Context, id EntryID) error {
	root, p, abs, err := d.resolve(id)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if p == "" {
		return fmt.Errorf("delete root: %w", ErrOutsideRoot)
	}
	if err := os.RemoveAll(joinAbs(abs, p)); err != nil {
		return fmt.Errorf("delete %q: %w", p, err)
	}
	return d.Rescan(ctx, root)
}

func (d *DiskSource) CopyEntry(ctx context.Context, id EntryID, newPath string) (Entry, error) {
	root, p, abs, err := d.resolve(id)
	if err != nil {
		return Entry{}, fmt.Errorf("copy: %w", err)
	}
	newPath = CleanRelative(newPath)
	if newPath == "" || isWithin(newPath, p) {
		return Entry{}, fmt.Errorf("copy %q to %q: %w", p, newPath, ErrOutsideRoot)
	}
	target := joinAbs(abs, newPath)
	if _, err := os.Lstat(target); err == nil {
		return Entry{}, fmt.Errorf("copy to %q: %w", newPath, ErrExists)
	}
	if err := copyTree(ctx, joinAbs(abs, p), target); err != nil {
		return Entry{}, fmt.Errorf("copy to %q: %w", newPath, err)
	}
	if err := d.Rescan(ctx, root); err != nil {
		return Entry{}, err
	}
	return d.entryAt(root, newPath)
}

func (d *DiskSource) ExpandEntry(ctx context.Context, root RootID, id EntryID) error {
	d.mu.Lock()
	r, ok := d.roots[root]
	if !ok || r.snap == nil {
		d.mu.Unlock()
		return fmt.Errorf("expand: %w", ErrNotFound)
	}
	e, ok := r.snap.EntryForID(id)
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("expand: %w", ErrNotFound)
	}
	if !e.IsDir() || r.loaded[e.Path] || !e.Ignored {
		d.mu.Unlock()
		return nil
	}
	r.loaded[e.Path] = true
	d.mu.Unlock()
	return d.Rescan(ctx, root)
}

type copyItem struct {
	src, dst string
	isDir    bool
	mode     iofs.FileMode
}

func copyTree(ctx context.Context, src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		if err := os.MkdirAll(filepath.Dir(dst), dirPermission); err != nil {
			return err
		}
		return copyFile(src, dst, info.Mode())
	}

	var items []copyItem
	var mu sync.Mutex
	conf := &fastwalk.Config{Follow: false}
	err = fastwalk.Walk(conf, src, func(fullPath string, de iofs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, fullPath)
		if err != nil || rel == "." {
			return nil
		}
		fi, err := de.Info()
		if err != nil {
			return err
		}
		mu.Lock()
		items = append(items, copyItem{src: fullPath, dst: filepath.Join(dst, rel), isDir: de.IsDir(), mode: fi.Mode()})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].dst < items[j].dst })
	for _, it := range items {
		if it.isDir {
			if err := os.MkdirAll(it.dst, it.mode.Perm()|0o700); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(it.dst), dirPermission); err != nil {
			return err
		}
		if err := copyFile(it.src, it.dst, it.mode); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, mode iofs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (d *DiskSource) notify(root RootID) {
	d.mu.Lock()
	fn := d.handler
	d.mu.Unlock()
	if fn != nil {
		fn(root)
	}
}

var _ Source = (*DiskSource)(nil)
