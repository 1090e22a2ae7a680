package state

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kk-code-lab/rtree/internal/fs"
	"github.com/kk-code-lab/rtree/internal/logging"
	"github.com/kk-code-lab/rtree/internal/metrics"
	"go.uber.org/zap"
)

// ===== REDUCER =====

// PanelReducer applies actions to a PanelState. It owns no panel state
// itself; it holds the collaborators actions are executed against.
type PanelReducer struct {
	source      fs.Source
	host        Host
	tasks       *TaskQueue
	store       KVStore
	logger      *zap.Logger
	showIgnored bool
}

// ReducerOption configures a PanelReducer.
type ReducerOption func(*PanelReducer)

func WithHost(h Host) ReducerOption {
	return func(r *PanelReducer) { r.host = h }
}

func WithTasks(q *TaskQueue) ReducerOption {
	return func(r *PanelReducer) { r.tasks = q }
}

// WithStore enables persisting the panel width.
func WithStore(s KVStore) ReducerOption {
	return func(r *PanelReducer) { r.store = s }
}

func WithLogger(l *zap.Logger) ReducerOption {
	return func(r *PanelReducer) { r.logger = l }
}

// WithShowIgnored controls whether ignored entries are projected.
func WithShowIgnored(show bool) ReducerOption {
	return func(r *PanelReducer) { r.showIgnored = show }
}

// NewPanelReducer creates a reducer over src.
func NewPanelReducer(src fs.Source, opts ...ReducerOption) *PanelReducer {
	r := &PanelReducer{source: src, showIgnored: true}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.L()
	}
	if r.host == nil {
		r.host = NopHost{}
	}
	if r.tasks == nil {
		r.tasks = NewTaskQueue(r.logger)
	}
	return r
}

// Tasks returns the queue async operations run on.
func (r *PanelReducer) Tasks() *TaskQueue {
	return r.tasks
}

// Reduce applies action to state. Lookup misses and refused operations are
// no-ops; the only error is an unknown action.
func (r *PanelReducer) Reduce(state *PanelState, action Action) (*PanelState, error) {
	switch a := action.(type) {

	// ===== SOURCE NOTIFICATIONS =====

	case SnapshotChangedAction:
		r.rebuild(state)
		return state, nil

	case RootRemovedAction:
		state.Expansion.Remove(a.Root)
		r.rebuild(state)
		return state, nil

	case RevealEntryAction:
		root, ok := r.source.RootForEntry(a.ID)
		if !ok {
			return state, nil
		}
		r.expandToEntry(state, root, a.ID)
		state.selectEntry(root, a.ID)
		r.rebuild(state)
		r.autoscroll(state)
		return state, nil

	// ===== NAVIGATION =====

	case SelectNextAction:
		r.selectNext(state)
		return state, nil

	case SelectPrevAction:
		r.selectPrev(state)
		return state, nil

	case SelectFirstAction:
		r.selectFirst(state)
		return state, nil

	case SelectEntryAction:
		state.selectEntry(a.Root, a.ID)
		r.autoscroll(state)
		return state, nil

	// ===== EXPANSION =====

	case ExpandSelectedAction:
		snap, entry, ok := r.selectedEntry(state)
		if !ok || !entry.IsDir() {
			return state, nil
		}
		set, ok := state.Expansion.Get(snap.RootID())
		if !ok {
			return state, nil
		}
		if set.Contains(entry.ID) {
			r.selectNext(state)
			return state, nil
		}
		r.requestExpand(snap, entry)
		set.Insert(entry.ID)
		r.rebuild(state)
		return state, nil

	case CollapseSelectedAction:
		r.collapseSelected(state)
		return state, nil

	case CollapseAllAction:
		state.Expansion.Clear()
		r.rebuild(state)
		return state, nil

	case ToggleExpandedAction:
		root, ok := r.source.RootForEntry(a.ID)
		if !ok {
			return state, nil
		}
		set, ok := state.Expansion.Get(root)
		if !ok {
			return state, nil
		}
		if !set.Remove(a.ID) {
			if snap, ok := r.source.Snapshot(root); ok {
				if entry, ok := snap.EntryForID(a.ID); ok {
					r.requestExpand(snap, entry)
				}
			}
			set.Insert(a.ID)
		}
		state.selectEntry(root, a.ID)
		r.rebuild(state)
		r.focus(state)
		return state, nil

	// ===== EDITING =====

	case NewFileAction:
		r.addEntry(state, false)
		return state, nil

	case NewDirectoryAction:
		r.addEntry(state, true)
		return state, nil

	case RenameAction:
		r.rename(state)
		return state, nil

	case ConfirmEditAction:
		r.confirm(state)
		return state, nil

	case CancelEditAction:
		state.Edit = nil
		state.Editor.Clear()
		r.rebuild(state)
		r.focus(state)
		return state, nil

	case EditCompletedAction:
		r.completeEdit(state, a)
		return state, nil

	case EditorInsertAction:
		if state.Edit.Editable() {
			state.Editor.Insert(a.Text)
			r.autoscroll(state)
		}
		return state, nil

	case EditorBackspaceAction:
		if state.Edit.Editable() {
			state.Editor.Backspace()
			r.autoscroll(state)
		}
		return state, nil

	case EditorDeleteAction:
		if state.Edit.Editable() {
			state.Editor.Delete()
			r.autoscroll(state)
		}
		return state, nil

	case EditorMoveAction:
		if !state.Edit.Editable() {
			return state, nil
		}
		switch a.Direction {
		case "left":
			state.Editor.MoveLeft()
		case "right":
			state.Editor.MoveRight()
		case "home":
			state.Editor.MoveHome()
		case "end":
			state.Editor.MoveEnd()
		}
		return state, nil

	// ===== FOCUS =====

	case FocusPanelAction:
		r.focus(state)
		return state, nil

	case BlurPanelAction:
		state.Focused = false
		// Losing focus mid-submit must not orphan the running operation.
		if state.Edit != nil && !state.Edit.Submitted {
			state.Edit = nil
			state.Editor.Clear()
			r.rebuild(state)
		}
		return state, nil

	case ActivatePanelAction:
		r.host.Emit(ActivatePanelEvent{})
		return state, nil

	// ===== ENTRY OPERATIONS =====

	case DeleteAction:
		r.delete(state)
		return state, nil

	case OpenSelectedAction:
		snap, entry, ok := r.selectedEntry(state)
		if !ok {
			return state, nil
		}
		if entry.IsDir() {
			return r.Reduce(state, ToggleExpandedAction{ID: entry.ID})
		}
		r.host.Emit(OpenedEntryEvent{Root: snap.RootID(), ID: entry.ID, Focus: true})
		return state, nil

	case ClickEntryAction:
		r.click(state, a)
		return state, nil

	case CutAction:
		r.setClipboard(state, ClipboardCut)
		return state, nil

	case CopyAction:
		r.setClipboard(state, ClipboardCopy)
		return state, nil

	case PasteAction:
		r.paste(state)
		return state, nil

	case CopyAbsolutePathAction:
		if snap, entry, ok := r.selectedEntry(state); ok {
			r.writeClipboard(state, snap.AbsFor(entry.Path))
		}
		return state, nil

	case CopyRelativePathAction:
		if _, entry, ok := r.selectedEntry(state); ok {
			r.writeClipboard(state, entry.Path)
		}
		return state, nil

	case RevealInFileManagerAction:
		if snap, entry, ok := r.selectedEntry(state); ok {
			target := snap.AbsFor(entry.Path)
			host := r.host
			r.tasks.Spawn("reveal", func(context.Context) error {
				return host.RevealPath(target)
			}, logging.Path(target))
		}
		return state, nil

	case NewSearchInDirectoryAction:
		if snap, entry, ok := r.selectedEntry(state); ok && entry.IsDir() {
			r.host.Emit(NewSearchInDirectoryEvent{Root: snap.RootID(), Dir: entry})
		}
		return state, nil

	// ===== VIEW =====

	case SetPanelWidthAction:
		if a.Width <= 0 {
			return state, nil
		}
		state.Width = a.Width
		r.persistWidth(a.Width)
		return state, nil

	case PanelLoadedAction:
		if a.Width > 0 {
			state.Width = a.Width
		}
		return state, nil

	case ClearStatusAction:
		state.StatusMessage = ""
		return state, nil

	default:
		return state, fmt.Errorf("unknown action: %T", action)
	}
}

// rebuild recomputes the visible projection from scratch.
func (r *PanelReducer) rebuild(state *PanelState) {
	start := time.Now()
	state.Projection = BuildProjection(r.source, state.Expansion, state.Edit, r.showIgnored)
	metrics.RecordRebuild(time.Since(start), state.Projection.Len())
}

// autoscroll asks the host to bring the selection into view.
func (r *PanelReducer) autoscroll(state *PanelState) {
	if idx, ok := state.SelectedIndex(); ok {
		r.host.ScrollToItem(idx.Flat)
	}
}

func (r *PanelReducer) focus(state *PanelState) {
	if state.Focused {
		return
	}
	state.Focused = true
	r.host.Emit(FocusEvent{})
}

// selectedEntry resolves the selection against the source. The entry does
// not have to be visible.
func (r *PanelReducer) selectedEntry(state *PanelState) (*fs.Snapshot, fs.Entry, bool) {
	if state.Selection == nil {
		return nil, fs.Entry{}, false
	}
	snap, ok := r.source.Snapshot(state.Selection.Root)
	if !ok {
		return nil, fs.Entry{}, false
	}
	entry, ok := snap.EntryForID(state.Selection.ID)
	if !ok {
		return nil, fs.Entry{}, false
	}
	return snap, entry, true
}

func rootName(snap *fs.Snapshot) zap.Field {
	return logging.Root(snap.RootName())
}

// requestExpand asks the source to materialize a directory's children.
func (r *PanelReducer) requestExpand(snap *fs.Snapshot, dir fs.Entry) {
	src := r.source
	root := snap.RootID()
	r.tasks.Spawn(fs.OpExpand, func(ctx context.Context) error {
		return src.ExpandEntry(ctx, root, dir.ID)
	}, rootName(snap), logging.Path(dir.Path))
}

// ===== NAVIGATION HELPERS =====

func (r *PanelReducer) selectNext(state *PanelState) {
	if state.Selection == nil {
		r.selectFirst(state)
		return
	}
	// A stale selection navigates from the start.
	idx, _ := state.SelectedIndex()
	ri, ei := state.Projection.next(idx)
	if root, entry, ok := state.Projection.entryAt(ri, ei); ok {
		state.selectEntry(root, entry.ID)
		r.autoscroll(state)
	}
}

func (r *PanelReducer) selectPrev(state *PanelState) {
	if state.Selection == nil {
		r.selectFirst(state)
		return
	}
	idx, _ := state.SelectedIndex()
	ri, ei, ok := state.Projection.prev(idx)
	if !ok {
		return
	}
	if root, entry, ok := state.Projection.entryAt(ri, ei); ok {
		state.selectEntry(root, entry.ID)
		r.autoscroll(state)
	}
}

func (r *PanelReducer) selectFirst(state *PanelState) {
	roots := r.source.Roots()
	if len(roots) == 0 {
		return
	}
	snap, ok := r.source.Snapshot(roots[0])
	if !ok {
		return
	}
	if entry, ok := snap.RootEntry(); ok {
		state.selectEntry(roots[0], entry.ID)
		r.autoscroll(state)
	}
}

// collapseSelected collapses the selected entry or its nearest expanded
// ancestor and selects it.
func (r *PanelReducer) collapseSelected(state *PanelState) {
	snap, entry, ok := r.selectedEntry(state)
	if !ok {
		return
	}
	set, ok := state.Expansion.Get(snap.RootID())
	if !ok {
		return
	}
	for {
		if set.Remove(entry.ID) {
			state.selectEntry(snap.RootID(), entry.ID)
			r.rebuild(state)
			r.autoscroll(state)
			return
		}
		parent, ok := fs.ParentPath(entry.Path)
		if !ok {
			return
		}
		if entry, ok = snap.EntryForPath(parent); !ok {
			return
		}
	}
}

// expandToEntry expands id and every directory above it, and requests
// materialization of id itself.
func (r *PanelReducer) expandToEntry(state *PanelState, root fs.RootID, id fs.EntryID) {
	snap, ok := r.source.Snapshot(root)
	if !ok {
		return
	}
	set, ok := state.Expansion.Get(root)
	if !ok {
		return
	}
	entry, ok := snap.EntryForID(id)
	if !ok {
		return
	}
	if entry.IsDir() {
		r.requestExpand(snap, entry)
	}
	for _, p := range fs.Ancestors(entry.Path) {
		if e, ok := snap.EntryForPath(p); ok && e.IsDir() {
			set.Insert(e.ID)
		}
	}
}

// expandToSelection makes the selected entry's directory chain visible.
func (r *PanelReducer) expandToSelection(state *PanelState) {
	snap, entry, ok := r.selectedEntry(state)
	if !ok {
		return
	}
	set, ok := state.Expansion.Get(snap.RootID())
	if !ok {
		return
	}
	for _, p := range fs.Ancestors(entry.Path) {
		if e, ok := snap.EntryForPath(p); ok && e.IsDir() {
			set.Insert(e.ID)
		}
	}
}

// ===== EDIT HELPERS =====

// addEntry opens a new-entry session in the directory nearest the selection.
func (r *PanelReducer) addEntry(state *PanelState, isDir bool) {
	if state.Edit != nil && state.Edit.Submitted {
		return
	}
	snap, entry, ok := r.selectedEntry(state)
	if !ok {
		return
	}
	set, ok := state.Expansion.Get(snap.RootID())
	if !ok {
		return
	}
	for !entry.IsDir() {
		parent, ok := fs.ParentPath(entry.Path)
		if !ok {
			return
		}
		if entry, ok = snap.EntryForPath(parent); !ok {
			return
		}
	}
	set.Insert(entry.ID)

	state.Edit = &EditSession{
		Root:   snap.RootID(),
		Anchor: entry.ID,
		IsNew:  true,
		IsDir:  isDir,
	}
	state.Editor.Clear()
	state.selectEntry(snap.RootID(), fs.SyntheticID)
	r.rebuild(state)
	r.autoscroll(state)
}

// rename opens a rename session on the selected entry with its stem selected.
func (r *PanelReducer) rename(state *PanelState) {
	if state.Edit != nil && state.Edit.Submitted {
		return
	}
	snap, entry, ok := r.selectedEntry(state)
	if !ok || entry.Path == "" {
		return
	}
	state.Edit = &EditSession{
		Root:   snap.RootID(),
		Anchor: entry.ID,
		IsDir:  entry.IsDir(),
	}
	name := entry.Name()
	state.Editor.SetText(name, 0, stemSelectionEnd(name))
	r.rebuild(state)
	r.autoscroll(state)
}

// confirm submits the edit. A destination that already exists refuses the
// submission and leaves the session open.
func (r *PanelReducer) confirm(state *PanelState) {
	edit := state.Edit
	if !edit.Editable() {
		return
	}
	snap, ok := r.source.Snapshot(edit.Root)
	if !ok {
		return
	}
	anchor, ok := snap.EntryForID(edit.Anchor)
	if !ok {
		return
	}
	text := state.Editor.Text()

	var dest string
	if edit.IsNew {
		dest = fs.CleanRelative(fs.JoinPath(anchor.Path, strings.TrimLeft(text, "/")))
	} else if parent, ok := fs.ParentPath(anchor.Path); ok {
		dest = fs.JoinPath(parent, text)
	} else {
		dest = text
	}
	if _, exists := snap.EntryForPath(dest); exists {
		return
	}

	root := edit.Root
	isNew, isDir := edit.IsNew, edit.IsDir
	editedID := anchor.ID
	if isNew {
		editedID = fs.SyntheticID
		state.selectEntry(root, fs.SyntheticID)
	}
	edit.Pending = text
	edit.Submitted = true
	r.focus(state)

	src := r.source
	op := fs.OpRename
	if isNew {
		op = fs.OpCreate
	}
	r.tasks.Spawn(op, func(ctx context.Context) error {
		var entry fs.Entry
		var err error
		if isNew {
			entry, err = src.CreateEntry(ctx, root, dest, isDir)
		} else {
			entry, err = src.RenameEntry(ctx, editedID, dest)
		}
		state.dispatch(EditCompletedAction{
			Root:     root,
			EditedID: editedID,
			IsNew:    isNew,
			IsDir:    isDir,
			Entry:    entry,
			Err:      err,
		})
		return err
	}, rootName(snap), logging.Path(dest))
}

// completeEdit applies the result of a submitted edit. The session is
// cleared even when the operation failed.
func (r *PanelReducer) completeEdit(state *PanelState, a EditCompletedAction) {
	if state.Edit != nil && state.Edit.Submitted {
		state.Edit = nil
		state.Editor.Clear()
	}
	if a.Err != nil {
		r.rebuild(state)
		return
	}
	retarget := state.Selection != nil && state.Selection.ID == a.EditedID
	if retarget {
		state.selectEntry(a.Root, a.Entry.ID)
		r.expandToSelection(state)
	}
	r.rebuild(state)
	if retarget {
		r.autoscroll(state)
	}
	if a.IsNew && !a.IsDir {
		r.host.Emit(OpenedEntryEvent{Root: a.Root, ID: a.Entry.ID, Focus: true})
	}
}

// ===== ENTRY HELPERS =====

// delete asks for confirmation and deletes the selected entry on an
// affirmative answer. The root entry cannot be deleted.
func (r *PanelReducer) delete(state *PanelState) {
	snap, entry, ok := r.selectedEntry(state)
	if !ok || entry.Path == "" {
		return
	}
	answer := r.host.Prompt(fmt.Sprintf("Delete %q?", entry.Name()), []string{"Delete", "Cancel"})
	src := r.source
	r.tasks.Spawn(fs.OpDelete, func(ctx context.Context) error {
		select {
		case choice, ok := <-answer:
			if !ok || choice != 0 {
				return nil
			}
		case <-ctx.Done():
			return nil
		}
		return src.DeleteEntry(ctx, entry.ID)
	}, rootName(snap), logging.Path(entry.Path))
}

func (r *PanelReducer) click(state *PanelState, a ClickEntryAction) {
	if edit := state.Edit; edit.Editable() && edit.Root == a.Root {
		if a.ID == fs.SyntheticID || (!edit.IsNew && a.ID == edit.Anchor) {
			return
		}
	}
	snap, ok := r.source.Snapshot(a.Root)
	if !ok {
		return
	}
	entry, ok := snap.EntryForID(a.ID)
	if !ok {
		return
	}
	if entry.IsDir() {
		r.Reduce(state, ToggleExpandedAction{ID: entry.ID})
		return
	}
	state.selectEntry(a.Root, entry.ID)
	r.autoscroll(state)
	if a.Split {
		r.host.Emit(SplitEntryEvent{Root: a.Root, ID: entry.ID})
		return
	}
	r.host.Emit(OpenedEntryEvent{Root: a.Root, ID: entry.ID, Focus: a.ClickCount > 1})
}

func (r *PanelReducer) setClipboard(state *PanelState, mode ClipboardMode) {
	snap, entry, ok := r.selectedEntry(state)
	if !ok {
		return
	}
	state.Clipboard = &Clipboard{Root: snap.RootID(), ID: entry.ID, Mode: mode}
	r.rebuild(state)
}

// paste copies or moves the clipboard entry next to the selection. It is a
// no-op across roots.
func (r *PanelReducer) paste(state *PanelState) {
	snap, entry, ok := r.selectedEntry(state)
	if !ok || state.Clipboard == nil {
		return
	}
	clip := *state.Clipboard
	if clip.Root != snap.RootID() {
		return
	}
	source, ok := snap.EntryForID(clip.ID)
	if !ok || source.Path == "" {
		return
	}
	dir := entry.Path
	if entry.IsFile() {
		dir, _ = fs.ParentPath(entry.Path)
	}
	dest := PasteDestination(source.Name(), dir, func(p string) bool {
		_, ok := snap.EntryForPath(p)
		return ok
	})

	src := r.source
	if clip.Mode == ClipboardCut {
		r.tasks.Spawn(fs.OpRename, func(ctx context.Context) error {
			_, err := src.RenameEntry(ctx, clip.ID, dest)
			return err
		}, rootName(snap), logging.Path(dest))
		return
	}
	r.tasks.Spawn(fs.OpCopy, func(ctx context.Context) error {
		_, err := src.CopyEntry(ctx, clip.ID, dest)
		return err
	}, rootName(snap), logging.Path(dest))
}

func (r *PanelReducer) writeClipboard(state *PanelState, text string) {
	host := r.host
	r.tasks.Spawn("clipboard", func(context.Context) error {
		return host.WriteClipboard(text)
	})
	state.StatusMessage = "Copied " + text
}

// persistWidth writes the panel width in the background.
func (r *PanelReducer) persistWidth(width int) {
	if r.store == nil {
		return
	}
	store := r.store
	r.tasks.Spawn("persist", func(ctx context.Context) error {
		return SavePanel(ctx, store, SerializedPanel{Width: width})
	})
}
