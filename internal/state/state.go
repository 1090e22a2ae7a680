package state

import (
	"github.com/kk-code-lab/rtree/internal/fs"
)

// Selection points at one entry of one root. It is not validated eagerly and
// may name an entry that is no longer visible.
type Selection struct {
	Root fs.RootID
	ID   fs.EntryID
}

// EditSession is the single in-flight create or rename operation.
type EditSession struct {
	Root   fs.RootID
	Anchor fs.EntryID // directory for new entries, the renamed entry otherwise
	IsNew  bool
	IsDir  bool

	// Pending holds the submitted name once Submitted is set; the session is
	// locked against another submission until the operation completes.
	Pending   string
	Submitted bool
}

// Editable reports whether the user is still typing.
func (e *EditSession) Editable() bool {
	return e != nil && !e.Submitted
}

// ClipboardMode tells paste whether to copy or move the entry.
type ClipboardMode int

const (
	ClipboardCopy ClipboardMode = iota
	ClipboardCut
)

func (m ClipboardMode) String() string {
	if m == ClipboardCut {
		return "cut"
	}
	return "copy"
}

// Clipboard remembers the last cut or copied entry.
type Clipboard struct {
	Root fs.RootID
	ID   fs.EntryID
	Mode ClipboardMode
}

// PanelState is the single source of truth for the panel. It is only touched
// from the control loop.
type PanelState struct {
	Expansion  *ExpansionTable
	Projection Projection
	Selection  *Selection
	Edit       *EditSession
	Editor     FilenameEditor
	Clipboard  *Clipboard

	Focused bool
	Width   int

	// StatusMessage is a one-line note shown by the renderer, e.g. after a
	// path was copied.
	StatusMessage string

	dispatchAction func(Action)
}

// NewPanelState returns an empty panel of the given width in columns.
func NewPanelState(width int) *PanelState {
	return &PanelState{
		Expansion: NewExpansionTable(),
		Width:     width,
	}
}

// SetDispatch installs the hook used by async tasks to re-enter the loop.
func (s *PanelState) SetDispatch(fn func(Action)) {
	s.dispatchAction = fn
}

func (s *PanelState) dispatch(action Action) {
	if s.dispatchAction != nil {
		s.dispatchAction(action)
	}
}

// SelectedIndex resolves the current selection, if it is visible.
func (s *PanelState) SelectedIndex() (Index, bool) {
	if s.Selection == nil {
		return Index{}, false
	}
	return s.Projection.IndexFor(*s.Selection)
}

func (s *PanelState) selectEntry(root fs.RootID, id fs.EntryID) {
	s.Selection = &Selection{Root: root, ID: id}
}
