package state

import "github.com/kk-code-lab/rtree/internal/fs"

// Action is the base interface for all state mutations
type Action interface{}

// ===== SOURCE NOTIFICATIONS =====

// SnapshotChangedAction reports that a root's snapshot was replaced.
type SnapshotChangedAction struct {
	Root fs.RootID
}

// RootRemovedAction reports that a root was unmounted.
type RootRemovedAction struct {
	Root fs.RootID
}

// RevealEntryAction makes an entry visible and selects it, expanding its ancestors.
type RevealEntryAction struct {
	ID fs.EntryID
}

// ===== NAVIGATION ACTIONS =====

type SelectNextAction struct{}
type SelectPrevAction struct{}
type SelectFirstAction struct{}

// SelectEntryAction selects an entry without other side effects.
type SelectEntryAction struct {
	Root fs.RootID
	ID   fs.EntryID
}

// ===== EXPANSION ACTIONS =====

type ExpandSelectedAction struct{}
type CollapseSelectedAction struct{}
type CollapseAllAction struct{}

// ToggleExpandedAction flips one directory and selects it.
type ToggleExpandedAction struct {
	ID fs.EntryID
}

// ===== EDIT ACTIONS =====

type NewFileAction struct{}
type NewDirectoryAction struct{}
type RenameAction struct{}
type ConfirmEditAction struct{}
type CancelEditAction struct{}

type EditorInsertAction struct {
	Text string
}
type EditorBackspaceAction struct{}
type EditorDeleteAction struct{}
type EditorMoveAction struct {
	Direction string // "left", "right", "home", "end"
}

// EditCompletedAction carries the result of a submitted create or rename.
type EditCompletedAction struct {
	Root     fs.RootID
	EditedID fs.EntryID // synthetic for new entries
	IsNew    bool
	IsDir    bool
	Entry    fs.Entry
	Err      error
}

// ===== FOCUS ACTIONS =====

type FocusPanelAction struct{}
type BlurPanelAction struct{}

// ActivatePanelAction asks the host to show the panel.
type ActivatePanelAction struct{}

// ===== ENTRY ACTIONS =====

type DeleteAction struct{}
type OpenSelectedAction struct{}

// ClickEntryAction is a primary-button click on a row.
type ClickEntryAction struct {
	Root       fs.RootID
	ID         fs.EntryID
	ClickCount int
	Split      bool // the split modifier was held
}

type CutAction struct{}
type CopyAction struct{}
type PasteAction struct{}
type CopyAbsolutePathAction struct{}
type CopyRelativePathAction struct{}
type RevealInFileManagerAction struct{}
type NewSearchInDirectoryAction struct{}

// ===== VIEW ACTIONS =====

// SetPanelWidthAction resizes the panel and persists the width.
type SetPanelWidthAction struct {
	Width int
}

// PanelLoadedAction applies the persisted panel state read at startup.
type PanelLoadedAction struct {
	Width int
}

type ClearStatusAction struct{}
