package state

import "github.com/kk-code-lab/rtree/internal/fs"

// Event is emitted to the hosting surface.
type Event interface{}

// OpenedEntryEvent asks the host to open a file.
type OpenedEntryEvent struct {
	Root  fs.RootID
	ID    fs.EntryID
	Focus bool // move focus to the opened item
}

// SplitEntryEvent asks the host to open a file in a split.
type SplitEntryEvent struct {
	Root fs.RootID
	ID   fs.EntryID
}

// NewSearchInDirectoryEvent asks the host to start a search scoped to a directory.
type NewSearchInDirectoryEvent struct {
	Root fs.RootID
	Dir  fs.Entry
}

// FocusEvent reports that the panel gained focus.
type FocusEvent struct{}

// ActivatePanelEvent asks the host to show and activate the panel.
type ActivatePanelEvent struct{}

// Host is the surface the engine drives: rendering, clipboard, file manager
// and confirmation prompts. Emit, ScrollToItem and Prompt are called from the
// control loop; WriteClipboard and RevealPath run on task goroutines.
type Host interface {
	Emit(event Event)
	// ScrollToItem asks the list to bring a flat index into view.
	ScrollToItem(index int)
	WriteClipboard(text string) error
	RevealPath(absPath string) error
	// Prompt shows a question with the given answers. The channel yields the
	// index of the chosen answer, or is closed without a value when dismissed.
	Prompt(message string, answers []string) <-chan int
}

// NopHost ignores every request and dismisses prompts.
type NopHost struct{}

func (NopHost) Emit(Event)                  {}
func (NopHost) ScrollToItem(int)            {}
func (NopHost) WriteClipboard(string) error { return nil }
func (NopHost) RevealPath(string) error     { return nil }
func (NopHost) Prompt(string, []string) <-chan int {
	ch := make(chan int)
	close(ch)
	return ch
}
