package app

import (
	"github.com/kk-code-lab/rtree/internal/fs"
	statepkg "github.com/kk-code-lab/rtree/internal/state"
	renderui "github.com/kk-code-lab/rtree/internal/ui/render"
	"go.uber.org/zap"
)

// terminalHost is the panel's view of the terminal. Emit, ScrollToItem and
// Prompt run on the control loop; WriteClipboard and RevealPath run on task
// goroutines and only read fields fixed at startup.
type terminalHost struct {
	app          *Application
	clipboardCmd []string
	goos         string
}

// activePrompt is the question currently shown on the status line.
type activePrompt struct {
	view  renderui.Prompt
	reply chan int
}

func (h *terminalHost) Emit(event statepkg.Event) {
	h.app.events = append(h.app.events, event)
}

func (h *terminalHost) ScrollToItem(index int) {
	h.app.renderer.ScrollTo(index)
}

func (h *terminalHost) WriteClipboard(text string) error {
	return runClipboard(h.clipboardCmd, normalizeClipboardPath(text, h.goos))
}

func (h *terminalHost) RevealPath(absPath string) error {
	return runReveal(h.goos, absPath)
}

// Prompt replaces any open prompt; the replaced one counts as dismissed.
func (h *terminalHost) Prompt(message string, answers []string) <-chan int {
	app := h.app
	if app.prompt != nil {
		close(app.prompt.reply)
	}
	reply := make(chan int, 1)
	app.prompt = &activePrompt{
		view:  renderui.Prompt{Message: message, Answers: answers},
		reply: reply,
	}
	return reply
}

// answerPrompt closes the open prompt with the answer at index. Out of range
// indexes dismiss it.
func (app *Application) answerPrompt(index int) {
	p := app.prompt
	if p == nil {
		return
	}
	app.prompt = nil
	if index >= 0 && index < len(p.view.Answers) {
		p.reply <- index
	}
	close(p.reply)
}

func (app *Application) movePrompt(delta int) {
	p := app.prompt
	if p == nil || len(p.view.Answers) == 0 {
		return
	}
	n := len(p.view.Answers)
	p.view.Selected = ((p.view.Selected+delta)%n + n) % n
}

// flushEvents handles the events emitted while reducing the last action.
func (app *Application) flushEvents() {
	events := app.events
	app.events = nil
	for _, event := range events {
		app.handlePanelEvent(event)
	}
}

func (app *Application) handlePanelEvent(event statepkg.Event) {
	switch ev := event.(type) {
	case statepkg.OpenedEntryEvent:
		if !ev.Focus {
			return
		}
		app.openEntry(ev.Root, ev.ID)
	case statepkg.SplitEntryEvent:
		// A terminal has no splits; the editor takes the whole screen.
		app.openEntry(ev.Root, ev.ID)
	case statepkg.NewSearchInDirectoryEvent:
		if snap, ok := app.source.Snapshot(ev.Root); ok {
			dir := snap.AbsFor(ev.Dir.Path)
			app.state.StatusMessage = "Search in " + dir
			app.logger.Info("search requested", zap.String("dir", dir))
		}
	case statepkg.ActivatePanelEvent:
		app.screen.Sync()
		app.apply(statepkg.FocusPanelAction{})
	case statepkg.FocusEvent:
		app.logger.Debug("panel focused")
	}
}

func (app *Application) openEntry(root fs.RootID, id fs.EntryID) {
	snap, ok := app.source.Snapshot(root)
	if !ok {
		return
	}
	entry, ok := snap.EntryForID(id)
	if !ok || !entry.IsFile() {
		return
	}
	abs := snap.AbsFor(entry.Path)
	if err := app.openEditor(abs); err != nil {
		app.logger.Warn("open in editor failed", zap.String("path", abs), zap.Error(err))
		app.state.StatusMessage = err.Error()
	}
}
