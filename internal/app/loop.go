package app

import (
	"context"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/rtree/internal/fs"
	"github.com/kk-code-lab/rtree/internal/logging"
	statepkg "github.com/kk-code-lab/rtree/internal/state"
	"github.com/kk-code-lab/rtree/internal/ui/input"
	renderui "github.com/kk-code-lab/rtree/internal/ui/render"
	"go.uber.org/zap"
)

// Run drives the control loop until the user quits.
func (app *Application) Run() {
	app.render()
	renderPending := false

	eventChan := make(chan tcell.Event)
	go func() {
		for {
			ev := app.screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	var sigContCh chan os.Signal
	if sigs := contSignals(); len(sigs) > 0 {
		sigContCh = make(chan os.Signal, 1)
		signal.Notify(sigContCh, sigs...)
		defer signal.Stop(sigContCh)
	}
	var activateCh chan os.Signal
	if sigs := activateSignals(); len(sigs) > 0 {
		activateCh = make(chan os.Signal, 1)
		signal.Notify(activateCh, sigs...)
		defer signal.Stop(activateCh)
	}

	var rescanCh <-chan fs.RootID
	if app.watcher != nil && app.disk != nil {
		rescanCh = app.watcher.Notify()
	}

	for !app.shouldQuit {
		if renderPending {
			app.render()
			renderPending = false
		}

		select {
		case ev, ok := <-eventChan:
			if !ok {
				return
			}
			if app.handleEvent(ev) {
				renderPending = true
			}
		case action := <-app.actionCh:
			if app.handleAction(action) {
				renderPending = true
			}
		case root := <-rescanCh:
			app.rescan(root)
		case <-sigContCh:
			if app.resumeAfterStop() {
				renderPending = true
			}
		case <-activateCh:
			if app.handleAction(statepkg.ActivatePanelAction{}) {
				renderPending = true
			}
		}

		if app.processActions() {
			renderPending = true
		}
	}
}

// rescan reloads a root from disk; the change handler reports the result.
func (app *Application) rescan(root fs.RootID) {
	disk := app.disk
	app.reducer.Tasks().Spawn("rescan", func(ctx context.Context) error {
		return disk.Rescan(ctx, root)
	})
}

func (app *Application) handleEvent(ev tcell.Event) bool {
	switch ev.(type) {
	case *tcell.EventKey, *tcell.EventMouse, *tcell.EventResize, *tcell.EventFocus:
		if !app.input.ProcessEvent(ev) {
			app.shouldQuit = true
		}
		return false
	case *tcell.EventInterrupt:
		return true
	default:
		return false
	}
}

func (app *Application) processActions() bool {
	changed := false
	for {
		select {
		case action := <-app.actionCh:
			if app.handleAction(action) {
				changed = true
			}
		default:
			return changed
		}
	}
}

// handleAction applies one action and reports whether a redraw is needed.
func (app *Application) handleAction(action statepkg.Action) bool {
	if action == nil {
		return false
	}

	switch a := action.(type) {
	case input.QuitAction:
		app.shouldQuit = true
		return false
	case input.SuspendAction:
		app.suspendToShell()
		app.resumeAfterStop()
	case input.HelpToggleAction:
		app.showHelp = !app.showHelp
	case input.HelpHideAction:
		app.showHelp = false
	case input.ResizeAction:
		app.screen.Sync()
	case input.ScrollAction:
		app.renderer.ScrollBy(a.Delta)
	case input.PromptMoveAction:
		app.movePrompt(a.Delta)
	case input.PromptConfirmAction:
		if app.prompt != nil {
			app.answerPrompt(app.prompt.view.Selected)
		}
	case input.PromptAnswerAction:
		app.answerPrompt(a.Index)
	default:
		app.apply(action)
	}
	app.syncView()
	return true
}

// apply runs action through the reducer and handles the events it emitted.
func (app *Application) apply(action statepkg.Action) {
	state, err := app.reducer.Reduce(app.state, action)
	if err != nil {
		app.logger.Error("reduce failed", logging.Op("reduce"), zap.Error(err))
		app.state.StatusMessage = err.Error()
	} else {
		app.state = state
	}
	app.flushEvents()
}

func (app *Application) syncView() {
	app.input.SetView(input.View{
		State:        app.state,
		HelpVisible:  app.showHelp,
		PromptActive: app.prompt != nil,
	})
}

func (app *Application) render() {
	frame := renderui.Frame{State: app.state, ShowHelp: app.showHelp}
	if app.prompt != nil {
		view := app.prompt.view
		frame.Prompt = &view
	}
	app.renderer.Render(frame)
}
