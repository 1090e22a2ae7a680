package input

import (
	"time"

	"github.com/gdamore/tcell/v2"
	statepkg "github.com/kk-code-lab/rtree/internal/state"
)

// UI actions are handled by the application loop and never reach the panel
// reducer.
type (
	QuitAction       struct{}
	SuspendAction    struct{}
	HelpToggleAction struct{}
	HelpHideAction   struct{}
	ResizeAction     struct{ Width, Height int }
	ScrollAction     struct{ Delta int }

	// PromptMoveAction moves the highlighted prompt answer.
	PromptMoveAction struct{ Delta int }
	// PromptConfirmAction answers with the highlighted choice.
	PromptConfirmAction struct{}
	// PromptAnswerAction answers with Index; -1 dismisses the prompt.
	PromptAnswerAction struct{ Index int }
)

const (
	doubleClickWindow = 400 * time.Millisecond
	wheelStep         = 3
	widthStep         = 2
	minPanelWidth     = 10
)

// RowLocator maps screen cells to flat row indexes.
type RowLocator interface {
	RowAt(x, y int) (int, bool)
}

// View is the part of the UI the handler needs to pick a key map.
type View struct {
	State        *statepkg.PanelState
	HelpVisible  bool
	PromptActive bool
}

// InputHandler converts tcell events to Actions
type InputHandler struct {
	actionChan chan statepkg.Action
	view       View
	rows       RowLocator
	now        func() time.Time

	lastButtons tcell.ButtonMask
	lastClick   time.Time
	lastRow     int
	clickCount  int
}

// NewInputHandler creates a new input handler
func NewInputHandler(actionChan chan statepkg.Action, rows RowLocator) *InputHandler {
	return &InputHandler{
		actionChan: actionChan,
		rows:       rows,
		now:        time.Now,
		lastRow:    -1,
	}
}

// SetView sets the view used for mode checking
func (ih *InputHandler) SetView(view View) {
	ih.view = view
}

// ProcessEvent converts a tcell event into actions. It returns false once
// the user asked to quit.
func (ih *InputHandler) ProcessEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return ih.processKeyEvent(ev)
	case *tcell.EventMouse:
		ih.processMouseEvent(ev)
		return true
	case *tcell.EventResize:
		w, h := ev.Size()
		ih.actionChan <- ResizeAction{Width: w, Height: h}
		return true
	case *tcell.EventFocus:
		if ev.Focused {
			ih.actionChan <- statepkg.FocusPanelAction{}
		} else {
			ih.actionChan <- statepkg.BlurPanelAction{}
		}
		return true
	default:
		return true
	}
}

func (ih *InputHandler) processKeyEvent(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		ih.actionChan <- QuitAction{}
		return false
	case tcell.KeyCtrlZ:
		ih.actionChan <- SuspendAction{}
		return true
	}

	switch {
	case ih.view.HelpVisible:
		ih.helpKey(ev)
		return true
	case ih.view.PromptActive:
		ih.promptKey(ev)
		return true
	case ih.view.State != nil && ih.view.State.Edit.Editable():
		ih.editorKey(ev)
		return true
	default:
		return ih.panelKey(ev)
	}
}

func (ih *InputHandler) helpKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		ih.actionChan <- HelpHideAction{}
	case tcell.KeyRune:
		switch ev.Rune() {
		case '?', 'q', 'Q':
			ih.actionChan <- HelpHideAction{}
		}
	}
}

func (ih *InputHandler) promptKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		ih.actionChan <- PromptAnswerAction{Index: -1}
	case tcell.KeyEnter:
		ih.actionChan <- PromptConfirmAction{}
	case tcell.KeyLeft, tcell.KeyBacktab:
		ih.actionChan <- PromptMoveAction{Delta: -1}
	case tcell.KeyRight, tcell.KeyTab:
		ih.actionChan <- PromptMoveAction{Delta: 1}
	case tcell.KeyRune:
		r := ev.Rune()
		switch {
		case r >= '1' && r <= '9':
			ih.actionChan <- PromptAnswerAction{Index: int(r - '1')}
		case r == 'y' || r == 'Y':
			ih.actionChan <- PromptAnswerAction{Index: 0}
		case r == 'n' || r == 'N':
			ih.actionChan <- PromptAnswerAction{Index: -1}
		case r == 'h':
			ih.actionChan <- PromptMoveAction{Delta: -1}
		case r == 'l':
			ih.actionChan <- PromptMoveAction{Delta: 1}
		}
	}
}

func (ih *InputHandler) editorKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		ih.actionChan <- statepkg.ConfirmEditAction{}
	case tcell.KeyEscape:
		ih.actionChan <- statepkg.CancelEditAction{}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		ih.actionChan <- statepkg.EditorBackspaceAction{}
	case tcell.KeyDelete:
		ih.actionChan <- statepkg.EditorDeleteAction{}
	case tcell.KeyLeft:
		ih.actionChan <- statepkg.EditorMoveAction{Direction: "left"}
	case tcell.KeyRight:
		ih.actionChan <- statepkg.EditorMoveAction{Direction: "right"}
	case tcell.KeyHome, tcell.KeyCtrlA:
		ih.actionChan <- statepkg.EditorMoveAction{Direction: "home"}
	case tcell.KeyEnd, tcell.KeyCtrlE:
		ih.actionChan <- statepkg.EditorMoveAction{Direction: "end"}
	case tcell.KeyRune:
		ih.actionChan <- statepkg.EditorInsertAction{Text: string(ev.Rune())}
	}
}

func (ih *InputHandler) panelKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		ih.actionChan <- statepkg.SelectPrevAction{}
	case tcell.KeyDown:
		ih.actionChan <- statepkg.SelectNextAction{}
	case tcell.KeyRight:
		ih.actionChan <- statepkg.ExpandSelectedAction{}
	case tcell.KeyLeft:
		ih.actionChan <- statepkg.CollapseSelectedAction{}
	case tcell.KeyEnter:
		ih.actionChan <- statepkg.OpenSelectedAction{}
	case tcell.KeyHome:
		ih.actionChan <- statepkg.SelectFirstAction{}
	case tcell.KeyDelete:
		ih.actionChan <- statepkg.DeleteAction{}
	case tcell.KeyEscape:
		if ih.view.State != nil && ih.view.State.Edit != nil {
			ih.actionChan <- statepkg.CancelEditAction{}
		} else {
			ih.actionChan <- statepkg.ClearStatusAction{}
		}
	case tcell.KeyRune:
		return ih.panelRune(ev.Rune())
	}
	return true
}

var runeActions = map[rune]statepkg.Action{
	'k': statepkg.SelectPrevAction{},
	'j': statepkg.SelectNextAction{},
	'l': statepkg.ExpandSelectedAction{},
	'h': statepkg.CollapseSelectedAction{},
	'o': statepkg.OpenSelectedAction{},
	'g': statepkg.SelectFirstAction{},
	'z': statepkg.CollapseAllAction{},
	'a': statepkg.NewFileAction{},
	'A': statepkg.NewDirectoryAction{},
	'r': statepkg.RenameAction{},
	'd': statepkg.DeleteAction{},
	'x': statepkg.CutAction{},
	'c': statepkg.CopyAction{},
	'p': statepkg.PasteAction{},
	'y': statepkg.CopyRelativePathAction{},
	'Y': statepkg.CopyAbsolutePathAction{},
	'f': statepkg.RevealInFileManagerAction{},
	's': statepkg.NewSearchInDirectoryAction{},
	'?': HelpToggleAction{},
}

func (ih *InputHandler) panelRune(r rune) bool {
	switch r {
	case 'q', 'Q':
		ih.actionChan <- QuitAction{}
		return false
	case '<', '>':
		if ih.view.State == nil {
			return true
		}
		width := ih.view.State.Width
		if r == '<' {
			width -= widthStep
		} else {
			width += widthStep
		}
		if width < minPanelWidth {
			width = minPanelWidth
		}
		ih.actionChan <- statepkg.SetPanelWidthAction{Width: width}
		return true
	}
	if action, ok := runeActions[r]; ok {
		ih.actionChan <- action
	}
	return true
}

func (ih *InputHandler) processMouseEvent(ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	pressed := buttons &^ ih.lastButtons
	ih.lastButtons = buttons

	switch {
	case buttons&tcell.WheelUp != 0:
		ih.actionChan <- ScrollAction{Delta: -wheelStep}
		return
	case buttons&tcell.WheelDown != 0:
		ih.actionChan <- ScrollAction{Delta: wheelStep}
		return
	}
	if pressed&tcell.Button1 == 0 || ih.rows == nil || ih.view.State == nil {
		return
	}
	if ih.view.HelpVisible || ih.view.PromptActive {
		return
	}

	x, y := ev.Position()
	index, ok := ih.rows.RowAt(x, y)
	if !ok {
		return
	}
	root, entry, ok := ih.view.State.Projection.At(index)
	if !ok {
		return
	}

	now := ih.now()
	if index == ih.lastRow && now.Sub(ih.lastClick) <= doubleClickWindow {
		ih.clickCount++
	} else {
		ih.clickCount = 1
	}
	ih.lastRow = index
	ih.lastClick = now

	split := ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt) != 0
	ih.actionChan <- statepkg.ClickEntryAction{
		Root:       root,
		ID:         entry.ID,
		ClickCount: ih.clickCount,
		Split:      split,
	}
}
