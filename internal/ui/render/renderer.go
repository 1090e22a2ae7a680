package render

import (
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/rtree/internal/fs"
	statepkg "github.com/kk-code-lab/rtree/internal/state"
	textutil "github.com/kk-code-lab/rtree/internal/textutil"
)

const (
	headerHeight = 1
	footerHeight = 2 // status line and key hints
)

// Prompt is a pending question shown on the status line.
type Prompt struct {
	Message  string
	Answers  []string
	Selected int
}

// Frame is everything one draw needs.
type Frame struct {
	State    *statepkg.PanelState
	Prompt   *Prompt
	ShowHelp bool
}

// Renderer handles all UI rendering
type Renderer struct {
	screen           tcell.Screen
	theme            ColorTheme
	source           fs.Source
	display          statepkg.DisplayConfig
	icons            statepkg.IconSource
	scroll           ListScroll
	runeWidthCache   [128]int // ASCII cache (0-127)
	runeWidthCacheMu sync.RWMutex
	runeWidthWide    sync.Map // For non-ASCII runes

	// geometry of the last draw, used to map mouse clicks to rows
	listWidth  int
	listHeight int
	listTotal  int
}

// NewRenderer creates a renderer drawing entries of src.
func NewRenderer(screen tcell.Screen, src fs.Source, display statepkg.DisplayConfig) *Renderer {
	return &Renderer{
		screen:  screen,
		theme:   GetColorTheme(),
		source:  src,
		display: display,
		icons:   GlyphIcons{},
	}
}

// ScrollTo brings a flat index into view on the next draw.
func (r *Renderer) ScrollTo(index int) {
	r.scroll.Request(index)
}

// Offset returns the flat index of the first visible row.
func (r *Renderer) Offset() int {
	return r.scroll.Offset
}

// ScrollBy moves the list by delta rows, as a mouse wheel does.
func (r *Renderer) ScrollBy(delta int) {
	r.scroll.Offset += delta
	r.scroll.Settle(r.listHeight, r.listTotal)
}

// RowAt maps a screen cell to the flat index of the row drawn there.
func (r *Renderer) RowAt(x, y int) (int, bool) {
	if x < 0 || x >= r.listWidth {
		return 0, false
	}
	line := y - headerHeight
	if line < 0 || line >= r.listHeight {
		return 0, false
	}
	index := r.scroll.Offset + line
	if index >= r.listTotal {
		return 0, false
	}
	return index, true
}

// Render draws the entire UI for frame.
func (r *Renderer) Render(frame Frame) {
	r.screen.Clear()
	r.screen.HideCursor()
	w, h := r.screen.Size()

	if frame.ShowHelp {
		r.drawHelpOverlay(frame, w, h)
		r.screen.Show()
		return
	}

	state := frame.State
	r.drawHeader(state, w)
	if state != nil {
		r.drawList(state, w, h)
	}
	r.drawStatusLine(frame, w, h)
	r.drawFooter(frame, w, h)

	r.screen.Show()
}

func (r *Renderer) drawHeader(state *statepkg.PanelState, w int) {
	style := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg)
	x := r.drawTextLine(0, 0, w, " rtree ", style.Bold(true))

	var names []string
	if state != nil {
		for _, re := range state.Projection {
			if snap, ok := r.source.Snapshot(re.Root); ok {
				names = append(names, textutil.SanitizeName(snap.RootName()))
			}
		}
	}
	if len(names) > 0 && x < w {
		x = r.drawTextLine(x, 0, w-x, textutil.Fit(strings.Join(names, ", "), w-x), style)
	}
	r.fill(x, w, 0, style)
}

func (r *Renderer) drawList(state *statepkg.PanelState, w, h int) {
	width := state.Width
	if width <= 0 || width > w {
		width = w
	}
	height := h - headerHeight - footerHeight
	if height < 0 {
		height = 0
	}
	total := state.Projection.Len()

	r.scroll.Settle(height, total)
	r.listWidth = width
	r.listHeight = height
	r.listTotal = total

	base := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)
	y := headerHeight
	statepkg.ForEachVisibleRow(state, r.source, r.scroll.Offset, r.scroll.Offset+height, r.display, r.icons, func(row statepkg.Row) {
		r.drawRow(state, row, y, width)
		y++
	})
	for ; y < headerHeight+height; y++ {
		r.fill(0, width, y, base)
	}

	if width < w {
		sep := base.Foreground(r.theme.IgnoredFg)
		for y := headerHeight; y < headerHeight+height; y++ {
			r.screen.SetContent(width, y, '│', nil, sep)
		}
	}
}

func (r *Renderer) rowStyle(state *statepkg.PanelState, row statepkg.Row) tcell.Style {
	style := tcell.StyleDefault.Background(r.theme.Background)
	switch {
	case row.Processing:
		style = style.Foreground(r.theme.ProcessingFg).Italic(true)
	case row.Cut:
		style = style.Foreground(r.theme.CutFg).Dim(true)
	case row.Ignored:
		style = style.Foreground(r.theme.IgnoredFg)
	case row.Kind == fs.KindDir:
		style = style.Foreground(r.theme.DirectoryFg)
	default:
		style = style.Foreground(r.theme.FileFg)
	}
	if row.Selected {
		bg := r.theme.UnfocusedBg
		if state.Focused {
			bg = r.theme.SelectionBg
		}
		style = style.Background(bg).Foreground(r.theme.SelectionFg)
	}
	return style
}

func (r *Renderer) drawRow(state *statepkg.PanelState, row statepkg.Row, y, width int) {
	style := r.rowStyle(state, row)
	r.fill(0, width, y, style)

	right := width
	if marker, color, ok := r.gitMarker(row.GitStatus); ok && width > 2 {
		right = width - 2
		r.screen.SetContent(width-1, y, marker, nil, style.Foreground(color))
	}

	x := row.Depth * r.display.IndentSize
	if x >= right {
		return
	}
	if row.Icon != "" {
		x = r.drawTextLine(x, y, right-x, row.Icon, style)
		x++
	} else {
		x += 2
	}
	if x >= right {
		return
	}

	if row.Editing {
		r.drawEditor(state, x, y, right)
		return
	}
	name := textutil.Fit(textutil.SanitizeName(row.Filename), right-x)
	r.drawTextLine(x, y, right-x, name, style)
}

// drawEditor draws the filename editor in place of a row name and parks the
// terminal cursor at the insertion point.
func (r *Renderer) drawEditor(state *statepkg.PanelState, startX, y, right int) {
	editor := &state.Editor
	style := tcell.StyleDefault.Background(r.theme.EditorBg).Foreground(r.theme.EditorFg)
	mark := style.Background(r.theme.EditorMarkBg)
	r.fill(startX, right, y, style)

	selStart, selEnd, hasSel := editor.Selection()
	x := startX
	for i, ru := range []rune(editor.Text()) {
		w := r.cachedRuneWidth(ru)
		if w == 0 || ru < 0x20 || ru == 0x7f {
			ru, w = '?', 1
		}
		if x+w > right {
			break
		}
		cell := style
		if hasSel && i >= selStart && i < selEnd {
			cell = mark
		}
		r.screen.SetContent(x, y, ru, nil, cell)
		x += w
	}

	if state.Focused {
		cursorX := startX + textutil.CellOffset(editor.Text(), editor.Cursor())
		if cursorX >= right {
			cursorX = right - 1
		}
		r.screen.ShowCursor(cursorX, y)
	}
}

func (r *Renderer) gitMarker(status fs.GitStatus) (rune, tcell.Color, bool) {
	switch status {
	case fs.GitStatusAdded:
		return 'A', r.theme.GitAddedFg, true
	case fs.GitStatusModified:
		return 'M', r.theme.GitModifiedFg, true
	case fs.GitStatusConflict:
		return '!', r.theme.GitConflictFg, true
	}
	return 0, 0, false
}

func (r *Renderer) drawStatusLine(frame Frame, w, h int) {
	y := h - footerHeight
	if y < headerHeight {
		return
	}
	normal := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg)

	if p := frame.Prompt; p != nil {
		style := tcell.StyleDefault.Background(r.theme.PromptBg).Foreground(r.theme.PromptFg)
		r.fill(0, w, y, style)
		x := r.drawTextLine(1, y, w-1, textutil.SanitizeName(p.Message), style.Bold(true))
		for i, answer := range p.Answers {
			if x+2 >= w {
				break
			}
			x += 2
			cell := style
			if i == p.Selected {
				cell = cell.Reverse(true)
			}
			x = r.drawTextLine(x, y, w-x, "["+answer+"]", cell)
		}
		return
	}

	text := r.statusText(frame.State)
	x := r.drawTextLine(0, y, w, textutil.Fit(textutil.SanitizeName(text), w), normal)
	r.fill(x, w, y, normal)
}

// statusText is the status message if one is set, otherwise the absolute
// path of the selected entry.
func (r *Renderer) statusText(state *statepkg.PanelState) string {
	if state == nil {
		return ""
	}
	if state.StatusMessage != "" {
		return state.StatusMessage
	}
	idx, ok := state.SelectedIndex()
	if !ok {
		return ""
	}
	root, entry, ok := state.Projection.At(idx.Flat)
	if !ok || entry.IsSynthetic() {
		return ""
	}
	snap, ok := r.source.Snapshot(root)
	if !ok {
		return ""
	}
	return snap.AbsFor(entry.Path)
}

func (r *Renderer) drawFooter(frame Frame, w, h int) {
	y := h - 1
	if y < headerHeight {
		return
	}
	style := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg).Dim(true)
	text := textutil.Fit(buildFooterHelpText(frame), w)
	x := r.drawTextLine(0, y, w, text, style)
	r.fill(x, w, y, style)
}
