package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	statepkg "github.com/kk-code-lab/rtree/internal/state"
)

type helpOverlayEntry struct {
	keys string
	desc string
}

type helpOverlaySection struct {
	title   string
	entries []helpOverlayEntry
}

func buildHelpOverlayLines(state *statepkg.PanelState) []string {
	pasteDesc := "Paste (clipboard empty)"
	if state != nil && state.Clipboard != nil {
		pasteDesc = fmt.Sprintf("Paste (%s)", state.Clipboard.Mode)
	}

	sections := []helpOverlaySection{
		{
			title: "Navigation",
			entries: []helpOverlayEntry{
				{keys: "↑/↓ or k/j", desc: "Move selection"},
				{keys: "→ or l", desc: "Expand directory / step into it"},
				{keys: "← or h", desc: "Collapse directory / go to parent"},
				{keys: "g or Home", desc: "Select first entry"},
				{keys: "z", desc: "Collapse all"},
				{keys: "↵ or o", desc: "Open file / toggle directory"},
			},
		},
		{
			title: "Editing",
			entries: []helpOverlayEntry{
				{keys: "a / A", desc: "New file / new directory"},
				{keys: "r", desc: "Rename"},
				{keys: "d", desc: "Delete"},
				{keys: "x / c", desc: "Cut / copy"},
				{keys: "p", desc: pasteDesc},
			},
		},
		{
			title: "Paths",
			entries: []helpOverlayEntry{
				{keys: "y / Y", desc: "Copy relative / absolute path"},
				{keys: "f", desc: "Reveal in file manager"},
				{keys: "s", desc: "Search in directory"},
			},
		},
		{
			title: "Panel",
			entries: []helpOverlayEntry{
				{keys: "< / >", desc: "Narrow / widen panel"},
				{keys: "q", desc: "Quit"},
				{keys: "Ctrl+C", desc: "Quit immediately"},
				{keys: "?", desc: "Close this help"},
			},
		},
	}

	lines := make([]string, 0, 32)
	for i, section := range sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, section.title)
		for _, entry := range section.entries {
			lines = append(lines, fmt.Sprintf("  %-14s %s", entry.keys, entry.desc))
		}
	}

	return lines
}

func (r *Renderer) drawHelpOverlay(frame Frame, w, h int) {
	baseStyle := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)
	for y := 0; y < h; y++ {
		r.fill(0, w, y, baseStyle)
	}

	title := " Help "
	headerStyle := baseStyle.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg).Bold(true)
	titleStart := 0
	if titleWidth := r.measureTextWidth(title); w > titleWidth {
		titleStart = (w - titleWidth) / 2
	}
	r.drawTextLine(titleStart, 0, w-titleStart, title, headerStyle)

	row := 2
	for _, line := range buildHelpOverlayLines(frame.State) {
		if row >= h-1 {
			break
		}
		r.drawTextLine(2, row, w-4, line, baseStyle)
		row++
	}

	if h > 0 {
		r.drawTextLine(0, h-1, w, "? toggle · Esc/q close", headerStyle)
	}
}
