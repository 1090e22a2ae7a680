package state

import "unicode/utf8"

// FilenameEditor is the single-line buffer behind the inline edit row.
// Positions are rune offsets. A selection spans [selStart, cursor) or
// [cursor, selStart) and typing replaces it.
type FilenameEditor struct {
	text     []rune
	cursor   int
	selStart int
	hasSel   bool
}

// SetText replaces the buffer and selects [selStart, selEnd).
func (e *FilenameEditor) SetText(text string, selStart, selEnd int) {
	e.text = []rune(text)
	selStart = clampInt(selStart, 0, len(e.text))
	selEnd = clampInt(selEnd, 0, len(e.text))
	e.cursor = selEnd
	e.selStart = selStart
	e.hasSel = selStart != selEnd
}

// Clear empties the buffer.
func (e *FilenameEditor) Clear() {
	e.text = nil
	e.cursor = 0
	e.selStart = 0
	e.hasSel = false
}

func (e *FilenameEditor) Text() string {
	return string(e.text)
}

// Cursor returns the cursor position in runes.
func (e *FilenameEditor) Cursor() int {
	return e.cursor
}

// Selection returns the selected rune range; ok is false when nothing is selected.
func (e *FilenameEditor) Selection() (start, end int, ok bool) {
	if !e.hasSel {
		return e.cursor, e.cursor, false
	}
	if e.selStart < e.cursor {
		return e.selStart, e.cursor, true
	}
	return e.cursor, e.selStart, true
}

// Insert types s at the cursor, replacing any selection.
func (e *FilenameEditor) Insert(s string) {
	e.deleteSelection()
	ins := []rune(s)
	text := make([]rune, 0, len(e.text)+len(ins))
	text = append(text, e.text[:e.cursor]...)
	text = append(text, ins...)
	text = append(text, e.text[e.cursor:]...)
	e.text = text
	e.cursor += len(ins)
}

// Backspace deletes the selection or the rune before the cursor.
func (e *FilenameEditor) Backspace() {
	if e.deleteSelection() || e.cursor == 0 {
		return
	}
	e.text = append(e.text[:e.cursor-1], e.text[e.cursor:]...)
	e.cursor--
}

// Delete deletes the selection or the rune after the cursor.
func (e *FilenameEditor) Delete() {
	if e.deleteSelection() || e.cursor >= len(e.text) {
		return
	}
	e.text = append(e.text[:e.cursor], e.text[e.cursor+1:]...)
}

// MoveLeft and friends collapse the selection.
func (e *FilenameEditor) MoveLeft() {
	if start, _, ok := e.Selection(); ok {
		e.cursor = start
	} else if e.cursor > 0 {
		e.cursor--
	}
	e.hasSel = false
}

func (e *FilenameEditor) MoveRight() {
	if _, end, ok := e.Selection(); ok {
		e.cursor = end
	} else if e.cursor < len(e.text) {
		e.cursor++
	}
	e.hasSel = false
}

func (e *FilenameEditor) MoveHome() {
	e.cursor = 0
	e.hasSel = false
}

func (e *FilenameEditor) MoveEnd() {
	e.cursor = len(e.text)
	e.hasSel = false
}

func (e *FilenameEditor) deleteSelection() bool {
	start, end, ok := e.Selection()
	if !ok {
		return false
	}
	e.text = append(e.text[:start], e.text[end:]...)
	e.cursor = start
	e.hasSel = false
	return true
}

// stemSelectionEnd returns the rune length of the part of name before its
// extension, or the whole name when it has none.
func stemSelectionEnd(name string) int {
	for i := len(name) - 1; i > 0; i-- {
		if name[i] == '.' {
			return utf8.RuneCountInString(name[:i])
		}
	}
	return utf8.RuneCountInString(name)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
