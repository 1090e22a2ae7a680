// Package textutil prepares file names for terminal cells.
package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

var formattingRuneLabels = map[rune]string{
	0x061C: "⟪ALM⟫",
	0x200B: "⟪ZWSP⟫",
	0x200C: "⟪ZWNJ⟫",
	0x200D: "⟪ZWJ⟫",
	0x200E: "⟪LRM⟫",
	0x200F: "⟪RLM⟫",
	0x202A: "⟪LRE⟫",
	0x202B: "⟪RLE⟫",
	0x202C: "⟪PDF⟫",
	0x202D: "⟪LRO⟫",
	0x202E: "⟪RLO⟫",
	0x2028: "⟪LSEP⟫",
	0x2029: "⟪PSEP⟫",
	0x00AD: "⟪SHY⟫",
	0x2060: "⟪WJ⟫",
	0x2066: "⟪LRI⟫",
	0x2067: "⟪RLI⟫",
	0x2068: "⟪FSI⟫",
	0x2069: "⟪PDI⟫",
	0xFEFF: "⟪BOM⟫",
}

// SanitizeName makes a file name safe to draw: control characters become
// '?' and bidi or zero-width runes are spelled out, so a name cannot move
// the cursor or reorder the row it sits in.
func SanitizeName(name string) string {
	clean := true
	for _, r := range name {
		if needsReplacement(r) {
			clean = false
			break
		}
	}
	if clean {
		return name
	}

	var b strings.Builder
	for _, r := range name {
		if label, ok := formattingRuneLabels[r]; ok {
			b.WriteString(label)
			continue
		}
		if r < 0x20 || r == 0x7f {
			b.WriteByte('?')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func needsReplacement(r rune) bool {
	if _, ok := formattingRuneLabels[r]; ok {
		return true
	}
	return r < 0x20 || r == 0x7f
}

// DisplayWidth reports how many cells text occupies.
func DisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// Fit truncates text to width cells, ending with "…" when cut.
func Fit(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, "…")
}

// CellOffset returns the column at which rune index i of text starts.
func CellOffset(text string, i int) int {
	col := 0
	for n, r := range []rune(text) {
		if n >= i {
			break
		}
		col += runewidth.RuneWidth(r)
	}
	return col
}
