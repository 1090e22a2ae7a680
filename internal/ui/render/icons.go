package render

import (
	"path"
	"strings"
)

// GlyphIcons draws single-cell symbols for rows.
type GlyphIcons struct{}

var fileGlyphs = map[string]string{
	".go":   "λ",
	".rs":   "λ",
	".py":   "λ",
	".js":   "λ",
	".ts":   "λ",
	".c":    "λ",
	".md":   "¶",
	".txt":  "¶",
	".json": "≡",
	".yaml": "≡",
	".yml":  "≡",
	".toml": "≡",
	".png":  "▣",
	".jpg":  "▣",
	".svg":  "▣",
	".zip":  "▤",
	".gz":   "▤",
	".tar":  "▤",
}

func (GlyphIcons) FileIcon(p string) string {
	if glyph, ok := fileGlyphs[strings.ToLower(path.Ext(p))]; ok {
		return glyph
	}
	return "·"
}

func (GlyphIcons) FolderIcon(expanded bool) string {
	if expanded {
		return "▼"
	}
	return "▶"
}

func (GlyphIcons) ChevronIcon(expanded bool) string {
	if expanded {
		return "v"
	}
	return ">"
}
