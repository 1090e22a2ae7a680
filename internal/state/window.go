package state

import (
	"fmt"
	"strings"

	"github.com/kk-code-lab/rtree/internal/fs"
)

// DisplayConfig carries the display flags row mapping depends on.
type DisplayConfig struct {
	IndentSize  int
	FileIcons   bool
	FolderIcons bool
	GitStatus   bool
}

// DefaultDisplayConfig returns the settings used when no config file exists.
func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{IndentSize: 4, FileIcons: true, FolderIcons: true, GitStatus: true}
}

// IconSource resolves row icons.
type IconSource interface {
	FileIcon(path string) string
	FolderIcon(expanded bool) string
	ChevronIcon(expanded bool) string
}

// Row is the display record for one visible entry.
type Row struct {
	Root     fs.RootID
	ID       fs.EntryID
	Filename string
	Icon     string
	Path     string
	Depth    int
	Kind     fs.Kind
	Ignored  bool

	Expanded   bool
	Selected   bool
	Editing    bool
	Processing bool
	Cut        bool

	// GitStatus is GitStatusNone when status display is off.
	GitStatus fs.GitStatus
}

// ForEachVisibleRow calls fn for every entry whose flat index lies in
// [start, end). Roots entirely outside the range are skipped without
// touching their entries.
func ForEachVisibleRow(state *PanelState, src fs.Source, start, end int, cfg DisplayConfig, icons IconSource, fn func(Row)) {
	ix := 0
	for _, re := range state.Projection {
		if ix >= end {
			return
		}
		n := len(re.Entries)
		if ix+n <= start {
			ix += n
			continue
		}
		endIx := end
		if ix+n < endIx {
			endIx = ix + n
		}
		lo := start - ix
		if lo < 0 {
			lo = 0
		}

		rootName := ""
		if snap, ok := src.Snapshot(re.Root); ok {
			rootName = snap.RootName()
		}
		expanded, _ := state.Expansion.Get(re.Root)

		for _, entry := range re.Entries[lo : endIx-ix] {
			fn(rowFor(state, re.Root, rootName, expanded, entry, cfg, icons))
		}
		ix = endIx
	}
}

// VisibleRows collects the rows in [start, end).
func VisibleRows(state *PanelState, src fs.Source, start, end int, cfg DisplayConfig, icons IconSource) []Row {
	var rows []Row
	ForEachVisibleRow(state, src, start, end, cfg, icons, func(row Row) {
		rows = append(rows, row)
	})
	return rows
}

func rowFor(state *PanelState, root fs.RootID, rootName string, expanded *ExpansionSet, entry fs.Entry, cfg DisplayConfig, icons IconSource) Row {
	isExpanded := expanded.Contains(entry.ID)
	filename := entry.Name()
	if entry.Path == "" {
		filename = rootName
	}

	row := Row{
		Root:     root,
		ID:       entry.ID,
		Filename: filename,
		Path:     entry.Path,
		Depth:    fs.Depth(entry.Path),
		Kind:     entry.Kind,
		Ignored:  entry.Ignored,
		Expanded: isExpanded,
	}
	if cfg.GitStatus {
		row.GitStatus = entry.GitStatus
	}
	if icons != nil {
		switch {
		case entry.IsFile():
			if cfg.FileIcons {
				row.Icon = icons.FileIcon(entry.Path)
			}
		case cfg.FolderIcons:
			row.Icon = icons.FolderIcon(isExpanded)
		default:
			row.Icon = icons.ChevronIcon(isExpanded)
		}
	}
	if sel := state.Selection; sel != nil {
		row.Selected = sel.Root == root && sel.ID == entry.ID
	}
	if clip := state.Clipboard; clip != nil {
		row.Cut = clip.Mode == ClipboardCut && clip.Root == root && clip.ID == entry.ID
	}

	if edit := state.Edit; edit != nil && edit.Root == root {
		edited := entry.ID == edit.Anchor
		if edit.IsNew {
			edited = entry.IsSynthetic()
		}
		if edited {
			switch {
			case edit.Submitted:
				row.Processing = true
				row.Filename = edit.Pending
			case edit.IsNew:
				row.Editing = true
				row.Filename = ""
			default:
				row.Editing = true
			}
		}
	}
	return row
}

// FormatRows renders rows as plain text, one line per row: four spaces per
// depth level, "v " or "> " before expanded or collapsed directories, and a
// marker after the selected row.
func FormatRows(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		var b strings.Builder
		b.WriteString(strings.Repeat("    ", row.Depth))
		switch {
		case row.Kind != fs.KindDir:
			b.WriteString("  ")
		case row.Expanded:
			b.WriteString("v ")
		default:
			b.WriteString("> ")
		}
		switch {
		case row.Editing:
			fmt.Fprintf(&b, "[EDITOR: '%s']", row.Filename)
		case row.Processing:
			fmt.Fprintf(&b, "[PROCESSING: '%s']", row.Filename)
		default:
			b.WriteString(row.Filename)
		}
		if row.Selected {
			b.WriteString("  <== selected")
		}
		out = append(out, b.String())
	}
	return out
}
