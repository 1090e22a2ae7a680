package render

import "github.com/gdamore/tcell/v2"

// ColorTheme defines panel colors.
type ColorTheme struct {
	Background    tcell.Color
	Foreground    tcell.Color
	DirectoryFg   tcell.Color
	FileFg        tcell.Color
	IgnoredFg     tcell.Color
	CutFg         tcell.Color
	SelectionBg   tcell.Color
	SelectionFg   tcell.Color
	UnfocusedBg   tcell.Color // selection while the panel is blurred
	EditorBg      tcell.Color
	EditorFg      tcell.Color
	EditorMarkBg  tcell.Color // preselected part of the name
	ProcessingFg  tcell.Color
	GitAddedFg    tcell.Color
	GitModifiedFg tcell.Color
	GitConflictFg tcell.Color
	FooterBg      tcell.Color
	FooterFg      tcell.Color
	PromptBg      tcell.Color
	PromptFg      tcell.Color
}

// GetColorTheme returns the default color scheme.
func GetColorTheme() ColorTheme {
	return ColorTheme{
		Background:    tcell.ColorDefault,
		Foreground:    tcell.ColorDefault,
		DirectoryFg:   tcell.Color33,
		FileFg:        tcell.ColorDefault,
		IgnoredFg:     tcell.ColorLightSlateGray,
		CutFg:         tcell.Color244,
		SelectionBg:   tcell.Color33,
		SelectionFg:   tcell.ColorWhite,
		UnfocusedBg:   tcell.Color238,
		EditorBg:      tcell.Color236,
		EditorFg:      tcell.ColorWhite,
		EditorMarkBg:  tcell.Color24,
		ProcessingFg:  tcell.Color244,
		GitAddedFg:    tcell.Color71,
		GitModifiedFg: tcell.Color179,
		GitConflictFg: tcell.Color167,
		FooterBg:      tcell.ColorDefault,
		FooterFg:      tcell.ColorDefault,
		PromptBg:      tcell.Color52,
		PromptFg:      tcell.ColorWhite,
	}
}
