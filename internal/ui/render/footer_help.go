package render

import (
	"strings"

	statepkg "github.com/kk-code-lab/rtree/internal/state"
)

// buildFooterHelpText returns the contextual footer hint string with leading/trailing padding.
func buildFooterHelpText(frame Frame) string {
	parts := buildFooterHelpSegments(frame)
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, "  ") + " "
}

// buildFooterHelpSegments assembles context-aware help hints for the footer.
func buildFooterHelpSegments(frame Frame) []string {
	segments := contextualHelpSegments(frame)
	return append(segments, persistentHelpSegments(frame.State)...)
}

func contextualHelpSegments(frame Frame) []string {
	state := frame.State
	switch {
	case frame.Prompt != nil:
		return []string{
			"←/→: choose",
			"↵: answer",
			"Esc: dismiss",
		}
	case state != nil && state.Edit.Editable():
		return []string{
			"type: name",
			"↵: confirm",
			"Esc: cancel",
		}
	case state != nil && state.Edit != nil:
		return []string{"saving…"}
	default:
		return []string{
			"↑/↓: move",
			"←/→: fold",
			"a/A: new file/dir",
			"r: rename",
			"d: delete",
			"x/c: cut/copy",
		}
	}
}

func persistentHelpSegments(state *statepkg.PanelState) []string {
	if state == nil || state.Edit != nil {
		return nil
	}
	var segments []string
	if state.Clipboard != nil {
		segments = append(segments, "p: paste ("+state.Clipboard.Mode.String()+")")
	}
	return append(segments, "?: help", "q: quit")
}
