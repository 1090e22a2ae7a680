package fs

import (
	"context"
	"os/exec"
	"strings"
	"testing"
)

func TestParsePorcelain(t *testing.T) {
	out := strings.Join([]string{
		" M proj/src/main.go",
		"A  proj/src/new.go",
		"?? proj/scratch/",
		"UU proj/conflict.txt",
		"R  proj/renamed.go",
		"proj/old.go",
		"M  other/elsewhere.go",
		"",
	}, "\x00")

	m := ParsePorcelain([]byte(out), "proj/")
	tests := map[string]GitStatus{
		"src/main.go":       GitStatusModified,
		"src/new.go":        GitStatusAdded,
		"scratch/notes.txt": GitStatusAdded,
		"scratch":           GitStatusAdded,
		"conflict.txt":      GitStatusConflict,
		"renamed.go":        GitStatusModified,
		"old.go":            GitStatusNone,
		"README.md":         GitStatusNone,
	}
	for p, want := range tests {
		if got := m.Lookup(p); got != want {
			t.Errorf("Lookup(%q) = %v, want %v", p, got, want)
		}
	}
	if m.Len() != 5 {
		t.Errorf("Len = %d, want 5", m.Len())
	}
}

func TestLoadGitStatusOutsideRepository(t *testing.T) {
	orig := gitCommand
	defer func() { gitCommand = orig }()
	gitCommand = func(ctx context.Context, dir string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "false")
	}

	m, err := LoadGitStatus(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadGitStatus: %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("expected empty status map, got %d entries", m.Len())
	}
}
