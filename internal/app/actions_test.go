package app

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestNormalizeClipboardPath(t *testing.T) {
	tests := []struct {
		goos string
		in   string
		want string
	}{
		{"linux", "/tmp/project/dir/../file.txt", "/tmp/project/file.txt"},
		{"darwin", "src//main.go", "src/main.go"},
	}
	for _, tt := range tests {
		if got := normalizeClipboardPath(tt.in, tt.goos); got != tt.want {
			t.Errorf("normalizeClipboardPath(%q, %s) = %q, want %q", tt.in, tt.goos, got, tt.want)
		}
	}
}

func TestRunClipboard(t *testing.T) {
	if err := runClipboard(nil, "x"); !errors.Is(err, errNoClipboard) {
		t.Fatalf("expected errNoClipboard, got %v", err)
	}

	var recorded []string
	var err error
	withFakeCommandBuilder(t, 0, &recorded, func() {
		err = runClipboard([]string{"fake-clip", "--flag"}, "/p/a.txt")
	})
	if err != nil {
		t.Fatalf("runClipboard: %v", err)
	}
	assertCommandRecorded(t, recorded, []string{"fake-clip", "--flag"})

	withFakeCommandBuilder(t, 7, &recorded, func() {
		err = runClipboard([]string{"fake-clip"}, "/p/a.txt")
	})
	if err == nil || !strings.Contains(err.Error(), "fake-clip") {
		t.Fatalf("expected error mentioning command, got %v", err)
	}
}

func TestRunRevealMissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	if err := runReveal("darwin", missing); err == nil {
		t.Fatalf("expected error for missing path")
	}
}

func TestRunRevealUsesFileManager(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(file, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	var recorded []string
	var err error
	withFakeCommandBuilder(t, 0, &recorded, func() {
		err = runReveal("darwin", file)
	})
	if err != nil {
		t.Fatalf("runReveal: %v", err)
	}
	assertCommandRecorded(t, recorded, []string{"open", "-R", file})
}

func TestOpenFileInEditorFallbackPropagatesError(t *testing.T) {
	app := &Application{
		screen: newTestScreen(t),
	}
	args := []string{"fake-editor", "--wait"}

	var recorded []string
	var err error
	withFakeCommandBuilder(t, 5, &recorded, func() {
		err = app.openFileInEditorFallback(args)
	})

	if err == nil {
		t.Fatalf("expected error from editor fallback")
	}
	if got := err.Error(); !strings.Contains(got, "fake-editor") {
		t.Fatalf("expected editor error to include command name, got %q", got)
	}
	assertCommandRecorded(t, recorded, args)
}

func TestOpenFileInEditorWithoutEditor(t *testing.T) {
	app := &Application{screen: newTestScreen(t)}
	if err := app.openFileInEditor("/p/a.txt"); err == nil {
		t.Fatalf("expected error without an editor")
	}
}

func TestEditorArgsWithFile(t *testing.T) {
	app := &Application{editorCmd: []string{"code", "--wait"}}
	got := app.editorArgsWithFile("/p/a.txt")
	assertCommandRecorded(t, got, []string{"code", "--wait", "/p/a.txt"})
	if len(app.editorCmd) != 2 {
		t.Fatalf("editor command was modified: %v", app.editorCmd)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	code, err := strconv.Atoi(os.Getenv("HELPER_PROCESS_EXIT"))
	if err != nil {
		code = 1
	}
	os.Exit(code)
}

func withFakeCommandBuilder(t *testing.T, exitCode int, recorded *[]string, fn func()) {
	t.Helper()
	orig := commandBuilder
	commandBuilder = func(name string, args ...string) *exec.Cmd {
		if recorded != nil {
			*recorded = append([]string{name}, args...)
		}
		return helperProcessCommand(exitCode, name, args...)
	}
	defer func() {
		commandBuilder = orig
	}()
	fn()
}

func helperProcessCommand(exitCode int, name string, args ...string) *exec.Cmd {
	cmdArgs := []string{"-test.run=TestHelperProcess", "--", name}
	cmdArgs = append(cmdArgs, args...)
	cmd := exec.Command(os.Args[0], cmdArgs...)
	cmd.Env = append(os.Environ(),
		"GO_WANT_HELPER_PROCESS=1",
		"HELPER_PROCESS_EXIT="+strconv.Itoa(exitCode),
	)
	return cmd
}

func newTestScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("failed to init screen: %v", err)
	}
	t.Cleanup(func() {
		screen.Fini()
	})
	return screen
}

func assertCommandRecorded(t *testing.T, recorded, want []string) {
	t.Helper()
	if len(recorded) != len(want) {
		t.Fatalf("expected command %v, got %v", want, recorded)
	}
	for i := range want {
		if recorded[i] != want[i] {
			t.Fatalf("expected command %v, got %v", want, recorded)
		}
	}
}
