package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func resetGlobal(t *testing.T) {
	t.Cleanup(func() {
		globalLogger = nil
		globalLevel.SetLevel(zapcore.InfoLevel)
	})
}

func TestInitWritesJSONToFile(t *testing.T) {
	resetGlobal(t)
	path := filepath.Join(t.TempDir(), "logs", "rtree.log")
	if err := Init(Config{Level: "warn", OutputPath: path}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	L().Error("panel task failed", Op("create"), Root("proj"), Path("src/a.go"))
	L().Info("dropped")
	if err := Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{`"msg":"panel task failed"`, `"op":"create"`, `"root":"proj"`, `"path":"src/a.go"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, "dropped") {
		t.Errorf("info entry written at warn level:\n%s", out)
	}
}

func TestInitWithoutPathDiscards(t *testing.T) {
	resetGlobal(t)
	if err := Init(Config{Level: "bogus"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if L().Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("expected a no-op logger")
	}
	if globalLevel.Level() != zapcore.InfoLevel {
		t.Fatalf("unknown level should fall back to info, got %v", globalLevel.Level())
	}
}
