package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	statepkg "github.com/kk-code-lab/rtree/internal/state"
	"github.com/kk-code-lab/rtree/internal/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rtree", "config.json")

	out, err := execute(t, "config", "--config", path)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, `"defaultWidth": 40`) {
		t.Fatalf("defaults missing from output:\n%s", out)
	}

	if _, err := execute(t, "config", "--init", "--config", path, "--log-level", "debug"); err != nil {
		t.Fatalf("config --init: %v", err)
	}
	if _, err := execute(t, "config", "--init", "--config", path); err == nil {
		t.Fatalf("expected error when the file exists")
	}

	out, err = execute(t, "config", "--config", path)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, `"level": "debug"`) {
		t.Fatalf("saved override missing from output:\n%s", out)
	}
}

func TestConfigResetPanel(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "state.db")

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := statepkg.SavePanel(context.Background(), db, statepkg.SerializedPanel{Width: 60}); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := execute(t, "config", "--reset-panel", "--db", dbPath, "--config", filepath.Join(dir, "none.json")); err != nil {
		t.Fatalf("config --reset-panel: %v", err)
	}

	db, err = store.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, ok, err := statepkg.LoadPanel(context.Background(), db); err != nil || ok {
		t.Fatalf("panel state still stored: ok=%v err=%v", ok, err)
	}
}
