package state

import (
	"fmt"
	"testing"
)

func existsIn(paths ...string) func(string) bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return func(p string) bool { return set[p] }
}

func TestPasteDestination(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		dir      string
		existing []string
		want     string
	}{
		{"no collision", "a.txt", "dir", []string{"dir/b.txt"}, "dir/a.txt"},
		{"first collision", "one.two.txt", "", []string{"one.two.txt", "one.txt"}, "one.two copy.txt"},
		{"second collision", "one.two.txt", "", []string{"one.two.txt", "one.two copy.txt"}, "one.two copy 1.txt"},
		{"no extension", "Makefile", "src", []string{"src/Makefile", "src/Makefile copy"}, "src/Makefile copy 1"},
		{"dotfile", ".env", "", []string{".env"}, ".env copy"},
		{"directory at root", "pkg", "", []string{"pkg"}, "pkg copy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PasteDestination(tt.source, tt.dir, existsIn(tt.existing...))
			if got != tt.want {
				t.Errorf("PasteDestination(%q, %q) = %q, want %q", tt.source, tt.dir, got, tt.want)
			}
		})
	}
}

func TestPasteDestinationSkipsTakenCopies(t *testing.T) {
	existing := []string{"d/name.go", "d/name copy.go"}
	for k := 1; k < 5; k++ {
		existing = append(existing, fmt.Sprintf("d/name copy %d.go", k))
	}
	if got := PasteDestination("name.go", "d", existsIn(existing...)); got != "d/name copy 5.go" {
		t.Fatalf("got %q, want d/name copy 5.go", got)
	}
}

func TestPasteDestinationRepeatedPastesAreDistinct(t *testing.T) {
	taken := map[string]bool{"x/a.txt": true}
	exists := func(p string) bool { return taken[p] }

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		dest := PasteDestination("a.txt", "x", exists)
		if seen[dest] {
			t.Fatalf("paste %d reused destination %q", i, dest)
		}
		seen[dest] = true
		taken[dest] = true
	}
}
