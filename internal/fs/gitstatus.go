package fs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// gitCommand builds the git invocation; tests swap it out.
var gitCommand = func(ctx context.Context, dir string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd
}

// StatusMap holds statuses keyed by root-relative path. Untracked directories
// are recorded under dirs so that their contents inherit the status.
type StatusMap struct {
	files map[string]GitStatus
	dirs  map[string]GitStatus
}

// Lookup returns the status of p, falling back to an enclosing directory record.
func (m StatusMap) Lookup(p string) GitStatus {
	if s, ok := m.files[p]; ok {
		return s
	}
	for _, anc := range Ancestors(p) {
		if s, ok := m.dirs[anc]; ok {
			return s
		}
	}
	return GitStatusNone
}

// Len returns the number of recorded paths.
func (m StatusMap) Len() int {
	return len(m.files) + len(m.dirs)
}

// LoadGitStatus runs git in absRoot and returns statuses relative to it. A root
// outside any work tree yields an empty map and no error.
func LoadGitStatus(ctx context.Context, absRoot string) (StatusMap, error) {
	prefixOut, err := gitCommand(ctx, absRoot, "rev-parse", "--show-prefix").Output()
	if err != nil {
		return StatusMap{}, nil
	}
	prefix := strings.TrimSpace(string(prefixOut))

	out, err := gitCommand(ctx, absRoot, "status", "--porcelain", "-z", "--untracked-files=normal", "--", ".").Output()
	if err != nil {
		return StatusMap{}, fmt.Errorf("git status in %s: %w", absRoot, err)
	}
	return ParsePorcelain(out, prefix), nil
}

// ParsePorcelain parses `git status --porcelain -z` output. Paths are reported
// relative to the repository top level; prefix is stripped from them.
func ParsePorcelain(out []byte, prefix string) StatusMap {
	m := StatusMap{
		files: make(map[string]GitStatus),
		dirs:  make(map[string]GitStatus),
	}
	records := bytes.Split(out, []byte{0})
	for i := 0; i < len(records); i++ {
		rec := string(records[i])
		if len(rec) < 4 {
			continue
		}
		xy, p := rec[:2], rec[3:]
		if xy[0] == 'R' || xy[0] == 'C' {
			i++ // the original path follows a rename or copy record
		}
		if prefix != "" {
			if !strings.HasPrefix(p, prefix) {
				continue
			}
			p = p[len(prefix):]
		}
		status := statusFromXY(xy)
		if status == GitStatusNone {
			continue
		}
		if strings.HasSuffix(p, "/") {
			m.dirs[strings.TrimSuffix(p, "/")] = status
			continue
		}
		m.files[p] = status
	}
	return m
}

func statusFromXY(xy string) GitStatus {
	switch {
	case xy == "!!":
		return GitStatusNone
	case xy == "??":
		return GitStatusAdded
	case xy == "DD" || xy == "AA" || strings.ContainsRune(xy, 'U'):
		return GitStatusConflict
	case xy[0] == 'A':
		return GitStatusAdded
	case xy == "  ":
		return GitStatusNone
	}
	return GitStatusModified
}
