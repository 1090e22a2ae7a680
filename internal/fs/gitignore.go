package fs

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// IgnoreMatcher holds gitignore rules collected from one or more files.
// Later rules override earlier ones, so a negation can re-include a path.
type IgnoreMatcher struct {
	rules []ignoreRule
}

type ignoreRule struct {
	base     string   // directory holding the .gitignore, relative to the root
	segments []string // pattern split on '/'
	negate   bool
	dirOnly  bool
	anchored bool // pattern contained a slash before its last character
}

func NewIgnoreMatcher() *IgnoreMatcher {
	return &IgnoreMatcher{}
}

// Clone returns a copy that can be extended independently.
func (m *IgnoreMatcher) Clone() *IgnoreMatcher {
	out := &IgnoreMatcher{rules: make([]ignoreRule, len(m.rules))}
	copy(out.rules, m.rules)
	return out
}

// AddPatterns parses gitignore content declared in directory base.
func (m *IgnoreMatcher) AddPatterns(content, base string) {
	for _, line := range strings.Split(content, "\n") {
		if rule, ok := parseIgnoreLine(line, base); ok {
			m.rules = append(m.rules, rule)
		}
	}
}

func parseIgnoreLine(line, base string) (ignoreRule, bool) {
	line = strings.TrimSuffix(line, "\r")
	line = trimUnescapedSpaces(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ignoreRule{}, false
	}

	rule := ignoreRule{base: base}
	if strings.HasPrefix(line, "!") {
		rule.negate = true
		line = line[1:]
	} else if strings.HasPrefix(line, `\!`) || strings.HasPrefix(line, `\#`) {
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		rule.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	if strings.Contains(line, "/") {
		rule.anchored = true
		line = strings.TrimPrefix(line, "/")
	}
	if line == "" {
		return ignoreRule{}, false
	}
	rule.segments = strings.Split(line, "/")
	return rule, true
}

func trimUnescapedSpaces(line string) string {
	end := len(line)
	for end > 0 && line[end-1] == ' ' {
		if end >= 2 && line[end-2] == '\\' {
			break
		}
		end--
	}
	return line[:end]
}

// Match reports whether rel (relative to the root) is ignored.
func (m *IgnoreMatcher) Match(rel string, isDir bool) bool {
	rel = filepath.ToSlash(rel)
	ignored := false
	for _, r := range m.rules {
		if r.matches(rel, isDir) {
			ignored = !r.negate
		}
	}
	return ignored
}

func (r ignoreRule) matches(rel string, isDir bool) bool {
	if r.dirOnly && !isDir {
		return false
	}
	sub := rel
	if r.base != "" {
		if !isWithin(rel, r.base) {
			return false
		}
		sub = rel[len(r.base)+1:]
	}
	parts := strings.Split(sub, "/")
	if !r.anchored {
		ok, _ := path.Match(r.segments[0], parts[len(parts)-1])
		return ok
	}
	return matchSegments(r.segments, parts)
}

func matchSegments(pattern, parts []string) bool {
	if len(pattern) == 0 {
		return len(parts) == 0
	}
	if pattern[0] == "**" {
		for i := 0; i <= len(parts); i++ {
			if matchSegments(pattern[1:], parts[i:]) {
				return true
			}
		}
		return false
	}
	if len(parts) == 0 {
		return false
	}
	if ok, _ := path.Match(pattern[0], parts[0]); !ok {
		return false
	}
	return matchSegments(pattern[1:], parts[1:])
}

// ignoreTree caches one matcher per directory, each inheriting the rules of
// its parent directory.
type ignoreTree struct {
	root  string
	mu    sync.Mutex
	cache map[string]*IgnoreMatcher
}

func newIgnoreTree(root string) *ignoreTree {
	base := NewIgnoreMatcher()
	addIgnoreFile(base, filepath.Join(root, ".git", "info", "exclude"), "")
	addIgnoreFile(base, filepath.Join(root, ".gitignore"), "")
	return &ignoreTree{
		root:  root,
		cache: map[string]*IgnoreMatcher{"": base},
	}
}

// matcherFor returns the matcher that applies to the children of dir.
func (t *ignoreTree) matcherFor(dir string) *IgnoreMatcher {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.matcherForLocked(dir)
}

func (t *ignoreTree) matcherForLocked(dir string) *IgnoreMatcher {
	if m, ok := t.cache[dir]; ok {
		return m
	}
	parent, _ := ParentPath(dir)
	m := t.matcherForLocked(parent).Clone()
	addIgnoreFile(m, filepath.Join(t.root, filepath.FromSlash(dir), ".gitignore"), dir)
	t.cache[dir] = m
	return m
}

func (t *ignoreTree) ignored(rel string, isDir bool) bool {
	if rel == "" {
		return false
	}
	if path.Base(rel) == ".git" && isDir {
		return true
	}
	parent, _ := ParentPath(rel)
	return t.matcherFor(parent).Match(rel, isDir)
}

func addIgnoreFile(m *IgnoreMatcher, file, base string) {
	data, err := os.ReadFile(file)
	if err != nil {
		return
	}
	m.AddPatterns(string(data), base)
}
