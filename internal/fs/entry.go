package fs

import (
	"path"
	"strconv"
	"strings"
	"time"
)

// RootID identifies one mounted directory tree.
type RootID uint64

// EntryID identifies an entry within a source. The zero value is invalid.
// A synthetic id never collides with a real one because it is a distinct case
// rather than a reserved number.
type EntryID struct {
	n         uint64
	synthetic bool
}

// SyntheticID marks the placeholder row of an uncommitted create operation.
var SyntheticID = EntryID{synthetic: true}

// RealID wraps an id handed out by a Source.
func RealID(n uint64) EntryID {
	return EntryID{n: n}
}

// IsSynthetic reports whether id is the placeholder id.
func (id EntryID) IsSynthetic() bool {
	return id.synthetic
}

// IsZero reports whether id was never assigned.
func (id EntryID) IsZero() bool {
	return !id.synthetic && id.n == 0
}

// Value returns the numeric part of a real id.
func (id EntryID) Value() uint64 {
	return id.n
}

// Compare orders real ids numerically; the synthetic id sorts after every real id.
func (id EntryID) Compare(other EntryID) int {
	switch {
	case id.synthetic && other.synthetic:
		return 0
	case id.synthetic:
		return 1
	case other.synthetic:
		return -1
	case id.n < other.n:
		return -1
	case id.n > other.n:
		return 1
	}
	return 0
}

func (id EntryID) String() string {
	if id.synthetic {
		return "synthetic"
	}
	return strconv.FormatUint(id.n, 10)
}

// Kind distinguishes files from directories.
type Kind uint8

const (
	KindFile Kind = iota
	KindDir
)

func (k Kind) String() string {
	if k == KindDir {
		return "dir"
	}
	return "file"
}

// GitStatus is an optional version-control status. GitStatusNone means unknown
// or clean.
type GitStatus uint8

const (
	GitStatusNone GitStatus = iota
	GitStatusAdded
	GitStatusModified
	GitStatusConflict
)

func (s GitStatus) String() string {
	switch s {
	case GitStatusAdded:
		return "added"
	case GitStatusModified:
		return "modified"
	case GitStatusConflict:
		return "conflict"
	}
	return ""
}

// Entry represents a single file or directory inside a root.
type Entry struct {
	ID        EntryID
	Path      string // slash separated, relative to the root; "" is the root itself
	Kind      Kind
	Ignored   bool
	GitStatus GitStatus
	Mtime     time.Time
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.Kind == KindDir
}

// IsFile reports whether the entry is a file.
func (e Entry) IsFile() bool {
	return e.Kind == KindFile
}

// IsSynthetic reports whether the entry is the create placeholder.
func (e Entry) IsSynthetic() bool {
	return e.ID.IsSynthetic()
}

// Name returns the final path component, or "" for the root entry.
func (e Entry) Name() string {
	return FileName(e.Path)
}

// FileName returns the last component of a relative path.
func FileName(p string) string {
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// ParentPath returns the parent of a relative path. ok is false for the root.
func ParentPath(p string) (string, bool) {
	if p == "" {
		return "", false
	}
	idx := strings.LastIndexByte(p, '/')
	if idx < 0 {
		return "", true
	}
	return p[:idx], true
}

// JoinPath joins relative path components, treating "" as the root.
func JoinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "/" + child
}

// Components splits a relative path into its components.
func Components(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Depth is the number of path components; the root entry has depth 0.
func Depth(p string) int {
	if p == "" {
		return 0
	}
	return strings.Count(p, "/") + 1
}

// Ancestors returns p and each of its ancestors, ending with the root ("").
func Ancestors(p string) []string {
	out := []string{p}
	for {
		parent, ok := ParentPath(p)
		if !ok {
			return out
		}
		out = append(out, parent)
		p = parent
	}
}

// SplitStem splits a file name into stem and extension at the last dot.
// Names whose only dot is the leading one (".gitignore") have no extension.
func SplitStem(name string) (stem, ext string, hasExt bool) {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return name, "", false
	}
	return name[:idx], name[idx+1:], true
}

// CleanRelative normalises user supplied relative paths to slash form
// without leading or trailing separators.
func CleanRelative(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		return ""
	}
	cleaned := path.Clean("/" + p)
	return strings.TrimPrefix(cleaned, "/")
}
