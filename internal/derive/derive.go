// Package derive computes folder-derived tags from a note's storage path.
package derive

import (
	"path"
	"path/filepath"
	"strings"
)

// Depth selects how many path segments contribute to derived tags and how
// they are combined.
type Depth string

const (
	// DepthSingle tags with the immediate parent folder only.
	DepthSingle Depth = "single"
	// DepthSplitPair tags with the immediate parent and grandparent folders
	// as two separate tags.
	DepthSplitPair Depth = "split-pair"
	// DepthJoinedPair tags with grandparent/parent joined into one tag.
	DepthJoinedPair Depth = "joined-pair"
	// DepthFull tags with the entire folder path as one tag.
	DepthFull Depth = "full"
)

// Depths lists every valid depth mode.
func Depths() []Depth {
	return []Depth{DepthSingle, DepthSplitPair, DepthJoinedPair, DepthFull}
}

// Policy is the immutable configuration threaded into every derivation.
// Prefix and Suffix wrap each derived tag (not the joining slash) with no
// implied delimiter.
type Policy struct {
	Depth  Depth
	Prefix string
	Suffix string
}

func (p Policy) wrap(s string) string {
	return p.Prefix + s + p.Suffix
}

// Tags derives the ordered tag set for a note stored under the given folder
// segments. An empty segment list (root-level note) yields nil — a no-op
// signal for callers, not an error. The function is pure: identical inputs
// always produce identical output, which the stale-tag removal on moves
// relies on.
func Tags(segments []string, p Policy) []string {
	if len(segments) == 0 {
		return nil
	}
	last := segments[len(segments)-1]

	switch p.Depth {
	case DepthSplitPair:
		if len(segments) >= 2 {
			return []string{p.wrap(last), p.wrap(segments[len(segments)-2])}
		}
		return []string{p.wrap(last)}

	case DepthJoinedPair:
		if len(segments) >= 2 {
			return []string{p.wrap(segments[len(segments)-2] + "/" + last)}
		}
		return []string{p.wrap(last)}

	case DepthFull:
		return []string{p.wrap(strings.Join(segments, "/"))}

	default: // DepthSingle
		return []string{p.wrap(last)}
	}
}

// Segments splits a vault-relative note path into its folder segments,
// dropping the filename. Root-level notes yield nil.
func Segments(notePath string) []string {
	dir := path.Dir(filepath.ToSlash(notePath))
	if dir == "." || dir == "/" || dir == "" {
		return nil
	}
	var out []string
	for _, seg := range strings.Split(dir, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
