// Package reconcile merges folder-derived tags into a note's tag field
// without disturbing the rest of the document.
//
// A note carries its tags in one of two encodings: a YAML frontmatter block
// with a "tags" key, or an inline "tags:: a, b" line in the body. One merge
// algorithm runs over a small tag-field accessor with a concrete variant per
// encoding; when both are present the frontmatter block wins. Documents with
// neither encoding get a new frontmatter block prepended.
//
// All edits are line-level splices into the original bytes. Content outside
// the tag field is never touched.
package reconcile

import "slices"

// field is the tag-field accessor the merge algorithm runs over.
type field interface {
	// tags returns the current tag list, empty when the field is absent
	// or malformed.
	tags() []string
	// write returns the document with the field replaced by tags,
	// creating the field if it does not exist yet.
	write(tags []string) []byte
	// remove returns the document with the field deleted entirely.
	remove() []byte
	// present reports whether the document has this encoding at all.
	present() bool
}

// detect picks the effective tag-field encoding for doc. A frontmatter
// block takes precedence over an inline tag line.
func detect(doc []byte) field {
	if f, ok := parseFrontmatter(doc); ok {
		return f
	}
	if f, ok := parseInline(doc); ok {
		return f
	}
	return noneField{doc: doc}
}

// Apply merges newTags into doc's tag field, first removing every tag that
// exact-matches an entry of staleTags (the derived set recomputed from a
// previous path). Pre-existing tags keep their order; missing new tags are
// appended at the end. The bool reports whether doc changed; unchanged
// documents are returned as the original slice, so applying twice with the
// same inputs is a no-op.
func Apply(doc []byte, newTags, staleTags []string) ([]byte, bool) {
	f := detect(doc)
	current := f.tags()

	merged := make([]string, 0, len(current)+len(newTags))
	stale := toSet(staleTags)
	for _, t := range current {
		if _, drop := stale[t]; !drop {
			merged = append(merged, t)
		}
	}
	have := toSet(merged)
	for _, t := range newTags {
		if _, ok := have[t]; !ok {
			merged = append(merged, t)
			have[t] = struct{}{}
		}
	}

	if slices.Equal(current, merged) {
		return doc, false
	}
	if len(merged) == 0 {
		return f.remove(), true
	}
	return f.write(merged), true
}

// Strip removes every tag matching an entry of remove from doc's tag field.
// When the resulting list is empty the field itself is deleted (the key, or
// the inline line) rather than left as an empty collection. Documents
// without a tag field are returned unchanged.
func Strip(doc []byte, remove []string) ([]byte, bool) {
	f := detect(doc)
	if !f.present() {
		return doc, false
	}
	current := f.tags()

	drop := toSet(remove)
	kept := make([]string, 0, len(current))
	for _, t := range current {
		if _, gone := drop[t]; !gone {
			kept = append(kept, t)
		}
	}

	if slices.Equal(current, kept) {
		return doc, false
	}
	if len(kept) == 0 {
		return f.remove(), true
	}
	return f.write(kept), true
}

// Tags returns the current tag list of doc under the effective encoding.
func Tags(doc []byte) []string {
	return detect(doc).tags()
}

func toSet(list []string) map[string]struct{} {
	s := make(map[string]struct{}, len(list))
	for _, v := range list {
		s[v] = struct{}{}
	}
	return s
}
