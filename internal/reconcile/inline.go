package reconcile

import (
	"bytes"
	"regexp"
	"strings"
)

var inlineTagRe = regexp.MustCompile(`(?m)^tags\s*::?\s*(.+)$`)

// inlineField is a "tags:: a, b" (or "tags: a, b") line in plain note text.
// Only the first matching line is the tag field.
type inlineField struct {
	doc       []byte
	lineStart int
	lineEnd   int // end of the matched line, before its newline
	valStart  int
	valEnd    int // trailing whitespace and \r excluded
}

func parseInline(doc []byte) (*inlineField, bool) {
	m := inlineTagRe.FindSubmatchIndex(doc)
	if m == nil {
		return nil, false
	}
	f := &inlineField{doc: doc, lineStart: m[0], lineEnd: m[1], valStart: m[2], valEnd: m[3]}
	for f.valEnd > f.valStart {
		c := doc[f.valEnd-1]
		if c != '\r' && c != ' ' && c != '\t' {
			break
		}
		f.valEnd--
	}
	return f, true
}

func (f *inlineField) tags() []string {
	return splitCommaList(string(f.doc[f.valStart:f.valEnd]))
}

func (f *inlineField) present() bool { return true }

// write replaces only the value part of the line; the key and separator are
// kept exactly as authored.
func (f *inlineField) write(tags []string) []byte {
	return splice(f.doc, f.valStart, f.valEnd, strings.Join(tags, ", "))
}

// remove deletes the whole line including its newline.
func (f *inlineField) remove() []byte {
	end := f.lineEnd
	if end < len(f.doc) && f.doc[end] == '\n' {
		end++
	}
	return splice(f.doc, f.lineStart, end, "")
}

// noneField stands in when a note has no tag field yet; writing creates a
// new frontmatter block ahead of the existing content.
type noneField struct {
	doc []byte
}

func (n noneField) tags() []string { return nil }

func (n noneField) present() bool { return false }

func (n noneField) write(tags []string) []byte {
	var b bytes.Buffer
	b.WriteString("---\ntags:\n")
	for _, t := range tags {
		b.WriteString("  - " + t + "\n")
	}
	b.WriteString("---\n")
	b.Write(n.doc)
	return b.Bytes()
}

func (n noneField) remove() []byte { return n.doc }
