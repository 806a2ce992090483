package reconcile

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// tagStyle is the YAML style the tags value was written in. Write-back keeps
// the style it found.
type tagStyle int

const (
	styleBlock  tagStyle = iota // tags:\n  - a
	styleFlow                   // tags: [a, b]
	styleScalar                 // tags: a, b
)

var fmKeyRe = regexp.MustCompile(`^tags\s*:\s*(.*)$`)

// fmField is the structured tag field inside a YAML frontmatter block.
// keyStart/keyEnd span the whole tags entry (key line plus any continuation
// lines); when the key is absent both point at the line before the closing
// delimiter, so a splice inserts there.
type fmField struct {
	doc      []byte
	keyStart int
	keyEnd   int
	hasKey   bool
	style    tagStyle
	indent   string
	cur      []string
}

// parseFrontmatter detects a leading frontmatter block (between ---
// delimiters) and locates its tags entry. A block without a closing
// delimiter is not a block at all.
func parseFrontmatter(doc []byte) (*fmField, bool) {
	const delim = "---"
	i := 0
	for i < len(doc) && (doc[i] == '\n' || doc[i] == '\r') {
		i++
	}
	if !bytes.HasPrefix(doc[i:], []byte(delim)) {
		return nil, false
	}
	innerStart := i + len(delim)
	idx := bytes.Index(doc[innerStart:], []byte("\n"+delim))
	if idx < 0 {
		return nil, false
	}
	// The splice region runs from just after the opening delimiter through
	// the newline preceding the closing one, so every line in it ends
	// with a newline.
	regionEnd := innerStart + idx + 1

	f := &fmField{doc: doc, keyStart: regionEnd, keyEnd: regionEnd, indent: "  "}

	var fm map[string]any
	if err := yaml.Unmarshal(doc[innerStart:regionEnd], &fm); err == nil {
		f.cur = tagList(fm["tags"])
	}
	// Unparsable block: the current list stays empty and the operation
	// proceeds (best-effort, never fatal).

	lines := strings.SplitAfter(string(doc[innerStart:regionEnd]), "\n")
	off := innerStart
	for li := 0; li < len(lines); li++ {
		line := lines[li]
		m := fmKeyRe.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
		// li 0 is the remainder of the opening delimiter line.
		if m == nil || li == 0 {
			off += len(line)
			continue
		}
		f.hasKey = true
		f.keyStart = off
		end := off + len(line)

		rest := strings.TrimSpace(m[1])
		switch {
		case rest == "":
			f.style = styleBlock
		case strings.HasPrefix(rest, "["):
			f.style = styleFlow
		default:
			f.style = styleScalar
		}

		// Indented lines and list items directly below the key belong to
		// its value.
		first := true
		for li+1 < len(lines) && continuation(lines[li+1]) {
			li++
			if first && f.style == styleBlock {
				f.indent = leadingWS(lines[li])
				first = false
			}
			end += len(lines[li])
		}
		f.keyEnd = end
		break
	}
	return f, true
}

func (f *fmField) tags() []string { return f.cur }

func (f *fmField) present() bool { return true }

func (f *fmField) write(tags []string) []byte {
	var b strings.Builder
	switch f.style {
	case styleScalar:
		b.WriteString("tags: " + strings.Join(tags, ", ") + "\n")
	case styleFlow:
		b.WriteString("tags: [" + strings.Join(tags, ", ") + "]\n")
	default:
		b.WriteString("tags:\n")
		for _, t := range tags {
			b.WriteString(f.indent + "- " + t + "\n")
		}
	}
	return splice(f.doc, f.keyStart, f.keyEnd, b.String())
}

func (f *fmField) remove() []byte {
	return splice(f.doc, f.keyStart, f.keyEnd, "")
}

// continuation reports whether line is part of the preceding key's value.
func continuation(line string) bool {
	trimmed := strings.TrimRight(line, "\r\n")
	if trimmed == "" {
		return false
	}
	return line[0] == ' ' || line[0] == '\t' || trimmed[0] == '-'
}

func leadingWS(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return line[:i]
		}
	}
	return ""
}

// tagList normalises the frontmatter tags value: a YAML list of strings, or
// a comma-separated scalar. Any other shape is treated as an empty list.
func tagList(v any) []string {
	switch t := v.(type) {
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	case string:
		return splitCommaList(t)
	default:
		return nil
	}
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splice(doc []byte, start, end int, repl string) []byte {
	out := make([]byte, 0, len(doc)-(end-start)+len(repl))
	out = append(out, doc[:start]...)
	out = append(out, repl...)
	out = append(out, doc[end:]...)
	return out
}
