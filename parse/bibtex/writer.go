package bibtex

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

type WriteOptions struct {
	// Indent prefixes every entry field line. Empty means two spaces.
	Indent string
}

// Write renders lib as bibtex, one blank line between blocks. Failed
// blocks are written back as their raw text.
func Write(w io.Writer, lib *Library, opts WriteOptions) error {
	indent := opts.Indent
	if indent == "" {
		indent = "  "
	}
	bw := bufio.NewWriter(w)
	for i, b := range lib.Blocks() {
		if i > 0 {
			bw.WriteString("\n")
		}
		writeBlock(bw, b, indent)
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// Format is Write into a string.
func Format(lib *Library, opts WriteOptions) string {
	var sb strings.Builder
	_ = Write(&sb, lib, opts)
	return sb.String()
}

func writeBlock(w *bufio.Writer, b Block, indent string) {
	switch b := b.(type) {
	case *Entry:
		writeEntry(w, b, indent)
	case *DuplicateFieldKeyBlock:
		writeEntry(w, b.Entry(), indent)
	case *String:
		fmt.Fprintf(w, "@string{%s = %s}", b.Key(), b.Value())
	case *Preamble:
		fmt.Fprintf(w, "@preamble{%s}", b.Value())
	case *ExplicitComment:
		fmt.Fprintf(w, "@comment{%s}", b.Comment())
	case *ImplicitComment:
		w.WriteString(trimBlankLines(b.Raw()))
	case *ParsingFailedBlock:
		w.WriteString(strings.TrimRight(b.Raw(), "\n"))
	}
}

func writeEntry(w *bufio.Writer, e *Entry, indent string) {
	fmt.Fprintf(w, "@%s{%s,\n", e.EntryType(), e.Key())
	for _, f := range e.fields {
		fmt.Fprintf(w, "%s%s = %s,\n", indent, f.Key(), f.Value())
	}
	w.WriteString("}")
}

// trimBlankLines drops surrounding blank lines and trailing whitespace but
// keeps the indentation of the first line, so that an `@` behind a space
// does not become a block start.
func trimBlankLines(raw string) string {
	start := 0
	for i, r := range raw {
		if r == '\n' {
			start = i + 1
		} else if !unicode.IsSpace(r) {
			break
		}
	}
	return strings.TrimRightFunc(raw[start:], unicode.IsSpace)
}
