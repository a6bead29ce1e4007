package bibtex

import (
	"sort"
	"strings"
)

// =========================
// Block Definitions
// =========================

type BlockKind string

var BlockKinds = struct {
	Entry             BlockKind
	String            BlockKind
	Preamble          BlockKind
	ExplicitComment   BlockKind
	ImplicitComment   BlockKind
	ParsingFailed     BlockKind
	DuplicateFieldKey BlockKind
}{
	Entry:             "entry",
	String:            "string",
	Preamble:          "preamble",
	ExplicitComment:   "explicit_comment",
	ImplicitComment:   "implicit_comment",
	ParsingFailed:     "parsing_failed",
	DuplicateFieldKey: "duplicate_field_key",
}

// Block is one top-level unit of a bibtex source. The set of
// implementations is closed: only the types in this file satisfy it.
type Block interface {
	Kind() BlockKind
	// StartLine is the 1-based line the block starts on.
	StartLine() int
	// Raw is the verbatim source text of the block.
	Raw() string
	block()
}

// -------- Field --------

type Field struct {
	key       string
	value     string
	startLine int
}

// NewField builds a field. The start line is the line holding the `=`.
func NewField(key, value string, startLine int) Field {
	return Field{key: key, value: value, startLine: startLine}
}

func (f Field) Key() string { return f.key }

// Value is the field value as written, enclosing braces or quotes included.
func (f Field) Value() string { return f.value }

func (f Field) StartLine() int { return f.startLine }

// -------- Entry --------

type Entry struct {
	entryType string
	key       string
	fields    []Field
	index     map[string]int
	raw       string
	startLine int
}

func NewEntry(entryType, key string, fields []Field, raw string, startLine int) *Entry {
	e := &Entry{
		entryType: strings.ToLower(entryType),
		key:       key,
		raw:       raw,
		startLine: startLine,
		index:     make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		e.index[f.key] = len(e.fields)
		e.fields = append(e.fields, f)
	}
	return e
}

func (*Entry) Kind() BlockKind { return BlockKinds.Entry }

func (e *Entry) StartLine() int { return e.startLine }

func (e *Entry) Raw() string { return e.raw }

func (*Entry) block() {}

// EntryType is the lowercased type, e.g. "article".
func (e *Entry) EntryType() string { return e.entryType }

// Key is the citation key.
func (e *Entry) Key() string { return e.key }

func (e *Entry) Field(key string) (Field, bool) {
	i, ok := e.index[key]
	if !ok {
		return Field{}, false
	}
	return e.fields[i], true
}

// Fields returns the fields in order of appearance.
func (e *Entry) Fields() []Field {
	out := make([]Field, len(e.fields))
	copy(out, e.fields)
	return out
}

func (e *Entry) FieldKeys() []string {
	keys := make([]string, len(e.fields))
	for i, f := range e.fields {
		keys[i] = f.key
	}
	return keys
}

// -------- String --------

type String struct {
	key       string
	value     string
	raw       string
	startLine int
}

func NewString(key, value, raw string, startLine int) *String {
	return &String{key: key, value: value, raw: raw, startLine: startLine}
}

func (*String) Kind() BlockKind { return BlockKinds.String }

func (s *String) StartLine() int { return s.startLine }

func (s *String) Raw() string { return s.raw }

func (*String) block() {}

func (s *String) Key() string { return s.key }

func (s *String) Value() string { return s.value }

// -------- Preamble --------

type Preamble struct {
	value     string
	raw       string
	startLine int
}

func NewPreamble(value, raw string, startLine int) *Preamble {
	return &Preamble{value: value, raw: raw, startLine: startLine}
}

func (*Preamble) Kind() BlockKind { return BlockKinds.Preamble }

func (p *Preamble) StartLine() int { return p.startLine }

func (p *Preamble) Raw() string { return p.raw }

func (*Preamble) block() {}

// Value is the untrimmed text between the preamble's braces.
func (p *Preamble) Value() string { return p.value }

// -------- Comments --------

type ExplicitComment struct {
	comment   string
	raw       string
	startLine int
}

func NewExplicitComment(comment, raw string, startLine int) *ExplicitComment {
	return &ExplicitComment{comment: comment, raw: raw, startLine: startLine}
}

func (*ExplicitComment) Kind() BlockKind { return BlockKinds.ExplicitComment }

func (c *ExplicitComment) StartLine() int { return c.startLine }

func (c *ExplicitComment) Raw() string { return c.raw }

func (*ExplicitComment) block() {}

func (c *ExplicitComment) Comment() string { return c.comment }

// ImplicitComment holds text found outside of any @ block.
type ImplicitComment struct {
	comment   string
	raw       string
	startLine int
}

func NewImplicitComment(comment, raw string, startLine int) *ImplicitComment {
	return &ImplicitComment{comment: comment, raw: raw, startLine: startLine}
}

func (*ImplicitComment) Kind() BlockKind { return BlockKinds.ImplicitComment }

func (c *ImplicitComment) StartLine() int { return c.startLine }

// Raw includes the blank lines around the comment.
func (c *ImplicitComment) Raw() string { return c.raw }

func (*ImplicitComment) block() {}

func (c *ImplicitComment) Comment() string { return c.comment }

// -------- Failures --------

// ParsingFailedBlock replaces a block whose parsing was aborted.
type ParsingFailedBlock struct {
	raw       string
	err       *BlockAbortedError
	startLine int
}

func NewParsingFailedBlock(raw string, err *BlockAbortedError, startLine int) *ParsingFailedBlock {
	return &ParsingFailedBlock{raw: raw, err: err, startLine: startLine}
}

func (*ParsingFailedBlock) Kind() BlockKind { return BlockKinds.ParsingFailed }

func (b *ParsingFailedBlock) StartLine() int { return b.startLine }

func (b *ParsingFailedBlock) Raw() string { return b.raw }

func (*ParsingFailedBlock) block() {}

func (b *ParsingFailedBlock) Err() *BlockAbortedError { return b.err }

// DuplicateFieldKeyBlock wraps an entry in which at least one field key
// occurred more than once.
type DuplicateFieldKeyBlock struct {
	entry         *Entry
	duplicateKeys []string
}

func NewDuplicateFieldKeyBlock(entry *Entry, duplicateKeys map[string]struct{}) *DuplicateFieldKeyBlock {
	keys := make([]string, 0, len(duplicateKeys))
	for k := range duplicateKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &DuplicateFieldKeyBlock{entry: entry, duplicateKeys: keys}
}

func (*DuplicateFieldKeyBlock) Kind() BlockKind { return BlockKinds.DuplicateFieldKey }

func (b *DuplicateFieldKeyBlock) StartLine() int { return b.entry.startLine }

func (b *DuplicateFieldKeyBlock) Raw() string { return b.entry.raw }

func (*DuplicateFieldKeyBlock) block() {}

func (b *DuplicateFieldKeyBlock) Entry() *Entry { return b.entry }

// DuplicateKeys lists the colliding original keys, sorted.
func (b *DuplicateFieldKeyBlock) DuplicateKeys() []string {
	out := make([]string, len(b.duplicateKeys))
	copy(out, b.duplicateKeys)
	return out
}

// =========================
// Value Helpers
// =========================

// Unenclosed strips one pair of enclosing braces or double quotes from
// a raw value. Other values are returned unchanged.
func Unenclosed(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if (first == '{' && last == '}') || (first == '"' && last == '"') {
		return value[1 : len(value)-1]
	}
	return value
}
