package bibtex

import (
	"errors"
)

var ErrBlockNotFound = errors.New("bibtex: block not in library")

// Library is an ordered collection of blocks. It accepts every block
// without validation and is not safe for concurrent Add.
type Library struct {
	blocks []Block
}

func NewLibrary() *Library {
	return &Library{}
}

func (l *Library) Add(b Block) {
	l.blocks = append(l.blocks, b)
}

func (l *Library) Len() int { return len(l.blocks) }

// Blocks returns all blocks in insertion order.
func (l *Library) Blocks() []Block {
	out := make([]Block, len(l.blocks))
	copy(out, l.blocks)
	return out
}

// Entries returns the well-formed entries. Entries with duplicate field
// keys are reported by FailedBlocks instead.
func (l *Library) Entries() []*Entry {
	var out []*Entry
	for _, b := range l.blocks {
		if e, ok := b.(*Entry); ok {
			out = append(out, e)
		}
	}
	return out
}

func (l *Library) Strings() []*String {
	var out []*String
	for _, b := range l.blocks {
		if s, ok := b.(*String); ok {
			out = append(out, s)
		}
	}
	return out
}

func (l *Library) Preambles() []*Preamble {
	var out []*Preamble
	for _, b := range l.blocks {
		if p, ok := b.(*Preamble); ok {
			out = append(out, p)
		}
	}
	return out
}

// Comments returns explicit and implicit comments in source order.
func (l *Library) Comments() []Block {
	var out []Block
	for _, b := range l.blocks {
		switch b.(type) {
		case *ExplicitComment, *ImplicitComment:
			out = append(out, b)
		}
	}
	return out
}

// FailedBlocks returns ParsingFailedBlock and DuplicateFieldKeyBlock values.
func (l *Library) FailedBlocks() []Block {
	var out []Block
	for _, b := range l.blocks {
		switch b.(type) {
		case *ParsingFailedBlock, *DuplicateFieldKeyBlock:
			out = append(out, b)
		}
	}
	return out
}

// EntriesDict maps citation keys to entries. The first entry wins.
func (l *Library) EntriesDict() map[string]*Entry {
	m := make(map[string]*Entry)
	for _, e := range l.Entries() {
		if _, ok := m[e.Key()]; !ok {
			m[e.Key()] = e
		}
	}
	return m
}

// StringsDict maps macro names to string definitions. The first one wins.
func (l *Library) StringsDict() map[string]*String {
	m := make(map[string]*String)
	for _, s := range l.Strings() {
		if _, ok := m[s.Key()]; !ok {
			m[s.Key()] = s
		}
	}
	return m
}

// Remove drops b, compared by identity.
func (l *Library) Remove(b Block) error {
	i := l.indexOf(b)
	if i < 0 {
		return ErrBlockNotFound
	}
	l.blocks = append(l.blocks[:i], l.blocks[i+1:]...)
	return nil
}

// Replace puts replacement at the position of old.
func (l *Library) Replace(old, replacement Block) error {
	i := l.indexOf(old)
	if i < 0 {
		return ErrBlockNotFound
	}
	l.blocks[i] = replacement
	return nil
}

func (l *Library) indexOf(b Block) int {
	for i, c := range l.blocks {
		if c == b {
			return i
		}
	}
	return -1
}
