package bibtex

import (
	"io"
	"unicode"
	"unicode/utf8"
)

// =========================
// Tokens
// =========================

type TokenKind uint8

const (
	TokenLBrace TokenKind = iota + 1
	TokenRBrace
	TokenQuote
	TokenComma
	TokenEqual
	TokenNewline
	TokenBlockStart
)

func (k TokenKind) String() string {
	switch k {
	case TokenLBrace:
		return "{"
	case TokenRBrace:
		return "}"
	case TokenQuote:
		return `"`
	case TokenComma:
		return ","
	case TokenEqual:
		return "="
	case TokenNewline:
		return `\n`
	case TokenBlockStart:
		return "@"
	}
	return "?"
}

// Token is a structural mark in the buffer. Start and End index the
// splitter buffer, End exclusive.
type Token struct {
	Kind  TokenKind
	Start int
	End   int
	Text  string
	Line  int
}

const escapeChar = '\\'

// =========================
// Scanner
// =========================

// scanner produces tokens lazily, one forward pass, no rescans.
type scanner struct {
	src  string
	pos  int
	line int
}

func newScanner(src string) *scanner {
	return &scanner{src: src}
}

// scan returns the next token, newlines included, or false at end of input.
func (s *scanner) scan() (Token, bool) {
	for s.pos < len(s.src) {
		i := s.pos
		ch := s.src[i]
		s.pos++
		switch ch {
		case '\n':
			s.line++
			return Token{Kind: TokenNewline, Start: i, End: i + 1, Text: "\n", Line: s.line}, true
		case '{', '}', '"', ',', '=':
			if i > 0 && s.src[i-1] == escapeChar {
				continue
			}
			return Token{Kind: structuralKind(ch), Start: i, End: i + 1, Text: s.src[i : i+1], Line: s.line}, true
		case '@':
			if i == 0 || s.src[i-1] != '\n' {
				continue
			}
			end := i + 1
			for end < len(s.src) {
				r, size := utf8.DecodeRuneInString(s.src[end:])
				if !isWordRune(r) {
					break
				}
				end += size
			}
			// only `@word{` opens a block
			if end < len(s.src) && s.src[end] == '{' {
				s.pos = end
				return Token{Kind: TokenBlockStart, Start: i, End: end, Text: s.src[i:end], Line: s.line}, true
			}
		}
	}
	return Token{}, false
}

func structuralKind(ch byte) TokenKind {
	switch ch {
	case '{':
		return TokenLBrace
	case '}':
		return TokenRBrace
	case '"':
		return TokenQuote
	case ',':
		return TokenComma
	}
	return TokenEqual
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// =========================
// Cursor
// =========================

// cursor hides newline tokens from callers and holds a single unread slot.
type cursor struct {
	sc      *scanner
	pending *Token
	// index is the start of the last delivered token.
	index int
}

func newCursor(src string) *cursor {
	return &cursor{sc: newScanner(src)}
}

// line is the current 1-based line as seen by callers.
func (c *cursor) line() int { return c.sc.line }

// unread pushes t back. At most one token is held; a second unread
// replaces the first.
func (c *cursor) unread(t Token) {
	c.pending = &t
}

// next returns the next non-newline token. At end of input it returns
// io.EOF when acceptEOF is set and a *BlockAbortedError otherwise.
func (c *cursor) next(acceptEOF bool) (Token, error) {
	if c.pending != nil {
		t := *c.pending
		c.pending = nil
		c.index = t.Start
		return t, nil
	}
	for {
		t, ok := c.sc.scan()
		if !ok {
			break
		}
		c.index = t.Start
		if t.Kind == TokenNewline {
			continue
		}
		return t, nil
	}
	c.index = len(c.sc.src)
	if !acceptEOF {
		return Token{}, abortAt(c.index, "Unexpectedly reached end of file.")
	}
	return Token{}, io.EOF
}
