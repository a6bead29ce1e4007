package bibtex

import (
	"fmt"
	"strings"
)

// =========================
// Block Handlers
// =========================

// expectOpenBrace consumes the `{` that token recognition guarantees after
// a block start. Anything else is a StateError.
func (s *Splitter) expectOpenBrace(kw string) (Token, error) {
	open, err := s.cur.next(false)
	if err != nil {
		return Token{}, err
	}
	if open.Kind != TokenLBrace {
		s.cur.unread(open)
		return Token{}, &StateError{Message: fmt.Sprintf(
			"matched block start `%s{` but the next token is `%s`", kw, open.Kind)}
	}
	return open, nil
}

// abortOn builds the abort for an unexpected token. A block start always
// follows a newline; the failed block ends before that newline.
func (s *Splitter) abortOn(t Token, end int, format string, args ...any) *BlockAbortedError {
	if t.Kind == TokenBlockStart {
		end = t.Start - 1
	}
	return abortAt(end, format, args...)
}

func (s *Splitter) handleEntry(start Token) (Block, error) {
	startLine := s.cur.line()
	entryType := strings.ToLower(start.Text[1:])
	if _, err := s.expectOpenBrace(start.Text); err != nil {
		return nil, err
	}

	comma, err := s.cur.next(false)
	if err != nil {
		return nil, err
	}
	if comma.Kind != TokenComma {
		s.cur.unread(comma)
		return nil, s.abortOn(comma, comma.End,
			"Expected comma after entry key, but found `%s`", comma.Text)
	}
	s.state.openBrackets++
	key := strings.TrimSpace(s.slice(start.End+1, comma.Start))

	fields, end, dups, err := s.moveToEndOfEntry(comma.End)
	if err != nil {
		return nil, err
	}
	s.state.openBrackets--

	entry := NewEntry(entryType, key, fields, s.slice(start.Start, end), startLine)
	if len(dups) > 0 {
		return NewDuplicateFieldKeyBlock(entry, dups), nil
	}
	return entry, nil
}

// moveToEndOfEntry reads `key = value` pairs up to the closing brace of
// the entry and returns the fields and the index just past that brace.
func (s *Splitter) moveToEndOfEntry(keyStart int) ([]Field, int, map[string]struct{}, error) {
	var fields []Field
	seen := make(map[string]struct{})
	dups := make(map[string]struct{})

	for {
		equals, err := s.cur.next(false)
		if err != nil {
			return nil, 0, nil, err
		}
		if equals.Kind == TokenRBrace {
			return fields, equals.End, dups, nil
		}
		if equals.Kind != TokenEqual {
			s.cur.unread(equals)
			return nil, 0, nil, s.abortOn(equals, equals.Start,
				"Expected a `=` after entry key, but found `%s`.", equals.Text)
		}

		startLine := s.cur.line()
		keyEnd := equals.Start
		valueStart := equals.End
		var valueEnd int

		first, err := s.cur.next(false)
		if err != nil {
			return nil, 0, nil, err
		}
		switch first.Kind {
		case TokenLBrace:
			closing, err := s.closingBrace()
			if err != nil {
				return nil, 0, nil, err
			}
			valueEnd = closing + 1
		case TokenQuote:
			closing, err := s.closingQuote()
			if err != nil {
				return nil, 0, nil, err
			}
			valueEnd = closing + 1
		case TokenComma, TokenRBrace:
			// bare value such as a number or a macro name
			valueEnd = first.Start
			s.cur.unread(first)
		default:
			s.cur.unread(first)
			return nil, 0, nil, s.abortOn(first, first.Start,
				"Unexpected character `%s` after field-value. Expected a comma or closing bracket.", first.Text)
		}

		key := strings.TrimSpace(s.slice(keyStart, keyEnd))
		value := strings.TrimSpace(s.slice(valueStart, valueEnd))
		if _, ok := seen[key]; ok {
			dups[key] = struct{}{}
			key = duplicateKey(key, seen)
		}
		seen[key] = struct{}{}
		fields = append(fields, NewField(key, value, startLine))

		after, err := s.cur.next(false)
		if err != nil {
			return nil, 0, nil, err
		}
		switch after.Kind {
		case TokenComma:
			keyStart = after.End
		case TokenRBrace:
			// seen again at the top of the loop
			s.cur.unread(after)
		default:
			s.cur.unread(after)
			return nil, 0, nil, s.abortOn(after, after.Start,
				"Expected either a `,` or `}` after a closed entry field value, but found `%s` before.", after.Text)
		}
	}
}

// duplicateKey returns the first free `key_duplicate_N`, N from 1.
// An authored field already named that way pushes N further.
func duplicateKey(key string, seen map[string]struct{}) string {
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_duplicate_%d", key, n)
		if _, ok := seen[candidate]; !ok {
			return candidate
		}
	}
}

func (s *Splitter) handleString(start Token) (Block, error) {
	startLine := s.cur.line()
	if _, err := s.expectOpenBrace(start.Text); err != nil {
		return nil, err
	}
	equals, err := s.cur.next(false)
	if err != nil {
		return nil, err
	}
	if equals.Kind != TokenEqual {
		s.cur.unread(equals)
		return nil, s.abortOn(equals, equals.End,
			"Expected equals sign after field key, but found `%s`", equals.Text)
	}
	key := strings.TrimSpace(s.slice(start.End+1, equals.Start))
	end, err := s.closingBrace()
	if err != nil {
		return nil, err
	}
	value := strings.TrimSpace(s.slice(equals.End, end))
	return NewString(key, value, s.slice(start.Start, end+1), startLine), nil
}

func (s *Splitter) handlePreamble(start Token) (Block, error) {
	startLine := s.cur.line()
	open, err := s.expectOpenBrace(start.Text)
	if err != nil {
		return nil, err
	}
	end, err := s.closingBrace()
	if err != nil {
		return nil, err
	}
	return NewPreamble(s.slice(open.End, end), s.slice(start.Start, end+1), startLine), nil
}

func (s *Splitter) handleExplicitComment(start Token) (Block, error) {
	startLine := s.cur.line()
	open, err := s.expectOpenBrace(start.Text)
	if err != nil {
		return nil, err
	}
	end, err := s.closingBrace()
	if err != nil {
		return nil, err
	}
	comment := strings.TrimSpace(s.slice(open.End, end))
	return NewExplicitComment(comment, s.slice(start.Start, end+1), startLine), nil
}

// =========================
// Boundary Resolution
// =========================

// closingBrace returns the index of the `}` matching a just consumed `{`.
func (s *Splitter) closingBrace() (int, error) {
	depth := 0
	s.state.openBrackets++
	for {
		t, err := s.cur.next(false)
		if err != nil {
			return 0, err
		}
		switch t.Kind {
		case TokenLBrace:
			depth++
		case TokenRBrace:
			if depth == 0 {
				s.state.openBrackets--
				return t.Start, nil
			}
			depth--
		case TokenBlockStart:
			s.cur.unread(t)
			return 0, s.abortOn(t, t.Start,
				"Unexpected block start: `%s`. Was still looking for closing bracket", t.Text)
		}
	}
}

// closingQuote returns the index of the `"` closing a just consumed one.
func (s *Splitter) closingQuote() (int, error) {
	s.state.quoteOpen = true
	for {
		t, err := s.cur.next(false)
		if err != nil {
			return 0, err
		}
		switch t.Kind {
		case TokenQuote:
			s.state.quoteOpen = false
			return t.Start, nil
		case TokenBlockStart:
			s.cur.unread(t)
			return 0, s.abortOn(t, t.Start,
				"Unexpected block start: `%s`. Was still looking for field-value closing `\"`", t.Text)
		}
	}
}
