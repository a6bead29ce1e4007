package bibtex

// Package bibtex splits bibtex source into an ordered sequence of blocks:
// entries, string macros, preambles, explicit and implicit comments.
//
// A syntax error inside one block does not stop the parse. The broken
// block is kept as a ParsingFailedBlock holding its raw text and the
// splitter resumes at the next block start.
//
// Out of scope:
// - resolving string macros in field values
// - validating field contents
// - salvaging fields from aborted blocks

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode"
)

// =========================
// Public API
// =========================

// Sink receives finished blocks in source order.
type Sink interface {
	Add(b Block)
}

type Options struct {
	// Logger receives recovery warnings and fatal errors. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// Parse splits src into a new Library.
func Parse(src string, opts Options) (*Library, error) {
	sink, err := NewSplitter(src, opts).Split(nil)
	return sink.(*Library), err
}

// ParseFile reads fileName and splits it into a new Library.
func ParseFile(fileName string, opts Options) (*Library, error) {
	b, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	return Parse(string(b), opts)
}

// =========================
// Splitter
// =========================

// Splitter holds the state of one pass over one buffer. It is not safe
// for concurrent use; use one Splitter per buffer.
type Splitter struct {
	// src is the input behind a synthetic leading newline, so that a
	// block start at offset 0 still follows a newline.
	src    string
	cur    *cursor
	state  blockState
	logger *slog.Logger
}

// blockState is rebuilt after every top-level block.
type blockState struct {
	openBrackets int
	quoteOpen    bool
	// commentStart is -1 while no implicit comment is pending.
	commentStart     int
	commentStartLine int
}

func newBlockState(commentStart, line int) blockState {
	return blockState{commentStart: commentStart, commentStartLine: line}
}

func NewSplitter(input string, opts Options) *Splitter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Splitter{src: "\n" + input, logger: logger}
}

// Split appends every block of the input to sink and returns it. A nil
// sink is replaced by a new *Library. The only error is a *StateError
// (errors.Is ErrParserState); blocks added before it stay in the sink.
func (s *Splitter) Split(sink Sink) (Sink, error) {
	if sink == nil {
		sink = NewLibrary()
	} else {
		s.logger.Info("adding blocks to existing library")
	}
	s.cur = newCursor(s.src)
	// skip the synthetic newline for the first implicit comment
	s.state = newBlockState(1, 1)
	return s.run(sink)
}

// run dispatches blocks from the current cursor position to the end of
// the input.
func (s *Splitter) run(sink Sink) (Sink, error) {
	for {
		tok, err := s.cur.next(true)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sink, err
		}
		if tok.Kind != TokenBlockStart {
			continue
		}

		if c := s.endImplicitComment(tok.Start); c != nil {
			sink.Add(c)
		}
		s.state.commentStart = -1

		startLine := s.cur.line()
		blk, err := s.handleBlock(tok)
		var aborted *BlockAbortedError
		var stateErr *StateError
		switch {
		case err == nil:
			sink.Add(blk)
		case errors.As(err, &aborted):
			s.logger.Warn("block parsing aborted",
				slog.String("block", strings.ToLower(tok.Text)),
				slog.Int("start_line", startLine),
				slog.Int("abort_line", s.cur.line()),
				slog.Int("open_brackets", s.state.openBrackets),
				slog.Bool("in_quotes", s.state.quoteOpen),
				slog.String("reason", aborted.Reason))
			sink.Add(NewParsingFailedBlock(s.slice(tok.Start, aborted.end), aborted, startLine))
		case errors.As(err, &stateErr):
			s.logger.Error(stateErr.Message,
				slog.String("block", strings.ToLower(tok.Text)),
				slog.Int("start_line", startLine))
			return sink, err
		default:
			s.logger.Error("unexpected error while parsing block",
				slog.String("block", strings.ToLower(tok.Text)),
				slog.Int("start_line", startLine),
				slog.Any("error", err))
			return sink, err
		}

		s.state = newBlockState(s.cur.index+1, s.cur.line())
	}

	if s.state.commentStart >= 0 {
		if c := s.endImplicitComment(len(s.src)); c != nil {
			sink.Add(c)
		}
	}
	return sink, nil
}

func (s *Splitter) handleBlock(tok Token) (Block, error) {
	kw := strings.ToLower(tok.Text)
	switch {
	case strings.HasPrefix(kw, "@comment"):
		return s.handleExplicitComment(tok)
	case strings.HasPrefix(kw, "@preamble"):
		return s.handlePreamble(tok)
	case strings.HasPrefix(kw, "@string"):
		return s.handleString(tok)
	}
	return s.handleEntry(tok)
}

// slice returns src[start:end], empty for an empty or inverted range.
func (s *Splitter) slice(start, end int) string {
	if end > len(s.src) {
		end = len(s.src)
	}
	if start >= end {
		return ""
	}
	return s.src[start:end]
}

// =========================
// Implicit Comments
// =========================

// endImplicitComment closes the pending implicit comment at end. Leading
// blank lines and trailing whitespace are dropped from the comment text;
// an empty result yields nil.
func (s *Splitter) endImplicitComment(end int) *ImplicitComment {
	if s.state.commentStart < 0 {
		return nil
	}
	raw := s.slice(s.state.commentStart, end)
	if raw == "" {
		return nil
	}

	leading := 0
	i := len(raw)
	for j, r := range raw {
		if r == '\n' {
			leading++
		} else if !unicode.IsSpace(r) {
			i = j
			break
		}
	}
	comment := strings.TrimRightFunc(raw[i:], unicode.IsSpace)
	if comment == "" {
		return nil
	}
	return NewImplicitComment(comment, raw, s.state.commentStartLine+leading)
}
