package bibtex

import (
	"errors"
	"fmt"
)

// ErrParserState marks a fatal disagreement between token recognition and
// the block handlers. Check with errors.Is.
var ErrParserState = errors.New("bibtex: parser state violation")

// BlockAbortedError is a syntax error local to one block. The splitter
// never returns it; it ends up inside a ParsingFailedBlock.
type BlockAbortedError struct {
	Reason string
	// Offset is the byte offset in the input where the block was cut off.
	Offset int

	end int // index into the splitter buffer
}

func (e *BlockAbortedError) Error() string {
	return fmt.Sprintf("%s (offset %d)", e.Reason, e.Offset)
}

// StateError reports a fatal contract violation. It terminates Split.
type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return "bibtex: " + e.Message
}

func (e *StateError) Unwrap() error { return ErrParserState }

func abortAt(end int, format string, args ...any) *BlockAbortedError {
	offset := end - 1
	if offset < 0 {
		offset = 0
	}
	return &BlockAbortedError{Reason: fmt.Sprintf(format, args...), Offset: offset, end: end}
}
