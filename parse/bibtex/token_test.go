package bibtex

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func scanAll(src string) []Token {
	sc := newScanner(src)
	var out []Token
	for {
		t, ok := sc.scan()
		if !ok {
			return out
		}
		out = append(out, t)
	}
}

func TestScanner(t *testing.T) {
	convey.Convey("structural characters and block starts", t, func() {
		toks := scanAll("\n@Article{k, a = \"x\\\"y\"}\n text @no{ \\{ \\}")
		var texts []string
		for _, tok := range toks {
			texts = append(texts, tok.Text)
		}
		convey.So(texts, convey.ShouldResemble, []string{
			"\n", "@Article", "{", ",", "=", `"`, `"`, "}", "\n", "{",
		})
		convey.So(toks[1].Kind, convey.ShouldEqual, TokenBlockStart)
		convey.So(toks[1].Line, convey.ShouldEqual, 1)
		convey.So(toks[9].Line, convey.ShouldEqual, 2)
	})

	convey.Convey("unicode keyword", t, func() {
		toks := scanAll("\n@bücher{")
		convey.So(toks[1].Text, convey.ShouldEqual, "@bücher")
	})

	convey.Convey("many blank lines", t, func() {
		c := newCursor(strings.Repeat("\n", 11) + "@a{")
		tok, err := c.next(false)
		convey.So(err, convey.ShouldBeNil)
		convey.So(tok.Kind, convey.ShouldEqual, TokenBlockStart)
		convey.So(c.line(), convey.ShouldEqual, 11)
	})
}

func TestCursor(t *testing.T) {
	convey.Convey("unread delivers the same token again", t, func() {
		c := newCursor("\n{,}")
		first, _ := c.next(false)
		second, _ := c.next(false)
		c.unread(second)
		again, err := c.next(false)
		convey.So(err, convey.ShouldBeNil)
		convey.So(again, convey.ShouldResemble, second)
		convey.So(c.index, convey.ShouldEqual, second.Start)
		convey.So(first.Kind, convey.ShouldEqual, TokenLBrace)
	})

	convey.Convey("end of input", t, func() {
		c := newCursor("\n")
		_, err := c.next(true)
		convey.So(errors.Is(err, io.EOF), convey.ShouldBeTrue)

		_, err = c.next(false)
		var aborted *BlockAbortedError
		convey.So(errors.As(err, &aborted), convey.ShouldBeTrue)
		convey.So(aborted.Reason, convey.ShouldEqual, "Unexpectedly reached end of file.")
	})
}
