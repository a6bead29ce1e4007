package bibtex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryQueries(t *testing.T) {
	src := `@string{me = "Me"}
@preamble{pre}
@article{a, title = {A}}
@article{a, title = {Again}}
@book{b, year = 1999, year = 2000}
@comment{note}
loose text
@misc{c, title = {open
`
	lib, err := Parse(src, quietOptions())
	require.NoError(t, err)

	assert.Equal(t, 8, lib.Len())
	assert.Len(t, lib.Entries(), 2)
	assert.Len(t, lib.Strings(), 1)
	assert.Len(t, lib.Preambles(), 1)
	assert.Len(t, lib.Comments(), 2)

	failed := lib.FailedBlocks()
	require.Len(t, failed, 2)
	assert.Equal(t, BlockKinds.DuplicateFieldKey, failed[0].Kind())
	assert.Equal(t, BlockKinds.ParsingFailed, failed[1].Kind())

	dict := lib.EntriesDict()
	require.Contains(t, dict, "a")
	title, ok := dict["a"].Field("title")
	require.True(t, ok)
	assert.Equal(t, "{A}", title.Value(), "first entry with a key wins")
	assert.NotContains(t, dict, "b")

	assert.Equal(t, `"Me"`, lib.StringsDict()["me"].Value())
}

func TestLibraryRemoveReplace(t *testing.T) {
	lib := NewLibrary()
	first := NewExplicitComment("one", "@comment{one}", 1)
	second := NewExplicitComment("two", "@comment{two}", 2)
	lib.Add(first)
	lib.Add(second)

	third := NewExplicitComment("three", "@comment{three}", 3)
	require.NoError(t, lib.Replace(first, third))
	assert.Equal(t, []Block{third, second}, lib.Blocks())

	require.NoError(t, lib.Remove(second))
	assert.Equal(t, []Block{third}, lib.Blocks())

	assert.ErrorIs(t, lib.Remove(second), ErrBlockNotFound)
	assert.ErrorIs(t, lib.Replace(first, second), ErrBlockNotFound)
}

func TestLibraryBlocksIsACopy(t *testing.T) {
	lib := NewLibrary()
	lib.Add(NewPreamble("p", "@preamble{p}", 1))
	blocks := lib.Blocks()
	blocks[0] = nil
	assert.NotNil(t, lib.Blocks()[0])
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.bib")
	require.NoError(t, os.WriteFile(path, []byte("@book{b, title = {T}}\n"), 0o644))

	lib, err := ParseFile(path, quietOptions())
	require.NoError(t, err)
	require.Len(t, lib.Entries(), 1)
	assert.Equal(t, "book", lib.Entries()[0].EntryType())

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.bib"), quietOptions())
	assert.Error(t, err)
}
