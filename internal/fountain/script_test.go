/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	corpus := append([]string{
		"!INT. NOT A SCENE\n\n@McCLANE\nHi.",
		"!Title: Foo",
		"!\n!\nBOB\nRUNS",
		"!BOB\nRUNS",
		"> FADE IN:\n\n>\n\n><\n\n~\n\n#\n\n=",
		"EXT. PARK #12A#\n\n. #7#\n\n.HOME",
		"INT. HOUSE\nBOB walks in.\nCUT TO:",
		"He looks.\nINT. GARAGE\nShe looks.",
		"BOB\nHi.\n\nJIM ^\n(beat)\nHo.",
		"[[ outer [[ inner ]] ]]\n\nafter",
		"[[ [[x]] ]]\n\ufeffX\nY",
		"\ufeffBOB\nHi.",
	}, equivalenceCorpus...)

	for _, pt := range []ParserType{ParserFast, ParserRegexes} {
		for i, in := range corpus {
			first := NewFromString(in, WithParser(pt))
			out := first.StringFromDocument()
			second := NewFromString(out, WithParser(pt))
			if !first.TitlePage.Equal(second.TitlePage) {
				t.Fatalf("%s corpus %d: title page changed\nmarkup:\n%s\nwant %+v\ngot  %+v", pt, i, out, first.TitlePage, second.TitlePage)
			}
			if len(first.Elements) != len(second.Elements) {
				t.Fatalf("%s corpus %d: %d elements became %d\nmarkup:\n%s", pt, i, len(first.Elements), len(second.Elements), out)
			}
			for j := range first.Elements {
				if !first.Elements[j].Same(second.Elements[j]) {
					t.Fatalf("%s corpus %d element %d: %v became %v\nmarkup:\n%s", pt, i, j, first.Elements[j], second.Elements[j], out)
				}
			}
		}
	}
}

func TestSerializeForcing(t *testing.T) {
	s := New()
	s.Elements = []Element{
		{Kind: SceneHeading, Text: "SNIPER SCOPE POV", SceneNumber: "4"},
		{Kind: Action, Text: "INT. NOT A SCENE"},
		{Kind: Character, Text: "McCLANE"},
		{Kind: Dialogue, Text: "Hi."},
		{Kind: Transition, Text: "CUT TO:"},
		{Kind: Transition, Text: "FADE IN:"},
		{Kind: CenteredText, Text: "THE END", Centered: true},
		{Kind: Section, Text: "Act", Depth: 2},
		{Kind: PageBreak},
	}
	want := strings.Join([]string{
		". SNIPER SCOPE POV #4#",
		"!INT. NOT A SCENE",
		"@McCLANE\nHi.",
		"CUT TO:",
		"> FADE IN:",
		"> THE END <",
		"## Act",
		"===",
	}, "\n\n")
	assert.Equal(t, want, s.StringFromBody())
}

func TestStringFromDocument(t *testing.T) {
	s := NewFromString("Title: Big Fish\nContact:\n  Jane\n  Agency\n\nINT. HOUSE - DAY")
	assert.Equal(t, "Title: Big Fish\nContact:\n    Jane\n    Agency", s.StringFromTitlePage())
	assert.Equal(t, "INT. HOUSE - DAY", s.StringFromBody())
	assert.Equal(t, s.StringFromTitlePage()+"\n\n"+s.StringFromBody(), s.StringFromDocument())

	bare := New()
	bare.Elements = []Element{{Kind: Action, Text: "Title: Foo"}}
	assert.Equal(t, "\nTitle: Foo", bare.StringFromDocument())
}

func TestLoadStringReplacesState(t *testing.T) {
	s := NewFromString("Title: A\n\nINT. HOUSE")
	require.Len(t, s.Elements, 1)
	s.LoadString("BOB\nHi.")
	assert.Empty(t, s.TitlePage)
	require.Len(t, s.Elements, 2)
	assert.Equal(t, Character, s.Elements[0].Kind)
}

func TestLoadFileMissingResets(t *testing.T) {
	s := NewFromString("INT. HOUSE")
	err := s.LoadFile(filepath.Join(t.TempDir(), "missing.fountain"))
	var fe *FileError
	require.True(t, errors.As(err, &fe), "expected *FileError, got %T", err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Empty(t, s.Elements)
	assert.Empty(t, s.TitlePage)
}

func TestLoadBytes(t *testing.T) {
	t.Run("utf16 with bom", func(t *testing.T) {
		s := New()
		require.NoError(t, s.LoadBytes([]byte{0xFF, 0xFE, 'C', 0, 'U', 0, 'T', 0, ' ', 0, 'T', 0, 'O', 0, ':', 0}))
		require.Len(t, s.Elements, 1)
		assert.Equal(t, Element{Kind: Transition, Text: "CUT TO:"}, s.Elements[0])
	})
	t.Run("utf8 bom is dropped", func(t *testing.T) {
		s := New()
		require.NoError(t, s.LoadBytes([]byte("\ufeffCUT TO:")))
		require.Len(t, s.Elements, 1)
		assert.Equal(t, Element{Kind: Transition, Text: "CUT TO:"}, s.Elements[0])
	})
	t.Run("bom inside the text is kept", func(t *testing.T) {
		s := New()
		require.NoError(t, s.LoadBytes([]byte("\ufeff\ufeffX")))
		require.Len(t, s.Elements, 1)
		assert.Equal(t, "\ufeffX", s.Elements[0].Text)

		back := New()
		require.NoError(t, back.LoadBytes([]byte(s.StringFromDocument())))
		require.Len(t, back.Elements, 1)
		assert.True(t, s.Elements[0].Same(back.Elements[0]), "got %v", back.Elements[0])
	})
	t.Run("invalid utf8 resets", func(t *testing.T) {
		s := NewFromString("INT. HOUSE")
		err := s.LoadBytes([]byte{'a', 0xFF, 'b'})
		var fe *FileError
		require.ErrorAs(t, err, &fe)
		require.ErrorIs(t, err, ErrUndecodable)
		assert.Empty(t, s.Elements)
	})
	t.Run("odd utf16", func(t *testing.T) {
		s := New()
		require.ErrorIs(t, s.LoadBytes([]byte{0xFE, 0xFF, 0}), ErrUndecodable)
	})
}

func TestWriteAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brick.fountain")
	s := NewFromString(brickAndSteel, WithParser(ParserRegexes))
	require.NoError(t, s.WriteToFile(path))
	assert.Equal(t, path, s.Filename)

	back, err := NewFromFile(path)
	require.NoError(t, err)
	assert.True(t, EqualElements(s.Elements, back.Elements))
	assert.True(t, s.TitlePage.Equal(back.TitlePage))

	u := &url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(dir, "copy.fountain"))}
	require.NoError(t, s.WriteToURL(u))
	viaURL := New()
	require.NoError(t, viaURL.LoadURL(u))
	assert.True(t, EqualElements(s.Elements, viaURL.Elements))

	err = s.WriteToURL(&url.URL{Scheme: "https", Host: "example.com", Path: "/x.fountain"})
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	s := New(WithParser(ParserRegexes), WithSuppressSceneNumbers(true))
	assert.Equal(t, ParserRegexes, s.Parser())
	assert.True(t, s.SuppressSceneNumbers)
}
