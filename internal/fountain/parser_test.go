/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brickAndSteel = `Title: Brick & Steel
Credit: Written by
Author: Stu Maschwitz
Source: Story by KTM
Draft date: 1/20/2012
Contact:
    Next Level Productions
    1588 Mission Dr.

EXT. BRICK'S PATIO - DAY #1#

A gorgeous day.  The sun is shining.

STEEL (O.S.)
Beer's ready!

BRICK
(beat)
Are they cold?
Yes.

BRICK
Screw retirement.

STEEL ^
Screw retirement.

CUT TO:

.SNIPER SCOPE POV

!SCANS THE PATIO.
More action here.

# Act Two

= The heroes regroup.

[[Remember the dog.]]

/* Deleted
scene */

>THE END<

~La la la

===

>FADE IN:

FADE OUT.
`

var brickAndSteelElements = []Element{
	{Kind: SceneHeading, Text: "EXT. BRICK'S PATIO - DAY", SceneNumber: "1"},
	{Kind: Action, Text: "A gorgeous day.  The sun is shining."},
	{Kind: Character, Text: "STEEL (O.S.)"},
	{Kind: Dialogue, Text: "Beer's ready!"},
	{Kind: Character, Text: "BRICK"},
	{Kind: Parenthetical, Text: "(beat)"},
	{Kind: Dialogue, Text: "Are they cold?\nYes."},
	{Kind: Character, Text: "BRICK", Dual: DualLeft},
	{Kind: Dialogue, Text: "Screw retirement.", Dual: DualLeft},
	{Kind: Character, Text: "STEEL", Dual: DualRight},
	{Kind: Dialogue, Text: "Screw retirement.", Dual: DualRight},
	{Kind: Transition, Text: "CUT TO:"},
	{Kind: SceneHeading, Text: "SNIPER SCOPE POV"},
	{Kind: Action, Text: "SCANS THE PATIO.\nMore action here."},
	{Kind: Section, Text: "Act Two", Depth: 1},
	{Kind: Synopsis, Text: "The heroes regroup."},
	{Kind: Comment, Text: "Remember the dog."},
	{Kind: CenteredText, Text: "THE END", Centered: true},
	{Kind: CenteredText, Text: "La la la", Centered: true, Lyric: true},
	{Kind: PageBreak},
	{Kind: Transition, Text: "FADE IN:"},
	{Kind: Transition, Text: "FADE OUT."},
}

var strategies = map[string]Parser{
	"fast":  ScanParser{},
	"regex": PatternParser{},
}

func requireSame(t *testing.T, want, got []Element) {
	t.Helper()
	require.Len(t, got, len(want), "element count\n%s", cmp.Diff(want, got))
	for i := range want {
		if !want[i].Same(got[i]) {
			t.Fatalf("element %d: want %#v, got %#v", i, want[i], got[i])
		}
	}
}

func TestParseFullDocument(t *testing.T) {
	for name, p := range strategies {
		t.Run(name, func(t *testing.T) {
			tp, els := p.Parse(brickAndSteel)
			requireSame(t, brickAndSteelElements, els)

			require.Len(t, tp, 6)
			assert.Equal(t, "Title", tp[0].Key)
			assert.Equal(t, []string{"Brick & Steel"}, tp[0].Values)
			assert.Equal(t, "Draft date", tp[4].Key)
			contact, ok := tp.Get("contact")
			require.True(t, ok)
			assert.Equal(t, []string{"Next Level Productions", "1588 Mission Dr."}, contact)
		})
	}
}

func TestParseSingleLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Element
	}{
		{"scene heading", "INT. HOUSE - DAY", []Element{{Kind: SceneHeading, Text: "INT. HOUSE - DAY"}}},
		{"scene number", "INT. HOUSE - DAY #102#", []Element{{Kind: SceneHeading, Text: "INT. HOUSE - DAY", SceneNumber: "102"}}},
		{"lowercase scene heading", "int. house", []Element{{Kind: SceneHeading, Text: "int. house"}}},
		{"i/e heading", "I/E CAR - MOVING", []Element{{Kind: SceneHeading, Text: "I/E CAR - MOVING"}}},
		{"not a heading", "INTERIOR DESIGN", []Element{{Kind: Action, Text: "INTERIOR DESIGN"}}},
		{"character and dialogue", "MCCLANE\nYippee-ki-yay.", []Element{
			{Kind: Character, Text: "MCCLANE"},
			{Kind: Dialogue, Text: "Yippee-ki-yay."},
		}},
		{"forced transition", ">BURN TO:", []Element{{Kind: Transition, Text: "BURN TO:"}}},
		{"centered", ">FLASHBACK<", []Element{{Kind: CenteredText, Text: "FLASHBACK", Centered: true}}},
		{"shape transition", "SMASH CUT TO:", []Element{{Kind: Transition, Text: "SMASH CUT TO:"}}},
		{"lowercase is not a transition", "Cut to:", []Element{{Kind: Action, Text: "Cut to:"}}},
		{"forced action", "!INT. NOT A SCENE", []Element{{Kind: Action, Text: "INT. NOT A SCENE"}}},
		{"forced scene", ".SNIPER SCOPE POV", []Element{{Kind: SceneHeading, Text: "SNIPER SCOPE POV"}}},
		{"ellipsis is action", "...and then", []Element{{Kind: Action, Text: "...and then"}}},
		{"forced character", "@McCLANE\nHi.", []Element{
			{Kind: Character, Text: "McCLANE"},
			{Kind: Dialogue, Text: "Hi."},
		}},
		{"lone forced character is action", "@NOBODY", []Element{{Kind: Action, Text: "@NOBODY"}}},
		{"cue needs following line", "MCCLANE", []Element{{Kind: Action, Text: "MCCLANE"}}},
		{"lyric", "~Willy Wonka", []Element{{Kind: CenteredText, Text: "Willy Wonka", Centered: true, Lyric: true}}},
		{"section depth", "### Sequence", []Element{{Kind: Section, Text: "Sequence", Depth: 3}}},
		{"synopsis", "= They meet.", []Element{{Kind: Synopsis, Text: "They meet."}}},
		{"page break", "=====", []Element{{Kind: PageBreak}}},
		{"standalone note", "[[a note]]", []Element{{Kind: Comment, Text: "a note"}}},
		{"inline note removed", "He said [[inline]] hi.", []Element{{Kind: Action, Text: "He said  hi."}}},
		{"extension cue", "BOB (V.O.)\nHello.", []Element{
			{Kind: Character, Text: "BOB (V.O.)"},
			{Kind: Dialogue, Text: "Hello."},
		}},
		{"mixed case is action", "Bob\nHello.", []Element{{Kind: Action, Text: "Bob\nHello."}}},
		{"parenthetical", "BOB\n(quietly)\nHello.\nAgain.", []Element{
			{Kind: Character, Text: "BOB"},
			{Kind: Parenthetical, Text: "(quietly)"},
			{Kind: Dialogue, Text: "Hello.\nAgain."},
		}},
		{"action lines merge", "He walks.\nShe runs.\n\nThey stop.", []Element{
			{Kind: Action, Text: "He walks.\nShe runs."},
			{Kind: Action, Text: "They stop."},
		}},
		{"dual without partner", "STEEL ^\nHi.", []Element{
			{Kind: Character, Text: "STEEL"},
			{Kind: Dialogue, Text: "Hi."},
		}},
		{"boneyard line dropped", "INT. HOUSE\n/* gone */\nHe waits.", []Element{
			{Kind: SceneHeading, Text: "INT. HOUSE"},
			{Kind: Action, Text: "He waits."},
		}},
		{"unbalanced boneyard stays", "A /* never closed", []Element{{Kind: Action, Text: "A /* never closed"}}},
		{"crlf", "BOB\r\nHi.\r\n\r\nCUT TO:", []Element{
			{Kind: Character, Text: "BOB"},
			{Kind: Dialogue, Text: "Hi."},
			{Kind: Transition, Text: "CUT TO:"},
		}},
	}
	for _, tt := range tests {
		for name, p := range strategies {
			t.Run(tt.name+"/"+name, func(t *testing.T) {
				_, got := p.Parse(tt.in)
				requireSame(t, tt.want, got)
			})
		}
	}
}

func TestDualDialogueLinksBothGroups(t *testing.T) {
	in := "BRICK\n(shouting)\nScrew retirement.\n\nSTEEL ^\nScrew retirement."
	_, els := ScanParser{}.Parse(in)
	require.Len(t, els, 5)
	for i := 0; i < 3; i++ {
		assert.Equal(t, DualLeft, els[i].Dual, "element %d", i)
	}
	for i := 3; i < 5; i++ {
		assert.Equal(t, DualRight, els[i].Dual, "element %d", i)
	}
}

func TestTitlePage(t *testing.T) {
	t.Run("duplicate keys kept", func(t *testing.T) {
		for name, p := range strategies {
			tp, els := p.Parse("Author: A\nAuthor: B\n\nBody text.")
			want := TitlePage{{Key: "Author", Values: []string{"A"}}, {Key: "Author", Values: []string{"B"}}}
			if diff := cmp.Diff(want, tp); diff != "" {
				t.Fatalf("%s: title page mismatch (-want +got):\n%s", name, diff)
			}
			requireSame(t, []Element{{Kind: Action, Text: "Body text."}}, els)
		}
	})
	t.Run("non directive makes everything body", func(t *testing.T) {
		for name, p := range strategies {
			tp, els := p.Parse("Title: X\nThis is not a directive\n\nBody")
			if len(tp) != 0 {
				t.Fatalf("%s: expected no title page, got %+v", name, tp)
			}
			requireSame(t, []Element{
				{Kind: Action, Text: "Title: X\nThis is not a directive"},
				{Kind: Action, Text: "Body"},
			}, els)
		}
	})
	t.Run("leading blank line means no title page", func(t *testing.T) {
		tp, els := PatternParser{}.Parse("\nTitle: X")
		if len(tp) != 0 {
			t.Fatalf("expected no title page, got %+v", tp)
		}
		requireSame(t, []Element{{Kind: Action, Text: "Title: X"}}, els)
	})
	t.Run("title only", func(t *testing.T) {
		for name, p := range strategies {
			tp, els := p.Parse("Title: Only\n")
			if len(tp) != 1 || len(els) != 0 {
				t.Fatalf("%s: got tp=%+v els=%+v", name, tp, els)
			}
		}
	})
}

var equivalenceCorpus = []string{
	brickAndSteel,
	"",
	"\n\n\n",
	"INT. HOUSE - DAY\nHe enters.\nBOB\nHi.",
	"BOB\n\nHi.",
	"BOB ^\nHi.\nJIM ^\nHo.",
	"A\n\nB ^\nx\n\nC ^\ny",
	"@\nfoo",
	"@ ^\nfoo",
	"#### FOUR\nfour",
	"##\n#x#\n= \n==\n===",
	"[[\nmulti\n]]\n\n[[ok]]\n\nx [[y]] z",
	"[[a]]\nnot standalone",
	"/* a /* b */ c */ d\n*/ e /*",
	"><\n>\n~\n!\n.\n..x\n. #1#",
	"EXT./INT. CAR #1A-2.#\nEXT/INT TRUCK\nint/ext nope\nEST. CITY",
	"ÉLODIE\nBonjour.\n\nStraße\nnope",
	"Title: x\n  continued\n\tmore\nKey & Other: y\n\nBody",
	"  Indented: no\n\nbody",
	"FADE TO BLACK.\n\nCUT TO BLACK.\n\nFADE OUT",
	"BOB\n(beat)\n(beat)\nHi.\n(beat)",
	"\ufeffINT. HOUSE\r\n\r\nBOB\rHi.",
	"HE RUNS!\nFast.",
	"JOHN:\nHello",
	"a\x00b",
}

func TestStrategiesAgree(t *testing.T) {
	for i, in := range equivalenceCorpus {
		ftp, fast := ScanParser{}.Parse(in)
		rtp, slow := PatternParser{}.Parse(in)
		if diff := cmp.Diff(slow, fast); diff != "" {
			t.Fatalf("corpus %d: strategies disagree (-regex +fast):\n%s", i, diff)
		}
		for j := range fast {
			if !fast[j].Same(slow[j]) {
				t.Fatalf("corpus %d element %d: fast %#v regex %#v", i, j, fast[j], slow[j])
			}
		}
		if !ftp.Equal(rtp) {
			t.Fatalf("corpus %d: title pages differ: fast %+v regex %+v", i, ftp, rtp)
		}
	}
}

func TestParseIsDeterministic(t *testing.T) {
	_, a := ScanParser{}.Parse(brickAndSteel)
	_, b := ScanParser{}.Parse(brickAndSteel)
	if !EqualElements(a, b) {
		t.Fatalf("parsing twice produced different sequences")
	}
}

func TestParseParserType(t *testing.T) {
	for in, want := range map[string]ParserType{"": ParserFast, "fast": ParserFast, "Regex": ParserRegexes, " regexes ": ParserRegexes} {
		got, err := ParseParserType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseParserType("lex")
	assert.Error(t, err)
	assert.IsType(t, PatternParser{}, NewParser(ParserRegexes))
	assert.IsType(t, ScanParser{}, NewParser(ParserFast))
}

func TestIsCueName(t *testing.T) {
	for in, want := range map[string]bool{
		"MCCLANE":      true,
		"McCLANE":      false,
		"BOB (V.O.)":   true,
		"BOB (cont'd)": true,
		"HELLO!":       false,
		"R2-D2":        true,
		"123":          false,
		"ÉLODIE":       true,
		"":             false,
	} {
		if got := IsCueName(in); got != want {
			t.Fatalf("IsCueName(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRulesTable(t *testing.T) {
	rs := Rules()
	require.NotEmpty(t, rs)
	assert.Equal(t, RuleParenthetical, rs[0].Name)
	assert.Equal(t, RuleAction, rs[len(rs)-1].Name)
	rs[0].Name = "changed"
	assert.Equal(t, RuleParenthetical, Rules()[0].Name, "Rules must return a copy")
	for _, r := range rs {
		require.NotNil(t, r.Pattern, r.Name)
	}
}

func TestStripEmphasis(t *testing.T) {
	for in, want := range map[string]string{
		"***Yippee***-ki-yay":             "Yippee-ki-yay",
		"**Now** I have a *machine gun*.": "Now I have a machine gun.",
		"_***all three***_ and *_two_*":   "all three and two",
		"**_bold under_**":                "bold under",
		"Welcome to the _party_, pal.":    "Welcome to the party, pal.",
		"a lone * and a lone _":           "a lone * and a lone _",
		"5 * 3":                           "5 * 3",
		"plain":                           "plain",
	} {
		assert.Equal(t, want, StripEmphasis(in), in)
	}

	rs := EmphasisRules()
	require.Len(t, rs, 7)
	assert.Equal(t, Bold|Italic|Underline, rs[0].Style)
	assert.Equal(t, Underline, rs[len(rs)-1].Style)
}

func TestEmphasisKeptInElementText(t *testing.T) {
	s := NewFromString("INT. NAKATOMI - NIGHT\n\nHe *really* means it.")
	require.Len(t, s.Elements, 2)
	assert.Equal(t, "He *really* means it.", s.Elements[1].Text)
	assert.Contains(t, s.StringFromDocument(), "He *really* means it.")
}
