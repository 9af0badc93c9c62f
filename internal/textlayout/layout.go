/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Abstractions for text measurement and line breaking against real font
// metrics. Everything is deterministic for a fixed font and width so that
// pagination results are reproducible.

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string // logical family name
	SizePt float32
	Weight int // 100..900
	Italic bool
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// Span is a run of text with the same font/style.
type Span struct {
	Text string
	Font FontSpec
}

// Line is a single laid out line with width and ascent/descent.
type Line struct {
	Spans   []Span
	Width   float32
	Ascent  float32
	Descent float32
}

// Text returns the characters of the line.
func (l Line) Text() string {
	var sb strings.Builder
	for _, sp := range l.Spans {
		sb.WriteString(sp.Text)
	}
	return sb.String()
}

// TextBox is the result of laying out text into a box width.
type TextBox struct {
	Lines   []Line
	Width   float32
	Height  float32
	Metrics Metrics
}

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// Layouter performs line-breaking and measurement.
type Layouter interface {
	Layout(spans []Span, maxWidth float32) (TextBox, error)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
type BasicProvider struct{}

func (BasicProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	m := f.Metrics()
	return f, Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// WordWrapLayouter breaks lines on spaces and hard newlines; it does not
// perform shaping or hyphenation. A word wider than the box is broken between
// runes. maxWidth <= 0 disables wrapping.
type WordWrapLayouter struct{ Provider Provider }

func NewWordWrap(provider Provider) *WordWrapLayouter { return &WordWrapLayouter{Provider: provider} }

func (l *WordWrapLayouter) Layout(spans []Span, maxWidth float32) (TextBox, error) {
	if l.Provider == nil {
		l.Provider = BasicProvider{}
	}
	var first FontSpec
	if len(spans) > 0 {
		first = spans[0].Font
	}
	_, met := l.Provider.Resolve(first)
	cur := Line{Ascent: met.Ascent, Descent: met.Descent}
	box := TextBox{Metrics: met}
	// open is set while a paragraph has been started but not yet emitted
	open := true
	addLine := func() {
		box.Lines = append(box.Lines, cur)
		if cur.Width > box.Width {
			box.Width = cur.Width
		}
		box.Height += met.Ascent + met.Descent + met.LineGap
		cur = Line{Ascent: met.Ascent, Descent: met.Descent}
		open = false
	}
	wraps := maxWidth > 0
	space := false
	for _, sp := range spans {
		face, _ := l.Provider.Resolve(sp.Font)
		drawer := &font.Drawer{Face: face}
		for pi, para := range strings.Split(sp.Text, "\n") {
			if pi > 0 {
				addLine()
				open = true
				space = false
			}
			for wi, word := range strings.Split(para, " ") {
				if wi > 0 {
					space = true
				}
				if word == "" {
					continue
				}
				w := advance(drawer, word)
				if len(cur.Spans) > 0 {
					gap := float32(0)
					if space {
						gap = advance(drawer, " ")
					}
					if wraps && cur.Width+gap+w > maxWidth {
						addLine()
					} else if space {
						cur.Spans = append(cur.Spans, Span{Text: " ", Font: sp.Font})
						cur.Width += gap
					}
				}
				space = false
				for wraps && cur.Width+w > maxWidth && utf8.RuneCountInString(word) > 1 {
					head, rest := fitRunes(drawer, word, maxWidth-cur.Width)
					if head == "" {
						if len(cur.Spans) > 0 {
							addLine()
							continue
						}
						_, n := utf8.DecodeRuneInString(word)
						head, rest = word[:n], word[n:]
					}
					cur.Spans = append(cur.Spans, Span{Text: head, Font: sp.Font})
					cur.Width += advance(drawer, head)
					addLine()
					word = rest
					w = advance(drawer, word)
				}
				cur.Spans = append(cur.Spans, Span{Text: word, Font: sp.Font})
				cur.Width += w
			}
		}
	}
	// flush last line
	if len(cur.Spans) > 0 || open {
		addLine()
	}
	return box, nil
}

// fitRunes returns the longest prefix of word no wider than room.
func fitRunes(d *font.Drawer, word string, room float32) (string, string) {
	cut := 0
	for i, r := range word {
		n := i + utf8.RuneLen(r)
		if advance(d, word[:n]) > room {
			break
		}
		cut = n
	}
	return word[:cut], word[cut:]
}

func advance(d *font.Drawer, s string) float32 {
	return float32(d.MeasureString(s)) / 64 // fixed.Int26_6 to px
}

// Measure provides a quick way to measure text width/height without line-breaks.
func Measure(provider Provider, spans []Span) (w, h float32) {
	if provider == nil {
		provider = BasicProvider{}
	}
	_, met := provider.Resolve(FontSpec{})
	var width float32
	for _, sp := range spans {
		face, _ := provider.Resolve(sp.Font)
		d := &font.Drawer{Face: face}
		width += advance(d, sp.Text)
	}
	lineH := met.Ascent + met.Descent
	return width, lineH
}
