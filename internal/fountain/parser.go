/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import (
	"fmt"
	"strings"
)

// Parser classifies Fountain text into a title page and a body element sequence.
// Parsing is total: every input yields a result.
type Parser interface {
	Parse(text string) (TitlePage, []Element)
}

// ParserType selects a parsing strategy. Both strategies produce the same
// element sequence for the same input.
type ParserType int

const (
	// ParserFast is the single-pass line scanner.
	ParserFast ParserType = iota
	// ParserRegexes matches every line against the ordered rule table.
	ParserRegexes
)

func (t ParserType) String() string {
	switch t {
	case ParserRegexes:
		return "regex"
	default:
		return "fast"
	}
}

// ParseParserType reads a strategy name as used in configuration files.
func ParseParserType(s string) (ParserType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fast", "scan":
		return ParserFast, nil
	case "regex", "regexes", "pattern":
		return ParserRegexes, nil
	default:
		return ParserFast, fmt.Errorf("unknown parser type %q", s)
	}
}

// NewParser returns the strategy for t.
func NewParser(t ParserType) Parser {
	if t == ParserRegexes {
		return PatternParser{}
	}
	return ScanParser{}
}

// builder assembles classified lines into elements. It merges consecutive
// action lines and dialogue lines of a block and links dual-dialogue groups.
type builder struct {
	elements   []Element
	openAction bool
	inDialogue bool
	side       DualSide
}

// blank ends the current block.
func (b *builder) blank() {
	b.openAction = false
	b.inDialogue = false
	b.side = DualNone
}

func (b *builder) context() Context {
	if b.inDialogue {
		return CtxDialogue
	}
	return 0
}

func (b *builder) push(c lineClass) {
	n := len(b.elements)
	switch c.kind {
	case Action:
		if b.openAction {
			b.elements[n-1].Text += "\n" + c.text
			return
		}
		b.elements = append(b.elements, Element{Kind: Action, Text: c.text})
		b.openAction = true
		return
	case Character:
		side := DualNone
		if c.dual && b.pairWithPrevious() {
			side = DualRight
		}
		b.elements = append(b.elements, Element{Kind: Character, Text: c.text, Dual: side})
		b.inDialogue = true
		b.side = side
	case Dialogue:
		if n > 0 && b.elements[n-1].Kind == Dialogue {
			b.elements[n-1].Text += "\n" + c.text
			return
		}
		b.elements = append(b.elements, Element{Kind: Dialogue, Text: c.text, Dual: b.side})
	case Parenthetical:
		b.elements = append(b.elements, Element{Kind: Parenthetical, Text: c.text, Dual: b.side})
	case SceneHeading:
		b.elements = append(b.elements, Element{Kind: SceneHeading, Text: c.text, SceneNumber: c.scene})
	case Section:
		b.elements = append(b.elements, Element{Kind: Section, Text: c.text, Depth: c.depth})
	case CenteredText:
		b.elements = append(b.elements, Element{Kind: CenteredText, Text: c.text, Centered: true, Lyric: c.lyric})
	case Transition, PageBreak, Synopsis, Comment:
		b.elements = append(b.elements, Element{Kind: c.kind, Text: c.text})
	}
	b.openAction = false
}

// pairWithPrevious marks the group that ends the sequence as the left side of
// a dual-dialogue pair. It reports false when there is no unpaired group.
func (b *builder) pairWithPrevious() bool {
	i := len(b.elements) - 1
	for i >= 0 && (b.elements[i].Kind == Dialogue || b.elements[i].Kind == Parenthetical) {
		i--
	}
	if i < 0 || i == len(b.elements)-1 {
		return false
	}
	if cue := b.elements[i]; cue.Kind != Character || cue.Dual != DualNone {
		return false
	}
	for j := i; j < len(b.elements); j++ {
		b.elements[j].Dual = DualLeft
	}
	return true
}

func isBlank(line string) bool { return strings.TrimSpace(line) == "" }
