/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import "strings"

// Kind indicates the type of a screenplay element.
// The set is closed; switch statements over Kind are expected to be exhaustive.

type Kind int

const (
	SceneHeading Kind = iota
	Action
	Character
	Dialogue
	Parenthetical
	Transition
	CenteredText
	PageBreak
	Section
	Synopsis
	Comment
)

// Kinds lists every element kind in declaration order.
var Kinds = []Kind{
	SceneHeading, Action, Character, Dialogue, Parenthetical, Transition,
	CenteredText, PageBreak, Section, Synopsis, Comment,
}

func (k Kind) String() string {
	switch k {
	case SceneHeading:
		return "Scene Heading"
	case Action:
		return "Action"
	case Character:
		return "Character"
	case Dialogue:
		return "Dialogue"
	case Parenthetical:
		return "Parenthetical"
	case Transition:
		return "Transition"
	case CenteredText:
		return "Centered"
	case PageBreak:
		return "Page Break"
	case Section:
		return "Section Heading"
	case Synopsis:
		return "Synopsis"
	case Comment:
		return "Comment"
	default:
		return "Unknown"
	}
}

// InDialogueGroup reports whether elements of this kind belong to a
// Character+Dialogue group.
func (k Kind) InDialogueGroup() bool {
	return k == Character || k == Dialogue || k == Parenthetical
}

// Printable reports whether the kind is rendered on screenplay pages.
func (k Kind) Printable() bool {
	switch k {
	case Section, Synopsis, Comment, PageBreak:
		return false
	default:
		return true
	}
}

// DualSide links the two groups of a dual-dialogue pair.
type DualSide int

const (
	DualNone DualSide = iota
	DualLeft
	DualRight
)

func (d DualSide) String() string {
	switch d {
	case DualLeft:
		return "left"
	case DualRight:
		return "right"
	default:
		return "none"
	}
}

// Element is one classified screenplay element.
// Text never contains forcing characters. SceneNumber is only set on scene
// headings and Depth only on sections (1..3). Elements are values; the owning
// Script identifies them by index.
type Element struct {
	Kind        Kind
	Text        string
	SceneNumber string
	Depth       int
	Dual        DualSide
	Centered    bool
	Lyric       bool
}

// Equal compares the fields both parser strategies are required to agree on.
func (e Element) Equal(o Element) bool {
	return e.Kind == o.Kind && e.Text == o.Text && e.SceneNumber == o.SceneNumber && e.Dual == o.Dual
}

// Same compares every field.
func (e Element) Same(o Element) bool { return e == o }

func (e Element) String() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Dual != DualNone {
		b.WriteString(" [")
		b.WriteString(e.Dual.String())
		b.WriteString("]")
	}
	if e.SceneNumber != "" {
		b.WriteString(" #")
		b.WriteString(e.SceneNumber)
		b.WriteString("#")
	}
	b.WriteString(": ")
	b.WriteString(e.Text)
	return b.String()
}

// EqualElements reports whether two sequences are equal under Element.Equal.
func EqualElements(a, b []Element) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// TitleEntry is one title page directive. Values holds the value lines in order.
type TitleEntry struct {
	Key    string
	Values []string
}

// TitlePage is the ordered list of directives. Duplicate keys are kept as
// separate entries.
type TitlePage []TitleEntry

// Get returns the values of the first entry whose key matches case-insensitively.
func (tp TitlePage) Get(key string) ([]string, bool) {
	for _, e := range tp {
		if strings.EqualFold(e.Key, key) {
			return e.Values, true
		}
	}
	return nil, false
}

// Equal compares keys and values in order.
func (tp TitlePage) Equal(o TitlePage) bool {
	if len(tp) != len(o) {
		return false
	}
	for i := range tp {
		if tp[i].Key != o[i].Key || len(tp[i].Values) != len(o[i].Values) {
			return false
		}
		for j := range tp[i].Values {
			if tp[i].Values[j] != o[i].Values[j] {
				return false
			}
		}
	}
	return true
}
