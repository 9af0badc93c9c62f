/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layout holds the screenplay geometry: where each element kind sits
// on the page, how wide it may run and how much space precedes it. It also
// defines the text measurement capability the paginator depends on.
package layout

import "gofountain/internal/fountain"

// Inch in points.
const Inch = 72.0

// Rule is the geometry of one element kind. Horizontal values are points from
// the left page edge; SpaceBefore is in lines.
type Rule struct {
	LeftMargin  float64
	Width       float64
	SpaceBefore int

	// DualColumn marks kinds laid out in two columns for dual dialogue.
	// DualIndent is the offset from the column origin.
	DualColumn bool
	DualIndent float64
	DualWidth  float64

	Printable bool
}

// Table maps every element kind to its Rule. The zero Table is not useful;
// start from Default and derive variants with With.
type Table struct {
	rules [numKinds]Rule

	// DualOrigins are the left edges of the two dual-dialogue columns.
	DualOrigins [2]float64
	// SceneNumberInset is the distance of scene numbers from the page edges.
	SceneNumberInset float64
}

const numKinds = int(fountain.Comment) + 1

var defaultTable = func() Table {
	var t Table
	set := func(k fountain.Kind, r Rule) { t.rules[k] = r }

	set(fountain.SceneHeading, Rule{LeftMargin: 1.5 * Inch, Width: 6 * Inch, SpaceBefore: 2, Printable: true})
	set(fountain.Action, Rule{LeftMargin: 1.5 * Inch, Width: 6 * Inch, SpaceBefore: 1, Printable: true})
	set(fountain.Character, Rule{LeftMargin: 3.7 * Inch, Width: 3.3 * Inch, SpaceBefore: 1, Printable: true,
		DualColumn: true, DualIndent: 0.9 * Inch, DualWidth: 2 * Inch})
	set(fountain.Dialogue, Rule{LeftMargin: 2.5 * Inch, Width: 3.5 * Inch, Printable: true,
		DualColumn: true, DualIndent: 0.1 * Inch, DualWidth: 2.8 * Inch})
	set(fountain.Parenthetical, Rule{LeftMargin: 3.1 * Inch, Width: 2 * Inch, Printable: true,
		DualColumn: true, DualIndent: 0.4 * Inch, DualWidth: 2 * Inch})
	set(fountain.Transition, Rule{LeftMargin: 5.5 * Inch, Width: 2 * Inch, SpaceBefore: 1, Printable: true})
	set(fountain.CenteredText, Rule{LeftMargin: 1.5 * Inch, Width: 6 * Inch, SpaceBefore: 1, Printable: true})
	// non-printing kinds keep a width so hidden fragments can still be measured
	set(fountain.PageBreak, Rule{})
	set(fountain.Section, Rule{LeftMargin: 1.5 * Inch, Width: 6 * Inch})
	set(fountain.Synopsis, Rule{LeftMargin: 1.5 * Inch, Width: 6 * Inch})
	set(fountain.Comment, Rule{LeftMargin: 1.5 * Inch, Width: 6 * Inch})

	t.DualOrigins = [2]float64{1.5 * Inch, 4.6 * Inch}
	t.SceneNumberInset = 0.75 * Inch
	return t
}()

// Default returns the standard US Letter, Courier 12 screenplay table.
func Default() Table { return defaultTable }

// With returns a copy of t with the rule for k replaced.
func (t Table) With(k fountain.Kind, r Rule) Table {
	if k >= 0 && int(k) < len(t.rules) {
		t.rules[k] = r
	}
	return t
}

// For returns the rule of kind k.
func (t Table) For(k fountain.Kind) Rule {
	if k < 0 || int(k) >= len(t.rules) {
		return Rule{}
	}
	return t.rules[k]
}

// SpaceBefore is the blank lines preceding an element of kind k.
func (t Table) SpaceBefore(k fountain.Kind) int { return t.For(k).SpaceBefore }

// Width is the text width of e, using the column width for dual dialogue.
func (t Table) Width(e fountain.Element) float64 {
	r := t.For(e.Kind)
	if e.Dual != fountain.DualNone && r.DualColumn {
		return r.DualWidth
	}
	return r.Width
}

// LeftMargin is the x position of e's text.
func (t Table) LeftMargin(e fountain.Element) float64 {
	r := t.For(e.Kind)
	if r.DualColumn {
		switch e.Dual {
		case fountain.DualLeft:
			return t.DualOrigins[0] + r.DualIndent
		case fountain.DualRight:
			return t.DualOrigins[1] + r.DualIndent
		}
	}
	return r.LeftMargin
}

// SceneNumberX returns the x positions of the scene numbers printed at both
// ends of a scene heading line.
func (t Table) SceneNumberX(pageWidth float64) (left, right float64) {
	return t.SceneNumberInset, pageWidth - t.SceneNumberInset
}

// ShowSceneNumbers reports whether scene numbers are rendered for s.
func (t Table) ShowSceneNumbers(s *fountain.Script) bool {
	return s != nil && !s.SuppressSceneNumbers
}
