/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package paginate

// Column is the horizontal slot a fragment is rendered in.
type Column int

const (
	ColumnFull Column = iota
	ColumnLeft
	ColumnRight
)

func (c Column) String() string {
	switch c {
	case ColumnLeft:
		return "left"
	case ColumnRight:
		return "right"
	default:
		return "full"
	}
}

// Fragment is the part of one element rendered on a page. Start and End
// index the element's wrapped lines (see Paginator.Lines).
//
// Height is in lines and includes SpaceBefore, the "(MORE)" line when More
// is set and the cue line when Cue is set. For dual dialogue the page
// accounts for the taller column only, so the heights of a page's
// fragments may sum to more than Page.Used.
type Fragment struct {
	Element     int
	Start, End  int
	Height      int
	SpaceBefore int

	// Continued marks the second and later fragments of a split element.
	Continued bool
	// More is set on a dialogue fragment followed by "(MORE)".
	More bool
	// Cue is the character line printed above a continued dialogue
	// fragment, e.g. "MCCLANE (CONT'D)".
	Cue string

	Column Column
	// Hidden fragments belong to non-printing elements and have no height.
	Hidden bool
}

// Page is the ordered fragment list of one page. Used is the number of lines
// consumed.
type Page struct {
	Fragments []Fragment
	Used      int
}

// printable reports whether any fragment of p is rendered.
func (p Page) clone() Page {
	p.Fragments = append([]Fragment(nil), p.Fragments...)
	return p
}

func (p Page) printable() bool {
	for _, f := range p.Fragments {
		if !f.Hidden {
			return true
		}
	}
	return false
}

// Elements returns the distinct element indices on p in order.
func (p Page) Elements() []int {
	var out []int
	for _, f := range p.Fragments {
		if n := len(out); n > 0 && out[n-1] == f.Element {
			continue
		}
		out = append(out, f.Element)
	}
	return out
}
