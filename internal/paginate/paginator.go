/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package paginate lays the elements of a Script out into screenplay pages.
//
// A pagination run is a single pass over the elements that tracks the lines
// left on the current page. Dialogue split across pages is annotated with
// "(MORE)" and "(CONT'D)", dual dialogue is never split, cues are never left
// alone at the bottom of a page and scene headings stay with the first line
// of what follows them. Runs are all-or-nothing: the page list is replaced
// only when a run succeeds.
package paginate

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gofountain/internal/fountain"
	"gofountain/internal/layout"
	applog "gofountain/internal/log"
)

// ErrPageIndex is returned by PageAtIndex for an index outside the page list.
var ErrPageIndex = errors.New("page index out of range")

const (
	moreMarker  = "(MORE)"
	contdMarker = "(CONT'D)"
)

// Paginator lays out one Script. Pages are rebuilt from scratch by every call
// to one of the Paginate methods.
type Paginator struct {
	script   *fountain.Script
	measurer layout.Measurer
	table    layout.Table
	font     layout.Font
	logger   *slog.Logger

	geometry layout.Geometry
	pages    []Page
	lines    [][]string
}

// Option configures a Paginator.
type Option func(*Paginator)

// WithMeasurer sets the text measurement capability. The default is
// layout.Monospace.
func WithMeasurer(m layout.Measurer) Option {
	return func(p *Paginator) {
		if m != nil {
			p.measurer = m
		}
	}
}

// WithTable replaces the layout rule table.
func WithTable(t layout.Table) Option { return func(p *Paginator) { p.table = t } }

// WithFont sets the font text is measured in.
func WithFont(f layout.Font) Option { return func(p *Paginator) { p.font = f } }

func WithLogger(l *slog.Logger) Option { return func(p *Paginator) { p.logger = l } }

// New returns a Paginator for s. No pages exist until Paginate is called.
func New(s *fountain.Script, opts ...Option) *Paginator {
	p := &Paginator{
		script:   s,
		measurer: layout.Monospace{},
		table:    layout.Default(),
		font:     layout.Courier12,
	}
	for _, o := range opts {
		o(p)
	}
	if p.logger == nil {
		p.logger = applog.WithComponent("paginate")
	}
	return p
}

// Paginate lays the script out on US Letter pages.
func (p *Paginator) Paginate() error { return p.PaginateGeometry(layout.DefaultGeometry()) }

// PaginateForSize lays the script out on pages of width x height points with
// the default margins and line height.
func (p *Paginator) PaginateForSize(width, height float64) error {
	return p.PaginateGeometry(layout.DefaultGeometry().WithSize(width, height))
}

// PaginateGeometry lays the script out on pages of geometry g. An invalid
// geometry returns a *layout.ConfigurationError before any layout work and
// leaves the Paginator without pages.
func (p *Paginator) PaginateGeometry(g layout.Geometry) error {
	if err := g.Validate(); err != nil {
		p.pages, p.lines = nil, nil
		return err
	}
	var elems []fountain.Element
	if p.script != nil {
		elems = p.script.Elements
	}
	r := &run{
		elems:   elems,
		table:   p.table,
		lines:   p.measure(elems),
		perPage: g.LinesPerPage(),
	}
	r.flow()

	p.geometry, p.pages, p.lines = g, r.pages, r.lines
	applog.WithOperation(p.logger, "paginate").Debug("paginated",
		slog.Int("elements", len(elems)),
		slog.Int("pages", len(r.pages)),
		slog.Int("lines_per_page", r.perPage))
	return nil
}

// measure sizes every printable element at its layout width. The height is
// the measurer's line count; a failing measurer is replaced by the monospace
// estimate for that element. Emphasis markers are not printed and are
// removed before measuring.
func (p *Paginator) measure(elems []fountain.Element) [][]string {
	out := make([][]string, len(elems))
	for i, e := range elems {
		if !p.table.For(e.Kind).Printable {
			continue
		}
		ls, err := layout.Measure(p.measurer, fountain.StripEmphasis(e.Text), p.font, p.table.Width(e))
		if err != nil {
			p.logger.Debug("measurement failed, using estimate",
				slog.Int("element", i), slog.String("kind", e.Kind.String()), slog.Any("err", err))
		}
		out[i] = ls
	}
	return out
}

// Geometry is the page geometry of the last successful run.
func (p *Paginator) Geometry() layout.Geometry { return p.geometry }

func (p *Paginator) NumberOfPages() int { return len(p.pages) }

// PageAtIndex returns page i, counting from zero.
func (p *Paginator) PageAtIndex(i int) (Page, error) {
	if i < 0 || i >= len(p.pages) {
		return Page{}, fmt.Errorf("%w: %d of %d", ErrPageIndex, i, len(p.pages))
	}
	return p.pages[i].clone(), nil
}

// Pages returns a copy of the page list. Changing it does not affect the
// Paginator.
func (p *Paginator) Pages() []Page {
	if p.pages == nil {
		return nil
	}
	out := make([]Page, len(p.pages))
	for i, pg := range p.pages {
		out[i] = pg.clone()
	}
	return out
}

// Lines returns the wrapped lines of element i. Non-printing elements have
// none.
func (p *Paginator) Lines(i int) []string {
	if i < 0 || i >= len(p.lines) {
		return nil
	}
	return p.lines[i]
}

// FragmentText is the element text rendered by f without annotations.
func (p *Paginator) FragmentText(f Fragment) string {
	return strings.Join(p.fragmentLines(f), "\n")
}

// FragmentLines is the full rendering of f: the continuation cue, the
// element lines and the "(MORE)" marker.
func (p *Paginator) FragmentLines(f Fragment) []string {
	var out []string
	if f.Cue != "" {
		out = append(out, f.Cue)
	}
	out = append(out, p.fragmentLines(f)...)
	if f.More {
		out = append(out, moreMarker)
	}
	return out
}

func (p *Paginator) fragmentLines(f Fragment) []string {
	ls := p.Lines(f.Element)
	if f.Start < 0 || f.End > len(ls) || f.Start > f.End {
		return nil
	}
	return ls[f.Start:f.End]
}

// run is the state of one pagination pass.
type run struct {
	elems   []fountain.Element
	table   layout.Table
	lines   [][]string
	perPage int

	pages []Page
	cur   Page
}

func (r *run) flow() {
	for i := 0; i < len(r.elems); {
		e := r.elems[i]
		switch {
		case e.Kind == fountain.PageBreak:
			r.newPage()
			i++
		case !r.table.For(e.Kind).Printable:
			r.cur.Fragments = append(r.cur.Fragments, Fragment{Element: i, Hidden: true})
			i++
		case e.Kind.InDialogueGroup():
			i = r.dialogue(i)
		case e.Kind == fountain.SceneHeading:
			r.sceneHeading(i)
			i++
		case e.Kind == fountain.Action:
			r.action(i)
			i++
		default:
			r.whole(i)
			i++
		}
	}
	r.finish()
}

func (r *run) room() int { return r.perPage - r.cur.Used }

// atTop reports whether nothing printable is on the current page yet.
func (r *run) atTop() bool { return !r.cur.printable() }

// spaceBefore is suppressed at the top of a page.
func (r *run) spaceBefore(k fountain.Kind) int {
	if r.atTop() {
		return 0
	}
	return r.table.SpaceBefore(k)
}

func (r *run) add(f Fragment) {
	r.cur.Fragments = append(r.cur.Fragments, f)
	r.cur.Used += f.Height
}

func (r *run) newPage() {
	r.pages = append(r.pages, r.cur)
	r.cur = Page{}
}

// finish closes the last page. Hidden fragments trailing the last printed
// page are kept on it rather than on a blank page.
func (r *run) finish() {
	if len(r.cur.Fragments) == 0 {
		return
	}
	if !r.cur.printable() && len(r.pages) > 0 {
		last := &r.pages[len(r.pages)-1]
		last.Fragments = append(last.Fragments, r.cur.Fragments...)
		return
	}
	r.pages = append(r.pages, r.cur)
}

// height is the line count of elements [a, b).
func (r *run) height(a, b int) int {
	n := 0
	for k := a; k < b; k++ {
		n += len(r.lines[k])
	}
	return n
}

// whole places element i in one piece, on a new page if it does not fit.
func (r *run) whole(i int) {
	k := r.elems[i].Kind
	sb := r.spaceBefore(k)
	n := len(r.lines[i])
	if !r.atTop() && sb+n > r.room() {
		r.newPage()
		sb = 0
	}
	r.add(Fragment{Element: i, End: n, Height: sb + n, SpaceBefore: sb})
}

// sceneHeading is placed whole and moves to a new page unless the first
// line of the next printable element fits below it.
func (r *run) sceneHeading(i int) {
	sb := r.spaceBefore(fountain.SceneHeading)
	n := len(r.lines[i])
	if !r.atTop() && sb+n+r.follow(i+1) > r.room() {
		r.newPage()
		sb = 0
	}
	r.add(Fragment{Element: i, End: n, Height: sb + n, SpaceBefore: sb})
}

// follow is the number of lines the printable element at or after j needs
// to start on the current page.
func (r *run) follow(j int) int {
	for ; j < len(r.elems); j++ {
		e := r.elems[j]
		if e.Kind == fountain.PageBreak {
			return 0
		}
		if !r.table.For(e.Kind).Printable {
			continue
		}
		sb := r.table.SpaceBefore(e.Kind)
		switch {
		case e.Kind == fountain.Action:
			return sb + 1
		case e.Kind.InDialogueGroup():
			end := r.groupEnd(j)
			if right, ok := r.dualEnd(j, end); ok {
				return sb + max(r.height(j, end), r.height(end, right))
			}
			return sb + r.lead(j, end)
		default:
			return sb + len(r.lines[j])
		}
	}
	return 0
}

// action fills the current page and continues on the next one without
// annotations.
func (r *run) action(i int) {
	n := len(r.lines[i])
	for from := 0; from < n; {
		sb := 0
		if from == 0 {
			sb = r.spaceBefore(fountain.Action)
		}
		room := r.room() - sb
		to := n
		if n-from > room {
			if room < 1 {
				r.newPage()
				continue
			}
			to = from + room
		}
		r.add(Fragment{Element: i, Start: from, End: to, Height: sb + to - from, SpaceBefore: sb, Continued: from > 0})
		from = to
		if from < n {
			r.newPage()
		}
	}
}

// groupEnd returns the index after the dialogue and parentheticals that
// follow i.
func (r *run) groupEnd(i int) int {
	j := i + 1
	for j < len(r.elems) && (r.elems[j].Kind == fountain.Dialogue || r.elems[j].Kind == fountain.Parenthetical) {
		j++
	}
	return j
}

// dualEnd reports whether the group [i, end) is the left side of a dual
// dialogue pair and returns the end of the right side.
func (r *run) dualEnd(i, end int) (int, bool) {
	if r.elems[i].Kind != fountain.Character || r.elems[i].Dual != fountain.DualLeft {
		return 0, false
	}
	if end >= len(r.elems) || r.elems[end].Kind != fountain.Character || r.elems[end].Dual != fountain.DualRight {
		return 0, false
	}
	return r.groupEnd(end), true
}

// lead is the smallest part of group [i, end) that may start a page bottom:
// the cue, the first dialogue line or parenthetical and a "(MORE)" line.
func (r *run) lead(i, end int) int {
	total := r.height(i, end)
	if r.elems[i].Kind != fountain.Character || i+1 == end {
		return total
	}
	first := len(r.lines[i+1])
	if r.elems[i+1].Kind == fountain.Dialogue {
		first = 1
	}
	return min(len(r.lines[i])+first+1, total)
}

func (r *run) dialogue(i int) int {
	end := r.groupEnd(i)
	if right, ok := r.dualEnd(i, end); ok {
		r.dual(i, end, right)
		return right
	}
	r.group(i, end)
	return end
}

// dual places the pair [a, b) + [b, c) side by side. The taller column is
// the height of the unit, which is never split.
func (r *run) dual(a, b, c int) {
	h := max(r.height(a, b), r.height(b, c))
	sb := r.spaceBefore(fountain.Character)
	if !r.atTop() && sb+h > r.room() {
		r.newPage()
		sb = 0
	}
	for k := a; k < c; k++ {
		n := len(r.lines[k])
		f := Fragment{Element: k, End: n, Height: n, Column: ColumnLeft}
		if k >= b {
			f.Column = ColumnRight
		}
		if k == a || k == b {
			f.SpaceBefore = sb
			f.Height += sb
		}
		r.cur.Fragments = append(r.cur.Fragments, f)
	}
	r.cur.Used += sb + h
}

// group places one cue with its dialogue and parentheticals. Dialogue is
// split at the last line that fits, leaving room for "(MORE)"; the rest
// continues under a "(CONT'D)" cue. A parenthetical that does not fit moves
// to the next page and the fragment before it gets the "(MORE)".
func (r *run) group(s, end int) {
	e := r.elems[s]
	sb := r.spaceBefore(e.Kind)
	if !r.atTop() && sb+r.lead(s, end) > r.room() {
		r.newPage()
		sb = 0
	}
	col := column(e.Dual)
	// fresh: the page was started for this group and holds none of its
	// parts yet, so the next part is placed even if it overflows.
	fresh := r.atTop()
	name := ""
	first := s
	if e.Kind == fountain.Character {
		name = e.Text
		n := len(r.lines[s])
		r.add(Fragment{Element: s, End: n, Height: sb + n, SpaceBefore: sb, Column: col})
		sb = 0
		first = s + 1
	}

	contd, placed := false, 0
	j, from := first, 0
	place := func(to int, more bool) {
		f := Fragment{Element: j, Start: from, End: to, Height: sb + to - from, SpaceBefore: sb,
			Continued: from > 0, More: more, Column: col}
		if more {
			f.Height++
		}
		if contd {
			f.Cue = continuedCue(name)
			f.Height++
		}
		r.add(f)
		sb, contd = 0, false
		placed++
	}
	brk := func(cue bool) {
		r.newPage()
		contd, fresh, placed = cue && name != "", true, 0
	}

	for j < end {
		total := len(r.lines[j])
		n := total - from
		room := r.room() - sb
		if contd {
			room--
		}
		rest := n + r.height(j+1, end)
		switch {
		case rest <= room || n+1 <= room:
			place(total, false)
			j, from = j+1, 0
		case r.elems[j].Kind == fountain.Dialogue && room-1 >= 1:
			k := room - 1
			place(from+k, true)
			from += k
			brk(true)
		case fresh && placed == 0:
			// nothing fits even on a page of its own
			if r.elems[j].Kind == fountain.Dialogue && n > 1 {
				place(from+1, true)
				from++
				brk(true)
				continue
			}
			place(total, false)
			j, from = j+1, 0
		default:
			if placed > 0 {
				r.markMore()
			}
			brk(placed > 0)
		}
	}
}

// markMore annotates the last fragment of the current page with "(MORE)".
func (r *run) markMore() {
	f := &r.cur.Fragments[len(r.cur.Fragments)-1]
	f.More = true
	f.Height++
	r.cur.Used++
}

func column(d fountain.DualSide) Column {
	switch d {
	case fountain.DualLeft:
		return ColumnLeft
	case fountain.DualRight:
		return ColumnRight
	default:
		return ColumnFull
	}
}

// continuedCue appends "(CONT'D)" unless the cue already carries it.
func continuedCue(name string) string {
	if strings.HasSuffix(strings.ToUpper(strings.TrimSpace(name)), contdMarker) {
		return name
	}
	return name + " " + contdMarker
}
