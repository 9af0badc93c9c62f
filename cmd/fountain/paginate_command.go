/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"gofountain/internal/fountain"
	"gofountain/internal/layout"
	applog "gofountain/internal/log"
	"gofountain/internal/paginate"
)

// sceneGutter is the column count reserved left of the text for scene numbers
// in plain text output.
const sceneGutter = 6

type fragmentJSON struct {
	Element   int      `json:"element"`
	Kind      string   `json:"kind"`
	Start     int      `json:"start"`
	End       int      `json:"end"`
	Height    int      `json:"height"`
	Continued bool     `json:"continued,omitempty"`
	More      bool     `json:"more,omitempty"`
	Cue       string   `json:"cue,omitempty"`
	Column    string   `json:"column,omitempty"`
	Hidden    bool     `json:"hidden,omitempty"`
	Lines     []string `json:"lines,omitempty"`
}

type pageJSON struct {
	Number    int            `json:"number"`
	Used      int            `json:"used"`
	Fragments []fragmentJSON `json:"fragments"`
}

type paginateOptions struct {
	width, height float64
	measurer      string
	cache         bool
	text          bool
	json          bool
}

func newPaginateCommand(ctx *commandContext) *cobra.Command {
	var opts paginateOptions
	cmd := &cobra.Command{
		Use:   "paginate <file>",
		Short: "Break a script into pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("width") {
				opts.width = cfg.Page.Width
			}
			if !flags.Changed("height") {
				opts.height = cfg.Page.Height
			}
			if !flags.Changed("measurer") {
				opts.measurer = cfg.Measurer.Kind
			}
			if !flags.Changed("cache") {
				opts.cache = cfg.Cache.Enabled
			}
			return runPaginate(cmd, ctx, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&opts.width, "width", 0, "Page width in points (default from config)")
	f.Float64Var(&opts.height, "height", 0, "Page height in points (default from config)")
	f.StringVar(&opts.measurer, "measurer", "", "Text measurer: estimate, courier or face")
	f.BoolVar(&opts.cache, "cache", true, "Persist measurements in the script's index")
	f.BoolVar(&opts.text, "text", false, "Print the pages as plain text")
	f.BoolVar(&opts.json, "json", false, "Write JSON instead of a table")
	return cmd
}

func runPaginate(cmd *cobra.Command, ctx *commandContext, path string, opts paginateOptions) error {
	s, err := ctx.loadScript(path)
	if err != nil {
		return err
	}
	m, closeFn, err := ctx.measurer(opts.measurer, opts.cache, path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil {
			applog.WithComponent("cli").Warn("close measurement cache", slog.Any("err", cerr))
		}
	}()

	font := ctx.font()
	g := layout.DefaultGeometry().WithSize(opts.width, opts.height)
	g.LineHeight = font.Size

	p := paginate.New(s, paginate.WithMeasurer(m), paginate.WithFont(font))
	if err := p.PaginateGeometry(g); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.json:
		return writeJSON(cmd, pagesJSON(s, p))
	case opts.text:
		writePagesText(out, s, p, font)
		return nil
	}
	rows := make([][]string, 0, p.NumberOfPages())
	for i, pg := range p.Pages() {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(pg.Used),
			strconv.Itoa(len(pg.Elements())),
			truncate(firstLine(s, pg), 50),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Page", "Lines", "Elements", "Starts with"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
	))
	fmt.Fprintf(out, "%d pages, %d lines per page\n", p.NumberOfPages(), g.LinesPerPage())
	return nil
}

// firstLine is the text of the first printed fragment on pg.
func firstLine(s *fountain.Script, pg paginate.Page) string {
	for _, f := range pg.Fragments {
		if f.Hidden {
			continue
		}
		if f.Cue != "" {
			return f.Cue
		}
		text := s.Elements[f.Element].Text
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[:i]
		}
		return text
	}
	return ""
}

func pagesJSON(s *fountain.Script, p *paginate.Paginator) []pageJSON {
	pages := p.Pages()
	out := make([]pageJSON, 0, len(pages))
	for i, pg := range pages {
		pj := pageJSON{Number: i + 1, Used: pg.Used, Fragments: make([]fragmentJSON, 0, len(pg.Fragments))}
		for _, f := range pg.Fragments {
			fj := fragmentJSON{
				Element:   f.Element,
				Kind:      s.Elements[f.Element].Kind.String(),
				Start:     f.Start,
				End:       f.End,
				Height:    f.Height,
				Continued: f.Continued,
				More:      f.More,
				Cue:       f.Cue,
				Hidden:    f.Hidden,
			}
			if f.Column != paginate.ColumnFull {
				fj.Column = f.Column.String()
			}
			if !f.Hidden {
				fj.Lines = p.FragmentLines(f)
			}
			pj.Fragments = append(pj.Fragments, fj)
		}
		out = append(out, pj)
	}
	return out
}

// writePagesText renders the pages as monospaced text. Horizontal positions
// are converted to columns of the font's average advance; dual dialogue
// columns are printed one after the other.
func writePagesText(w io.Writer, s *fountain.Script, p *paginate.Paginator, font layout.Font) {
	table := layout.Default()
	g := p.Geometry()
	colWidth := font.Size * 0.6
	indent := func(e fountain.Element) string {
		n := int(math.Round((table.LeftMargin(e) - g.Left) / colWidth))
		return strings.Repeat(" ", max(n, 0))
	}
	textCols := int(math.Round((g.PageWidth - g.Left - g.Right) / colWidth))
	showNumbers := table.ShowSceneNumbers(s)
	column := func(x float64) int { return sceneGutter + int(math.Round((x-g.Left)/colWidth)) }
	leftX, rightX := table.SceneNumberX(g.PageWidth)
	numbers := sceneNumberColumns{left: max(column(leftX), 0), right: column(rightX)}

	for i, pg := range p.Pages() {
		if i > 0 {
			fmt.Fprintln(w, "\f")
			fmt.Fprintf(w, "%*s\n\n", sceneGutter+textCols, strconv.Itoa(i+1)+".")
		}
		for _, f := range pg.Fragments {
			if f.Hidden {
				continue
			}
			e := s.Elements[f.Element]
			for j := 0; j < f.SpaceBefore; j++ {
				fmt.Fprintln(w)
			}
			cue := fountain.Element{Kind: fountain.Character, Dual: e.Dual}
			if f.Cue != "" {
				fmt.Fprintf(w, "%*s%s%s\n", sceneGutter, "", indent(cue), f.Cue)
			}
			for j, ln := range fragmentBody(p, f) {
				if showNumbers && j == 0 && f.Start == 0 && e.Kind == fountain.SceneHeading && e.SceneNumber != "" {
					fmt.Fprintln(w, numbers.line(e.SceneNumber, indent(e)+ln))
					continue
				}
				fmt.Fprintf(w, "%*s%s%s\n", sceneGutter, "", indent(e), ln)
			}
			if f.More {
				fmt.Fprintf(w, "%*s%s%s\n", sceneGutter, "", indent(cue), "(MORE)")
			}
		}
	}
}

// sceneNumberColumns are the text columns scene numbers start at on both
// sides of a heading.
type sceneNumberColumns struct{ left, right int }

// line prints text after the gutter with the scene number before and after
// it. A heading reaching the right column is followed by a single space.
func (c sceneNumberColumns) line(number, text string) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", c.left))
	b.WriteString(number)
	n := c.left + utf8.RuneCountInString(number)
	b.WriteString(strings.Repeat(" ", max(sceneGutter-n, 1)))
	b.WriteString(text)
	n = max(n+1, sceneGutter) + utf8.RuneCountInString(text)
	b.WriteString(strings.Repeat(" ", max(c.right-n, 1)))
	b.WriteString(number)
	return b.String()
}

func fragmentBody(p *paginate.Paginator, f paginate.Fragment) []string {
	ls := p.Lines(f.Element)
	if f.Start < 0 || f.End > len(ls) || f.Start > f.End {
		return nil
	}
	return ls[f.Start:f.End]
}
