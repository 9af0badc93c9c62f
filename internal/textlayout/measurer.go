/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jung-kurt/gofpdf"

	"gofountain/internal/layout"
)

// ErrInvalidWidth is returned for a non-positive wrapping width.
var ErrInvalidWidth = errors.New("wrap width must be positive")

// FaceMeasurer wraps text with the glyph advances of fonts resolved by a
// Provider. Sizes are points; faces are rasterized at 72 DPI so one pixel is
// one point.
type FaceMeasurer struct {
	layouter *WordWrapLayouter
	// Weight is requested for every face, 400 when zero.
	Weight int
}

func NewFaceMeasurer(p Provider) *FaceMeasurer {
	if p == nil {
		p = BasicProvider{}
	}
	return &FaceMeasurer{layouter: NewWordWrap(p)}
}

func (m *FaceMeasurer) Wrap(text string, f layout.Font, maxWidth float64) ([]string, error) {
	if maxWidth <= 0 {
		return nil, ErrInvalidWidth
	}
	w := m.Weight
	if w == 0 {
		w = 400
	}
	spec := FontSpec{Family: f.Family, SizePt: float32(f.Size), Weight: w}
	box, err := m.layouter.Layout([]Span{{Text: text, Font: spec}}, float32(maxWidth))
	if err != nil {
		return nil, err
	}
	out := make([]string, len(box.Lines))
	for i, ln := range box.Lines {
		out[i] = ln.Text()
	}
	return out, nil
}

func (m *FaceMeasurer) Lines(text string, f layout.Font, maxWidth float64) (int, error) {
	lines, err := m.Wrap(text, f, maxWidth)
	return len(lines), err
}

// CourierMeasurer measures with the PDF core font metrics the document is
// finally set in. Text is translated to cp1252 first; runes outside it are
// measured as '.'. Only the core families courier, helvetica (arial) and
// times are known, anything else is measured as Courier.
type CourierMeasurer struct {
	mu  sync.Mutex
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func NewCourierMeasurer() *CourierMeasurer { return &CourierMeasurer{} }

// reset starts a fresh document; gofpdf keeps the first error forever.
func (m *CourierMeasurer) reset() {
	m.pdf = gofpdf.New("P", "pt", "Letter", "")
	m.pdf.SetCellMargin(0)
	m.tr = m.pdf.UnicodeTranslatorFromDescriptor("")
}

// Wrap splits text with gofpdf's SplitLines at the core font widths. Each
// hard line break starts a paragraph of at least one line.
func (m *CourierMeasurer) Wrap(text string, f layout.Font, maxWidth float64) ([]string, error) {
	if maxWidth <= 0 {
		return nil, ErrInvalidWidth
	}
	size := f.Size
	if size <= 0 {
		size = layout.Courier12.Size
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pdf == nil || m.pdf.Err() {
		m.reset()
	}
	m.pdf.SetFont(coreFamily(f.Family), "", size)
	if err := m.pdf.Error(); err != nil {
		m.pdf = nil
		return nil, fmt.Errorf("set font: %w", err)
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		runes := []rune(strings.ReplaceAll(para, "\r", ""))
		enc := []byte(m.tr(string(runes)))
		split := m.pdf.SplitLines(enc, maxWidth)
		if len(split) == 0 {
			out = append(out, "")
			continue
		}
		out = append(out, decodeLines(runes, enc, split)...)
	}
	return out, nil
}

func (m *CourierMeasurer) Lines(text string, f layout.Font, maxWidth float64) (int, error) {
	lines, err := m.Wrap(text, f, maxWidth)
	return len(lines), err
}

// decodeLines maps the cp1252 lines split from enc back onto the runes they
// were translated from. The translator writes one byte per rune, so byte
// offsets in enc are rune offsets in runes.
func decodeLines(runes []rune, enc []byte, split [][]byte) []string {
	out := make([]string, len(split))
	cur := 0
	for i, ln := range split {
		s := string(ln)
		if off := bytes.Index(enc[cur:], ln); len(enc) == len(runes) && off >= 0 {
			off += cur
			s = string(runes[off : off+len(ln)])
			cur = off + len(ln)
		}
		s = strings.TrimRight(s, " ")
		if i > 0 {
			s = strings.TrimLeft(s, " ")
		}
		out[i] = s
	}
	return out
}

func coreFamily(family string) string {
	switch f := strings.ToLower(strings.TrimSpace(family)); f {
	case "courier", "helvetica", "arial", "times":
		return f
	default:
		return "courier"
	}
}
