/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"errors"
	"strings"
	"sync"
	"unicode/utf8"
)

// Font names the face text is measured in. Size is in points.
type Font struct {
	Family string
	Size   float64
}

// Courier12 is the standard screenplay face.
var Courier12 = Font{Family: "Courier", Size: 12}

// Measurer returns how many lines text occupies when wrapped to maxWidth
// points. Implementations must be deterministic for fixed inputs.
type Measurer interface {
	Lines(text string, font Font, maxWidth float64) (int, error)
}

// Wrapper is implemented by measurers that can also return the wrapped lines.
type Wrapper interface {
	Wrap(text string, font Font, maxWidth float64) ([]string, error)
}

// MeasurerFunc adapts a function to Measurer.
type MeasurerFunc func(text string, font Font, maxWidth float64) (int, error)

func (f MeasurerFunc) Lines(text string, font Font, maxWidth float64) (int, error) {
	return f(text, font, maxWidth)
}

// ErrNoMeasurer is returned by Measure without a measurer.
var ErrNoMeasurer = errors.New("no measurer")

// monospaceAdvance is the advance width of a monospaced glyph relative to the
// font size, as for Courier.
const monospaceAdvance = 0.6

// EstimateWrap wraps text assuming a monospaced face. It never fails and is
// the fallback when a measurer errors.
func EstimateWrap(text string, font Font, maxWidth float64) []string {
	size := font.Size
	if size <= 0 {
		size = Courier12.Size
	}
	perLine := int(maxWidth/(size*monospaceAdvance) + 1e-9)
	if perLine < 1 {
		perLine = 1
	}
	fits := func(s string) bool { return utf8.RuneCountInString(s) <= perLine }
	lines, _ := greedyWrap(text, func(s string) (bool, error) { return fits(s), nil })
	return lines
}

// Estimate is the line count of EstimateWrap.
func Estimate(text string, font Font, maxWidth float64) int {
	return len(EstimateWrap(text, font, maxWidth))
}

// Monospace measures with the fixed-advance estimate. It is the measurer used
// when none is configured.
type Monospace struct{}

func (Monospace) Lines(text string, font Font, maxWidth float64) (int, error) {
	return Estimate(text, font, maxWidth), nil
}

func (Monospace) Wrap(text string, font Font, maxWidth float64) ([]string, error) {
	return EstimateWrap(text, font, maxWidth), nil
}

// Measure returns the lines text occupies at maxWidth. The count is the
// measurer's Lines answer; a Wrapper only supplies the texts, which are
// padded with blank lines or merged into the last line to match the count.
// A failing measurer yields EstimateWrap together with the error.
func Measure(m Measurer, text string, font Font, maxWidth float64) ([]string, error) {
	if m == nil {
		return EstimateWrap(text, font, maxWidth), ErrNoMeasurer
	}
	n, err := m.Lines(text, font, maxWidth)
	if err != nil {
		return EstimateWrap(text, font, maxWidth), err
	}
	if n <= 0 {
		return EstimateWrap(text, font, maxWidth), nil
	}
	var lines []string
	if w, ok := m.(Wrapper); ok {
		if lines, err = w.Wrap(text, font, maxWidth); err != nil {
			lines = nil
		}
	}
	if len(lines) == 0 {
		lines = EstimateWrap(text, font, maxWidth)
	}
	return fitLines(lines, n), nil
}

func fitLines(lines []string, n int) []string {
	if len(lines) > n {
		out := append([]string(nil), lines[:n-1]...)
		return append(out, strings.Join(lines[n-1:], " "))
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return lines
}

// HeightForString is the height of text in points: the line count Measure
// settles on times lineHeight.
func HeightForString(m Measurer, text string, font Font, maxWidth, lineHeight float64) float64 {
	lines, _ := Measure(m, text, font, maxWidth)
	return float64(len(lines)) * lineHeight
}

// greedyWrap fills lines word by word. Hard line breaks are kept, an empty
// paragraph is one empty line and a word wider than a line is broken by runes.
func greedyWrap(text string, fits func(string) (bool, error)) ([]string, error) {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		cur := ""
		for _, w := range words {
			cand := w
			if cur != "" {
				cand = cur + " " + w
			}
			ok, err := fits(cand)
			if err != nil {
				return nil, err
			}
			if ok {
				cur = cand
				continue
			}
			if cur != "" {
				out = append(out, cur)
			}
			cur = w
			for {
				ok, err := fits(cur)
				if err != nil {
					return nil, err
				}
				if ok {
					break
				}
				head, rest, err := splitRunes(cur, fits)
				if err != nil {
					return nil, err
				}
				if rest == "" {
					// a single rune wider than the line
					break
				}
				out = append(out, head)
				cur = rest
			}
		}
		out = append(out, cur)
	}
	return out, nil
}

// splitRunes returns the longest prefix of s (at least one rune) that fits.
func splitRunes(s string, fits func(string) (bool, error)) (string, string, error) {
	_, size := utf8.DecodeRuneInString(s)
	cut := size
	for i := size; i < len(s); {
		_, n := utf8.DecodeRuneInString(s[i:])
		ok, err := fits(s[:i+n])
		if err != nil {
			return "", "", err
		}
		if !ok {
			break
		}
		i += n
		cut = i
	}
	return s[:cut], s[cut:], nil
}

// Cache memoizes a measurer by (text, font, width). It is safe for concurrent
// use when the wrapped measurer is.
type Cache struct {
	m Measurer

	mu    sync.Mutex
	lines map[cacheKey]int
	wraps map[cacheKey][]string
	hits  int
}

type cacheKey struct {
	text  string
	font  Font
	width float64
}

// Cached wraps m with an in-memory cache.
func Cached(m Measurer) *Cache {
	return &Cache{m: m, lines: map[cacheKey]int{}, wraps: map[cacheKey][]string{}}
}

func (c *Cache) Lines(text string, font Font, maxWidth float64) (int, error) {
	k := cacheKey{text, font, maxWidth}
	c.mu.Lock()
	if n, ok := c.lines[k]; ok {
		c.hits++
		c.mu.Unlock()
		return n, nil
	}
	c.mu.Unlock()
	n, err := c.m.Lines(text, font, maxWidth)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	c.lines[k] = n
	c.mu.Unlock()
	return n, nil
}

// Wrap asks the wrapped measurer when it is a Wrapper and returns the
// monospace estimate otherwise; Measure fits either to the cached count.
func (c *Cache) Wrap(text string, font Font, maxWidth float64) ([]string, error) {
	k := cacheKey{text, font, maxWidth}
	c.mu.Lock()
	if ls, ok := c.wraps[k]; ok {
		c.hits++
		c.mu.Unlock()
		return append([]string(nil), ls...), nil
	}
	c.mu.Unlock()
	ls := EstimateWrap(text, font, maxWidth)
	if w, ok := c.m.(Wrapper); ok {
		var err error
		if ls, err = w.Wrap(text, font, maxWidth); err != nil {
			return nil, err
		}
	}
	c.mu.Lock()
	c.wraps[k] = ls
	c.mu.Unlock()
	return append([]string(nil), ls...), nil
}

// Hits reports how many lookups were answered from the cache.
func (c *Cache) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}
