/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"gofountain/internal/layout"
)

const action = "McClane crawls through the air duct, lighter in one hand, gun in the other. Somewhere below, Hans is counting the seconds."

func monoProvider(t *testing.T) OTProvider {
	t.Helper()
	lib := NewFontLibrary()
	require.NoError(t, lib.Load("Go Mono", 400, false, gomono.TTF))
	return OTProvider{Lib: lib}
}

func TestFontLibrary_LoadAndFind(t *testing.T) {
	lib := NewFontLibrary()
	require.NoError(t, lib.Load("Go Mono", 400, false, gomono.TTF))
	assert.True(t, lib.Has("go mono"))
	assert.False(t, lib.Has("Courier Prime"))
	// weight and italic fall back to the loaded face
	assert.NotNil(t, lib.find(FontSpec{Family: "Go Mono", Weight: 700, Italic: true}))
	assert.Nil(t, lib.find(FontSpec{Family: "Courier Prime"}))
	assert.Error(t, lib.Load("broken", 400, false, []byte("not a font")))
}

func TestFaceMeasurer_LinesFitWidth(t *testing.T) {
	p := monoProvider(t)
	m := NewFaceMeasurer(p)
	f := layout.Font{Family: "Go Mono", Size: 12}
	lines, err := m.Wrap(action, f, 216)
	require.NoError(t, err)
	require.Greater(t, len(lines), 1)
	assert.Equal(t, strings.Fields(action), strings.Fields(strings.Join(lines, " ")))

	face, _ := p.Resolve(FontSpec{Family: "Go Mono", SizePt: 12, Weight: 400})
	d := &font.Drawer{Face: face}
	for _, ln := range lines {
		assert.LessOrEqual(t, advance(d, ln), float32(216), "line %q too wide", ln)
	}

	n, err := m.Lines(action, f, 216)
	require.NoError(t, err)
	assert.Equal(t, len(lines), n)

	// wider column never needs more lines
	wide, err := m.Lines(action, f, 432)
	require.NoError(t, err)
	assert.LessOrEqual(t, wide, n)
}

func TestFaceMeasurer_UnknownFamilyFallsBack(t *testing.T) {
	m := NewFaceMeasurer(monoProvider(t))
	n, err := m.Lines("Hello world from Go", layout.Font{Family: "Nope", Size: 12}, 50)
	require.NoError(t, err)
	// basicfont fallback wraps as in TestWordWrap_Naive
	assert.Equal(t, 3, n)
}

func TestFaceMeasurer_InvalidWidth(t *testing.T) {
	_, err := NewFaceMeasurer(nil).Lines("x", layout.Courier12, 0)
	assert.True(t, errors.Is(err, ErrInvalidWidth))
}

func TestCourierMeasurer_MatchesMonospaceEstimate(t *testing.T) {
	m := NewCourierMeasurer()
	for _, w := range []float64{432, 216, 180} {
		got, err := m.Wrap(action, layout.Courier12, w)
		require.NoError(t, err)
		want := layout.EstimateWrap(action, layout.Courier12, w)
		assert.Equal(t, want, got, "width %v", w)
	}
}

func TestCourierMeasurer_WrapKeepsText(t *testing.T) {
	m := NewCourierMeasurer()
	text := "Noël at Nakatomi Plaza. Café con leche for everyone on the thirtieth floor."
	lines, err := m.Wrap(text, layout.Courier12, 216)
	require.NoError(t, err)
	require.Greater(t, len(lines), 1)
	assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(lines, " ")), "runes outside ASCII survive the cp1252 round trip")
	for _, ln := range lines {
		assert.LessOrEqual(t, len([]rune(ln)), 30)
	}

	n, err := m.Lines(text, layout.Courier12, 216)
	require.NoError(t, err)
	assert.Equal(t, len(lines), n)

	_, err = m.Wrap(text, layout.Courier12, 0)
	assert.ErrorIs(t, err, ErrInvalidWidth)
}

func TestCourierMeasurer_Paragraphs(t *testing.T) {
	m := NewCourierMeasurer()
	n, err := m.Lines("", layout.Courier12, 432)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = m.Lines("BRICK\n\nSTEEL", layout.Courier12, 432)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// 60 Courier glyphs fill 432pt at 12pt exactly
	n, err = m.Lines(strings.Repeat("x", 60), layout.Courier12, 432)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = m.Lines(strings.Repeat("x", 61), layout.Courier12, 432)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// unknown families measure as Courier; runes outside cp1252 still count
	n, err = m.Lines("Ünïcödé ✓", layout.Font{Family: "Courier Prime", Size: 12}, 432)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = m.Lines("x", layout.Courier12, -1)
	assert.ErrorIs(t, err, ErrInvalidWidth)
}
