/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"fmt"
	"math"
)

// Geometry is the printable frame of a page in points.
type Geometry struct {
	PageWidth  float64
	PageHeight float64
	Top        float64
	Bottom     float64
	Left       float64
	Right      float64
	LineHeight float64
}

// DefaultGeometry is US Letter with one inch top, bottom and right margins,
// a 1.5 inch binding margin and 12pt lines.
func DefaultGeometry() Geometry {
	return Geometry{
		PageWidth:  8.5 * Inch,
		PageHeight: 11 * Inch,
		Top:        Inch,
		Bottom:     Inch,
		Left:       1.5 * Inch,
		Right:      Inch,
		LineHeight: 12,
	}
}

// WithSize returns g resized to width x height, keeping margins.
func (g Geometry) WithSize(width, height float64) Geometry {
	g.PageWidth = width
	g.PageHeight = height
	return g
}

// LinesPerPage is the number of whole text lines between the top and bottom
// margins.
func (g Geometry) LinesPerPage() int {
	if g.LineHeight <= 0 {
		return 0
	}
	return int(math.Floor((g.PageHeight - g.Top - g.Bottom) / g.LineHeight))
}

// Validate checks that the page can hold at least one line.
func (g Geometry) Validate() error {
	switch {
	case !(g.PageWidth > 0):
		return &ConfigurationError{Field: "page width", Value: g.PageWidth}
	case !(g.PageHeight > 0):
		return &ConfigurationError{Field: "page height", Value: g.PageHeight}
	case !(g.LineHeight > 0):
		return &ConfigurationError{Field: "line height", Value: g.LineHeight}
	case g.Top < 0:
		return &ConfigurationError{Field: "top margin", Value: g.Top}
	case g.Bottom < 0:
		return &ConfigurationError{Field: "bottom margin", Value: g.Bottom}
	case g.LinesPerPage() < 1:
		return &ConfigurationError{Field: "printable height", Value: g.PageHeight - g.Top - g.Bottom}
	}
	return nil
}

// ConfigurationError reports page geometry that cannot be laid out.
type ConfigurationError struct {
	Field string
	Value float64
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid page geometry: %s must be positive, got %g", e.Field, e.Value)
}
