/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import (
	"sort"
	"strings"
)

const (
	boneyardOpen  = "/*"
	boneyardClose = "*/"
	noteOpen      = "[["
	noteClose     = "]]"

	// cut marks removed text until emptied lines are dropped.
	cut = '\x00'
)

// StripComments removes boneyard blocks and notes from normalized text.
// Delimiters pair up with nesting; an unbalanced delimiter stays literal text.
// A note that sits alone on a line between blank lines survives so the
// classifier can turn it into a Comment element. Lines that only held removed
// text are dropped entirely so they do not split a block.
func StripComments(text string) string {
	if strings.Contains(text, boneyardOpen) {
		text = dropEmptied(cutRanges(text, pairRanges(text, boneyardOpen, boneyardClose)))
	}
	if strings.Contains(text, noteOpen) {
		var remove [][2]int
		for _, r := range pairRanges(text, noteOpen, noteClose) {
			if !standaloneNote(text, r) {
				remove = append(remove, r)
			}
		}
		text = dropEmptied(cutRanges(text, remove))
	}
	return text
}

// pairRanges matches open/close delimiters like brackets and returns the
// outermost closed ranges as [start, end) byte offsets. A closed range inside
// an unclosed one is still outermost among the closed ranges.
func pairRanges(s, open, closer string) [][2]int {
	var stack []int
	var closed [][2]int
	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], open):
			stack = append(stack, i)
			i += len(open)
		case strings.HasPrefix(s[i:], closer):
			if n := len(stack); n > 0 {
				closed = append(closed, [2]int{stack[n-1], i + len(closer)})
				stack = stack[:n-1]
			}
			i += len(closer)
		default:
			i++
		}
	}
	if len(closed) == 0 {
		return nil
	}
	sort.Slice(closed, func(a, b int) bool {
		if closed[a][0] != closed[b][0] {
			return closed[a][0] < closed[b][0]
		}
		return closed[a][1] > closed[b][1]
	})
	out := closed[:1]
	for _, r := range closed[1:] {
		if last := out[len(out)-1]; r[0] >= last[1] {
			out = append(out, r)
		}
	}
	return out
}

// standaloneNote reports whether the note range is the only content of its
// line and that line has blank (or no) neighbours.
func standaloneNote(s string, r [2]int) bool {
	if strings.IndexByte(s[r[0]:r[1]], '\n') >= 0 {
		return false
	}
	lineStart := strings.LastIndexByte(s[:r[0]], '\n') + 1
	lineEnd := len(s)
	if i := strings.IndexByte(s[r[1]:], '\n'); i >= 0 {
		lineEnd = r[1] + i
	}
	if strings.TrimSpace(s[lineStart:r[0]]) != "" || strings.TrimSpace(s[r[1]:lineEnd]) != "" {
		return false
	}
	if lineStart > 0 {
		prevStart := strings.LastIndexByte(s[:lineStart-1], '\n') + 1
		if strings.TrimSpace(s[prevStart:lineStart-1]) != "" {
			return false
		}
	}
	if lineEnd < len(s) {
		rest := s[lineEnd+1:]
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			rest = rest[:i]
		}
		if strings.TrimSpace(rest) != "" {
			return false
		}
	}
	return true
}

// cutRanges replaces each range with a single cut marker.
func cutRanges(s string, ranges [][2]int) string {
	if len(ranges) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	prev := 0
	for _, r := range ranges {
		b.WriteString(s[prev:r[0]])
		b.WriteByte(cut)
		prev = r[1]
	}
	b.WriteString(s[prev:])
	return b.String()
}

func dropEmptied(s string) string {
	if strings.IndexByte(s, cut) < 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, ln := range lines {
		if strings.IndexByte(ln, cut) < 0 {
			out = append(out, ln)
			continue
		}
		cleaned := strings.ReplaceAll(ln, string(cut), "")
		if strings.TrimSpace(cleaned) == "" {
			continue
		}
		out = append(out, cleaned)
	}
	return strings.Join(out, "\n")
}
