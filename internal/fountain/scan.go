/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import (
	"strings"
	"unicode"
)

// ScanParser is the fast strategy: one pass over the text with a single line
// of lookahead, deciding each line with hand-written checks in rule-table order.
type ScanParser struct{}

func (ScanParser) Parse(text string) (TitlePage, []Element) {
	text = StripComments(Normalize(text))
	tp, body := scanTitlePage(text)

	var b builder
	if body == "" {
		return tp, b.elements
	}
	line, next, more := cutLine(body, 0)
	prevBlank := true
	for {
		var following string
		var after int
		var hasFollowing bool
		nextBlank := true
		if more {
			following, after, hasFollowing = cutLine(body, next)
			nextBlank = isBlank(following)
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			b.blank()
			prevBlank = true
		} else {
			ctx := b.context()
			if prevBlank {
				ctx |= CtxBlockStart
			}
			if nextBlank {
				ctx |= CtxBlockEnd
			} else {
				ctx |= CtxBeforeText
			}
			b.push(scanLine(trimmed, ctx))
			prevBlank = false
		}

		if !more {
			break
		}
		line, next, more = following, after, hasFollowing
	}
	return tp, b.elements
}

// cutLine returns the line starting at start, the offset of the next line and
// whether a next line exists.
func cutLine(s string, start int) (string, int, bool) {
	if i := strings.IndexByte(s[start:], '\n'); i >= 0 {
		return s[start : start+i], start + i + 1, true
	}
	return s[start:], len(s), false
}

// scanTitlePage consumes the leading key/value block. If any line of that
// block is neither a directive nor a continuation the whole text is body.
func scanTitlePage(text string) (TitlePage, string) {
	var tp TitlePage
	pos := 0
	for {
		line, next, more := cutLine(text, pos)
		if isBlank(line) {
			if len(tp) == 0 {
				return nil, text
			}
			if !more {
				return tp, ""
			}
			return tp, text[next:]
		}
		switch {
		case strings.HasPrefix(line, "  ") || strings.HasPrefix(line, "\t"):
			if len(tp) == 0 {
				return nil, text
			}
			last := &tp[len(tp)-1]
			last.Values = append(last.Values, strings.TrimSpace(line))
		default:
			key, value, ok := scanDirective(line)
			if !ok {
				return nil, text
			}
			e := TitleEntry{Key: key}
			if value != "" {
				e.Values = append(e.Values, value)
			}
			tp = append(tp, e)
		}
		if !more {
			return tp, ""
		}
		pos = next
	}
}

func scanDirective(line string) (string, string, bool) {
	if line == "" || !(isWordByte(line[0]) || line[0] == '&') {
		return "", "", false
	}
	for i := 1; i < len(line); i++ {
		c := line[i]
		if c == ':' {
			return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
		}
		if !(isWordByte(c) || c == '&' || isRESpace(c)) {
			return "", "", false
		}
	}
	return "", "", false
}

// scanLine classifies a trimmed, non-blank line. The checks mirror the rule
// table order.
func scanLine(line string, ctx Context) lineClass {
	n := len(line)
	if ctx&CtxDialogue != 0 {
		if n >= 2 && line[0] == '(' && line[n-1] == ')' {
			return lineClass{kind: Parenthetical, text: line}
		}
		return lineClass{kind: Dialogue, text: line}
	}

	if n >= 3 && strings.Trim(line, "=") == "" {
		return lineClass{kind: PageBreak}
	}
	if ctx&(CtxBlockStart|CtxBlockEnd) == CtxBlockStart|CtxBlockEnd &&
		n >= 4 && strings.HasPrefix(line, noteOpen) && strings.HasSuffix(line, noteClose) {
		return lineClass{kind: Comment, text: strings.TrimSpace(line[2 : n-2])}
	}

	switch line[0] {
	case '#':
		depth := 0
		for depth < n && line[depth] == '#' {
			depth++
		}
		if depth <= 3 {
			return lineClass{kind: Section, text: strings.TrimSpace(line[depth:]), depth: depth}
		}
	case '=':
		if n == 1 || line[1] != '=' {
			return lineClass{kind: Synopsis, text: strings.TrimSpace(line[1:])}
		}
	case '.':
		if n >= 2 && line[1] != '.' {
			text, scene := splitSceneNumber(strings.TrimSpace(line[1:]))
			return lineClass{kind: SceneHeading, text: text, scene: scene}
		}
	case '!':
		return lineClass{kind: Action, text: strings.TrimSpace(line[1:])}
	case '@':
		if ctx&CtxBeforeText != 0 {
			if name, dual := splitDualMarker(line[1:]); name != "" {
				return lineClass{kind: Character, text: name, dual: dual}
			}
		}
	}
	if line[0] == '>' {
		if n >= 2 && line[n-1] == '<' {
			return lineClass{kind: CenteredText, text: strings.TrimSpace(line[1 : n-1]), centered: true}
		}
		return lineClass{kind: Transition, text: strings.TrimSpace(line[1:])}
	}
	if line[0] == '~' {
		return lineClass{kind: CenteredText, text: strings.TrimSpace(line[1:]), centered: true, lyric: true}
	}

	if hasScenePrefix(line) {
		text, scene := splitSceneNumber(line)
		return lineClass{kind: SceneHeading, text: text, scene: scene}
	}
	if isTransition(line) {
		return lineClass{kind: Transition, text: line}
	}
	if ctx&(CtxBlockStart|CtxBeforeText) == CtxBlockStart|CtxBeforeText {
		if name, dual := splitDualMarker(line); IsCueName(name) {
			return lineClass{kind: Character, text: name, dual: dual}
		}
	}
	return lineClass{kind: Action, text: line}
}

// splitDualMarker strips the trailing run of whitespace and '^' characters and
// reports whether it held a dual-dialogue marker.
func splitDualMarker(s string) (string, bool) {
	j := len(s)
	for j > 0 && (isRESpace(s[j-1]) || s[j-1] == '^') {
		j--
	}
	return strings.TrimSpace(s[:j]), strings.IndexByte(s[j:], '^') >= 0
}

// splitSceneNumber extracts a trailing #number# token.
func splitSceneNumber(text string) (string, string) {
	n := len(text)
	if n < 3 || text[n-1] != '#' {
		return text, ""
	}
	j := strings.LastIndexByte(text[:n-1], '#')
	if j < 0 || j == n-2 {
		return text, ""
	}
	for k := j + 1; k < n-1; k++ {
		if !isSceneNumberByte(text[k]) {
			return text, ""
		}
	}
	return strings.TrimSpace(text[:j]), text[j+1 : n-1]
}

func hasScenePrefix(line string) bool {
	for _, p := range sceneHeadingPrefixes {
		if len(line) > len(p) && asciiEqualFold(line[:len(p)], p) {
			if c := line[len(p)]; c == '.' || isRESpace(c) {
				return true
			}
		}
	}
	return false
}

func isTransition(line string) bool {
	for _, lit := range transitionLiterals {
		if line == lit {
			return true
		}
	}
	if !strings.HasSuffix(line, "TO:") {
		return false
	}
	for _, r := range line {
		if unicode.Is(unicode.Ll, r) {
			return false
		}
	}
	return true
}

func asciiEqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		x, y := a[i], b[i]
		if 'a' <= x && x <= 'z' {
			x -= 'a' - 'A'
		}
		if 'a' <= y && y <= 'z' {
			y -= 'a' - 'A'
		}
		if x != y {
			return false
		}
	}
	return true
}
