/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import "strings"

// PatternParser classifies every line by running the ordered rule table. It
// is slower than ScanParser and serves as the reference strategy.
type PatternParser struct{}

func (PatternParser) Parse(text string) (TitlePage, []Element) {
	text = StripComments(Normalize(text))
	lines := strings.Split(text, "\n")
	tp, start := matchTitlePage(lines)

	var b builder
	if start >= len(lines) {
		return tp, b.elements
	}
	body := lines[start:]
	for i, raw := range body {
		line := strings.TrimSpace(raw)
		if line == "" {
			b.blank()
			continue
		}
		ctx := b.context()
		if i == 0 || isBlank(body[i-1]) {
			ctx |= CtxBlockStart
		}
		if i == len(body)-1 || isBlank(body[i+1]) {
			ctx |= CtxBlockEnd
		} else {
			ctx |= CtxBeforeText
		}
		c, _ := matchLine(line, ctx)
		b.push(c)
	}
	return tp, b.elements
}

// matchTitlePage returns the title page and the index of the first body line.
func matchTitlePage(lines []string) (TitlePage, int) {
	var tp TitlePage
	for i, line := range lines {
		if isBlank(line) {
			if len(tp) == 0 {
				return nil, 0
			}
			return tp, i + 1
		}
		if m := titleContinuationPattern.FindStringSubmatch(line); m != nil {
			if len(tp) == 0 {
				return nil, 0
			}
			tp[len(tp)-1].Values = append(tp[len(tp)-1].Values, strings.TrimSpace(m[1]))
			continue
		}
		m := titleDirectivePattern.FindStringSubmatch(line)
		if m == nil {
			return nil, 0
		}
		e := TitleEntry{Key: strings.TrimSpace(m[1])}
		if v := strings.TrimSpace(m[2]); v != "" {
			e.Values = append(e.Values, v)
		}
		tp = append(tp, e)
	}
	return tp, len(lines)
}
