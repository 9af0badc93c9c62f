/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import "strings"

// StringFromTitlePage renders the title page as Fountain directives. Single
// values share the key line; multi-line values go on indented lines.
func (s *Script) StringFromTitlePage() string {
	return formatTitlePage(s.TitlePage)
}

// StringFromBody renders the elements as Fountain markup. Forcing characters
// are emitted wherever the plain form would classify differently.
func (s *Script) StringFromBody() string {
	return formatBody(s.Elements)
}

// StringFromDocument renders the title page, a blank line and the body.
func (s *Script) StringFromDocument() string {
	body := formatBody(s.Elements)
	if len(s.TitlePage) == 0 {
		// a body that opens like a title page needs a leading blank line, as
		// does one opening with a byte order mark, which decode would drop
		if strings.HasPrefix(body, "\ufeff") {
			return "\n" + body
		}
		if tp, _ := matchTitlePage(strings.Split(body, "\n")); len(tp) > 0 {
			return "\n" + body
		}
		return body
	}
	return formatTitlePage(s.TitlePage) + "\n\n" + body
}

func formatTitlePage(tp TitlePage) string {
	var b strings.Builder
	for i, e := range tp {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Key)
		b.WriteByte(':')
		switch len(e.Values) {
		case 0:
		case 1:
			b.WriteByte(' ')
			b.WriteString(e.Values[0])
		default:
			for _, v := range e.Values {
				b.WriteString("\n    ")
				b.WriteString(v)
			}
		}
	}
	return b.String()
}

// outLine is one body line together with the classification it must get back.
type outLine struct {
	want lineClass
	// forced is used whenever the plain text does not classify as want.
	plain, forced string
}

func formatBody(els []Element) string {
	var blocks [][]outLine
	for i := 0; i < len(els); {
		if els[i].Kind == Character {
			j := i + 1
			for j < len(els) && (els[j].Kind == Dialogue || els[j].Kind == Parenthetical) {
				j++
			}
			var block []outLine
			for _, e := range els[i:j] {
				block = append(block, elementLines(e)...)
			}
			blocks = append(blocks, block)
			i = j
			continue
		}
		blocks = append(blocks, elementLines(els[i]))
		i++
	}

	var b strings.Builder
	for bi, block := range blocks {
		if bi > 0 {
			b.WriteString("\n\n")
		}
		inDialogue := false
		for li, ln := range block {
			if li > 0 {
				b.WriteByte('\n')
			}
			var ctx Context
			if inDialogue {
				ctx |= CtxDialogue
			}
			if li == 0 {
				ctx |= CtxBlockStart
			}
			if li == len(block)-1 {
				ctx |= CtxBlockEnd
			} else {
				ctx |= CtxBeforeText
			}
			b.WriteString(chooseForm(ln, ctx))
			if ln.want.kind == Character {
				inDialogue = true
			}
		}
	}
	return b.String()
}

func chooseForm(ln outLine, ctx Context) string {
	if ln.plain == "" || ln.forced == "" {
		if ln.plain == "" {
			return ln.forced
		}
		return ln.plain
	}
	got, _ := matchLine(ln.plain, ctx)
	if got.kind == ln.want.kind && got.text == ln.want.text && got.scene == ln.want.scene &&
		got.depth == ln.want.depth && got.dual == ln.want.dual {
		return ln.plain
	}
	return ln.forced
}

// elementLines lists the lines an element is written as.
func elementLines(e Element) []outLine {
	switch e.Kind {
	case Action:
		parts := strings.Split(e.Text, "\n")
		out := make([]outLine, len(parts))
		for i, p := range parts {
			out[i] = outLine{want: lineClass{kind: Action, text: p}, plain: p, forced: "!" + p}
		}
		return out
	case SceneHeading:
		plain := e.Text
		if e.SceneNumber != "" {
			plain = strings.TrimSpace(plain + " #" + e.SceneNumber + "#")
		}
		return []outLine{{want: lineClass{kind: SceneHeading, text: e.Text, scene: e.SceneNumber},
			plain: plain, forced: ". " + plain}}
	case Character:
		plain := e.Text
		if e.Dual == DualRight {
			plain += " ^"
		}
		return []outLine{{want: lineClass{kind: Character, text: e.Text, dual: e.Dual == DualRight},
			plain: plain, forced: "@" + plain}}
	case Dialogue:
		parts := strings.Split(e.Text, "\n")
		out := make([]outLine, len(parts))
		for i, p := range parts {
			out[i] = outLine{want: lineClass{kind: Dialogue, text: p}, plain: p}
		}
		return out
	case Parenthetical:
		return []outLine{{want: lineClass{kind: Parenthetical, text: e.Text}, plain: e.Text}}
	case Transition:
		forced := ">"
		if e.Text != "" {
			forced = "> " + e.Text
		}
		return []outLine{{want: lineClass{kind: Transition, text: e.Text}, plain: e.Text, forced: forced}}
	case CenteredText:
		if e.Lyric {
			return []outLine{{forced: "~" + e.Text}}
		}
		if e.Text == "" {
			return []outLine{{forced: "><"}}
		}
		return []outLine{{forced: "> " + e.Text + " <"}}
	case Section:
		forced := strings.Repeat("#", max(e.Depth, 1))
		if e.Text != "" {
			forced += " " + e.Text
		}
		return []outLine{{forced: forced}}
	case Synopsis:
		if e.Text == "" {
			return []outLine{{forced: "="}}
		}
		return []outLine{{forced: "= " + e.Text}}
	case Comment:
		return []outLine{{forced: noteOpen + e.Text + noteClose}}
	case PageBreak:
		return []outLine{{forced: "==="}}
	}
	return nil
}
