/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Context describes where a body line sits. Rules list the bits they require.
type Context uint8

const (
	// CtxDialogue: the line continues an open Character+Dialogue group.
	CtxDialogue Context = 1 << iota
	// CtxBlockStart: preceded by a blank line or the start of the body.
	CtxBlockStart
	// CtxBlockEnd: followed by a blank line or the end of the body.
	CtxBlockEnd
	// CtxBeforeText: followed by a non-blank line.
	CtxBeforeText
)

// Rule is one classification rule. Rules are tried in table order against a
// trimmed body line; the first rule whose context, pattern and predicate all
// accept the line decides its kind. Dialogue rules only apply inside an open
// dialogue group and all other rules only outside of one.
type Rule struct {
	Name     string
	Kind     Kind
	Force    string // forcing prefix consumed by the rule, empty for shape rules
	Requires Context
	Pattern  *regexp.Regexp
	Template string            // expansion producing the rendered text (trimmed afterwards)
	Accept   func(string) bool // shape predicate on the rendered text

	DualGroup  int // submatch holding the dual-dialogue marker
	DepthGroup int // submatch whose length is the section depth

	SceneNumber bool // rendered text may end in a #scene-number# token
	Centered    bool
	Lyric       bool
}

const lineBreakTemplate = "\n"

var (
	lineBreaks = regexp.MustCompile(`\r\n?`)

	sceneNumberPattern = regexp.MustCompile(`^(.*?)\s*#([0-9A-Za-z.\-)]+)#$`)

	titleDirectivePattern    = regexp.MustCompile(`^([\w&][\w\s&]*):(.*)$`)
	titleContinuationPattern = regexp.MustCompile(`^(?: {2,}|\t)(.*)$`)
)

// Rule names.
const (
	RuleParenthetical    = "parenthetical"
	RuleDialogue         = "dialogue"
	RulePageBreak        = "page-break"
	RuleComment          = "comment"
	RuleSection          = "section"
	RuleSynopsis         = "synopsis"
	RuleForcedScene      = "forced-scene-heading"
	RuleForcedAction     = "forced-action"
	RuleForcedCharacter  = "forced-character"
	RuleCentered         = "centered"
	RuleForcedTransition = "forced-transition"
	RuleLyric            = "lyric"
	RuleSceneHeading     = "scene-heading"
	RuleTransition       = "transition"
	RuleCharacter        = "character"
	RuleAction           = "action"
)

var rules = []Rule{
	{Name: RuleParenthetical, Kind: Parenthetical, Requires: CtxDialogue,
		Pattern: regexp.MustCompile(`^(\(.*\))$`), Template: "$1"},
	{Name: RuleDialogue, Kind: Dialogue, Requires: CtxDialogue,
		Pattern: regexp.MustCompile(`^(.*)$`), Template: "$1"},
	{Name: RulePageBreak, Kind: PageBreak,
		Pattern: regexp.MustCompile(`^={3,}$`)},
	{Name: RuleComment, Kind: Comment, Requires: CtxBlockStart | CtxBlockEnd,
		Pattern: regexp.MustCompile(`^\[\[(.*)\]\]$`), Template: "$1"},
	{Name: RuleSection, Kind: Section, Force: "#",
		Pattern: regexp.MustCompile(`^(#{1,3})([^#].*)?$`), Template: "$2", DepthGroup: 1},
	{Name: RuleSynopsis, Kind: Synopsis, Force: "=",
		Pattern: regexp.MustCompile(`^=([^=].*)?$`), Template: "$1"},
	{Name: RuleForcedScene, Kind: SceneHeading, Force: ".",
		Pattern: regexp.MustCompile(`^\.([^.].*)$`), Template: "$1", SceneNumber: true},
	{Name: RuleForcedAction, Kind: Action, Force: "!",
		Pattern: regexp.MustCompile(`^!(.*)$`), Template: "$1"},
	{Name: RuleForcedCharacter, Kind: Character, Force: "@", Requires: CtxBeforeText,
		Pattern: regexp.MustCompile(`^@(.*?)([\s^]*)$`), Template: "$1", DualGroup: 2,
		Accept: func(s string) bool { return s != "" }},
	{Name: RuleCentered, Kind: CenteredText, Force: ">",
		Pattern: regexp.MustCompile(`^>(.*)<$`), Template: "$1", Centered: true},
	{Name: RuleForcedTransition, Kind: Transition, Force: ">",
		Pattern: regexp.MustCompile(`^>(.*)$`), Template: "$1"},
	{Name: RuleLyric, Kind: CenteredText, Force: "~",
		Pattern: regexp.MustCompile(`^~(.*)$`), Template: "$1", Centered: true, Lyric: true},
	{Name: RuleSceneHeading, Kind: SceneHeading,
		Pattern:  regexp.MustCompile(`^((?:[Ii][Nn][Tt]\.?/[Ee][Xx][Tt]|[Ee][Xx][Tt]\.?/[Ii][Nn][Tt]|[Ii][Nn][Tt]|[Ee][Xx][Tt]|[Ee][Ss][Tt]|[Ii]/[Ee]|[Ii]-[Ee])[.\s].*)$`),
		Template: "$1", SceneNumber: true},
	{Name: RuleTransition, Kind: Transition,
		Pattern:  regexp.MustCompile(`^(\P{Ll}*TO:|FADE OUT\.|FADE TO BLACK\.|CUT TO BLACK\.)$`),
		Template: "$1"},
	{Name: RuleCharacter, Kind: Character, Requires: CtxBlockStart | CtxBeforeText,
		Pattern: regexp.MustCompile(`^(.*?)([\s^]*)$`), Template: "$1", DualGroup: 2,
		Accept: IsCueName},
	{Name: RuleAction, Kind: Action,
		Pattern: regexp.MustCompile(`^(.*)$`), Template: "$1"},
}

var rulesByName = func() map[string]*Rule {
	m := make(map[string]*Rule, len(rules))
	for i := range rules {
		m[rules[i].Name] = &rules[i]
	}
	return m
}()

// Rules returns a copy of the classification table in priority order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Style is a set of inline emphasis styles.
type Style uint8

const (
	Bold Style = 1 << iota
	Italic
	Underline
)

// EmphasisRule is one inline emphasis markup. Element text keeps the markers;
// the rules only tell what a renderer prints and how.
type EmphasisRule struct {
	Name     string
	Style    Style
	Pattern  *regexp.Regexp
	Template string // expansion without the markers
}

// emphasisRules are applied in order, combined styles before their parts.
var emphasisRules = []EmphasisRule{
	{Name: "bold-italic-underline", Style: Bold | Italic | Underline,
		Pattern: regexp.MustCompile(`(?:_\*{3}|\*{3}_)(.+?)(?:\*{3}_|_\*{3})`), Template: "${1}"},
	{Name: "bold-italic", Style: Bold | Italic,
		Pattern: regexp.MustCompile(`\*{3}(.+?)\*{3}`), Template: "${1}"},
	{Name: "bold-underline", Style: Bold | Underline,
		Pattern: regexp.MustCompile(`(?:_\*{2}|\*{2}_)(.+?)(?:\*{2}_|_\*{2})`), Template: "${1}"},
	{Name: "italic-underline", Style: Italic | Underline,
		Pattern: regexp.MustCompile(`(?:_\*|\*_)(.+?)(?:\*_|_\*)`), Template: "${1}"},
	{Name: "bold", Style: Bold,
		Pattern: regexp.MustCompile(`\*{2}(.+?)\*{2}`), Template: "${1}"},
	{Name: "italic", Style: Italic,
		Pattern: regexp.MustCompile(`\*(.+?)\*`), Template: "${1}"},
	{Name: "underline", Style: Underline,
		Pattern: regexp.MustCompile(`_(.+?)_`), Template: "${1}"},
}

// EmphasisRules returns a copy of the inline emphasis table in the order it
// is applied.
func EmphasisRules() []EmphasisRule {
	out := make([]EmphasisRule, len(emphasisRules))
	copy(out, emphasisRules)
	return out
}

// StripEmphasis removes paired emphasis markers, leaving the text a page
// shows. Unpaired markers are kept.
func StripEmphasis(text string) string {
	if !strings.ContainsAny(text, "*_") {
		return text
	}
	for _, r := range emphasisRules {
		text = r.Pattern.ReplaceAllString(text, r.Template)
	}
	return text
}

// sceneHeadingPrefixes are the prefixes the scene-heading shape rule accepts,
// longest first. They must be followed by '.' or whitespace.
var sceneHeadingPrefixes = []string{"INT./EXT", "INT/EXT", "EXT./INT", "EXT/INT", "INT", "EXT", "EST", "I/E", "I-E"}

// transitionLiterals are complete lines the transition shape rule accepts besides "...TO:".
var transitionLiterals = []string{"FADE OUT.", "FADE TO BLACK.", "CUT TO BLACK."}

// IsCueName reports whether s can stand as an unforced character cue: the name
// before any parenthesized extension carries an uppercase letter and no
// lowercase one, and the cue does not end in sentence punctuation.
func IsCueName(s string) bool {
	if s == "" {
		return false
	}
	if r, _ := utf8.DecodeLastRuneInString(s); strings.ContainsRune("!?:,.", r) {
		return false
	}
	base := s
	if i := strings.IndexByte(s, '('); i >= 0 {
		base = s[:i]
	}
	upper := false
	for _, r := range base {
		if unicode.Is(unicode.Ll, r) {
			return false
		}
		if unicode.Is(unicode.Lu, r) {
			upper = true
		}
	}
	return upper
}

// isRESpace matches the ASCII whitespace class used by \s in the patterns.
func isRESpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\f' || c == '\r'
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSceneNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '.' || c == '-' || c == ')'
}

// lineClass is the classification of a single body line.
type lineClass struct {
	kind     Kind
	text     string
	scene    string
	depth    int
	dual     bool
	centered bool
	lyric    bool
}

// matchLine runs the rule table against a trimmed, non-blank line.
func matchLine(line string, ctx Context) (lineClass, *Rule) {
	inDialogue := ctx&CtxDialogue != 0
	for i := range rules {
		r := &rules[i]
		if (r.Requires&CtxDialogue != 0) != inDialogue {
			continue
		}
		if ctx&r.Requires != r.Requires {
			continue
		}
		m := r.Pattern.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(string(r.Pattern.ExpandString(nil, r.Template, line, m)))
		if r.Accept != nil && !r.Accept(text) {
			continue
		}
		c := lineClass{kind: r.Kind, text: text, centered: r.Centered, lyric: r.Lyric}
		if g := r.DualGroup; g > 0 && m[2*g] >= 0 {
			c.dual = strings.IndexByte(line[m[2*g]:m[2*g+1]], '^') >= 0
		}
		if g := r.DepthGroup; g > 0 {
			c.depth = m[2*g+1] - m[2*g]
		}
		if r.SceneNumber {
			if sm := sceneNumberPattern.FindStringSubmatch(c.text); sm != nil {
				c.text = strings.TrimSpace(sm[1])
				c.scene = sm[2]
			}
		}
		return c, r
	}
	// unreachable: the action rule matches every line
	return lineClass{kind: Action, text: line}, rulesByName[RuleAction]
}
