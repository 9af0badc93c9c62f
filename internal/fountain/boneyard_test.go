/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import "testing"

func TestStripComments(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"nested boneyard", "a /* b /* c */ d */ e", "a  e"},
		{"unclosed boneyard", "a /* b", "a /* b"},
		{"close before open", "a */ b /* c", "a */ b /* c"},
		{"emptied line dropped", "line1\n/* gone */\nline2", "line1\nline2"},
		{"multi-line boneyard", "a\n/* one\ntwo */\nb", "a\nb"},
		{"standalone note kept", "\n[[note]]\n", "\n[[note]]\n"},
		{"inline note removed", "text [[note]] more", "text  more"},
		{"nested standalone note", "[[ outer [[ inner ]] ]]", "[[ outer [[ inner ]] ]]"},
		{"note next to text removed", "[[note]]\nBOB", "BOB"},
		{"unbalanced note", "[[ open only", "[[ open only"},
		{"nothing to do", "INT. HOUSE", "INT. HOUSE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripComments(tt.in); got != tt.want {
				t.Fatalf("StripComments(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"a\r\nb\rc\n":    "a\nb\nc\n",
		"\ufeffx":        "\ufeffx",
		"e\u0301":        "\u00e9",
		"nul\x00here":    "nulhere",
		"already\nclean": "already\nclean",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
