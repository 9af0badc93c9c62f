/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrUndecodable is wrapped by FileError when the source bytes are not valid text.
var ErrUndecodable = errors.New("source is not valid UTF-8 or UTF-16 text")

// Normalize unifies line breaks to "\n", drops NUL characters and composes the
// text to NFC. Every pattern in the rule table assumes this form. A byte
// order mark is content here; decode removes the one a file starts with.
func Normalize(text string) string {
	text = lineBreaks.ReplaceAllString(text, lineBreakTemplate)
	if strings.IndexByte(text, 0) >= 0 {
		text = strings.ReplaceAll(text, "\x00", "")
	}
	return norm.NFC.String(text)
}

var utf8BOM = []byte("\ufeff")

// decode turns raw file bytes into a string without a leading byte order
// mark. UTF-16 input must carry a BOM; anything else has to be valid UTF-8.
func decode(b []byte) (string, error) {
	if bytes.HasPrefix(b, []byte{0xFE, 0xFF}) || bytes.HasPrefix(b, []byte{0xFF, 0xFE}) {
		if len(b)%2 != 0 {
			return "", ErrUndecodable
		}
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), b)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUndecodable, err)
		}
		return string(out), nil
	}
	if !utf8.Valid(b) {
		return "", ErrUndecodable
	}
	return string(bytes.TrimPrefix(b, utf8BOM)), nil
}
