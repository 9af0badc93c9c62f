/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gofountain/internal/fountain"
)

var errParsersDisagree = errors.New("parsers disagree")

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Parse a script with both strategies and compare the results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fast, err := ctx.loadScriptWith(args[0], fountain.ParserFast)
			if err != nil {
				return err
			}
			regex, err := ctx.loadScriptWith(args[0], fountain.ParserRegexes)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			diffs := compareScripts(fast, regex)
			if len(diffs) == 0 {
				fmt.Fprintf(out, "ok: %d elements, %d title page entries\n", len(fast.Elements), len(fast.TitlePage))
				return nil
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Fast", "Regex"}, diffs,
				[]columnAlignment{alignRight, alignLeft, alignLeft}))
			return fmt.Errorf("%w: %d differences", errParsersDisagree, len(diffs))
		},
	}
}

// compareScripts lists the title page and element positions where a and b
// differ. Title page rows are numbered "t0", "t1" and so on.
func compareScripts(a, b *fountain.Script) [][]string {
	var rows [][]string
	if !a.TitlePage.Equal(b.TitlePage) {
		n := max(len(a.TitlePage), len(b.TitlePage))
		for i := 0; i < n; i++ {
			var l, r string
			if i < len(a.TitlePage) {
				l = fmt.Sprintf("%s: %v", a.TitlePage[i].Key, a.TitlePage[i].Values)
			}
			if i < len(b.TitlePage) {
				r = fmt.Sprintf("%s: %v", b.TitlePage[i].Key, b.TitlePage[i].Values)
			}
			if l != r {
				rows = append(rows, []string{"t" + strconv.Itoa(i), truncate(l, 40), truncate(r, 40)})
			}
		}
	}
	n := max(len(a.Elements), len(b.Elements))
	for i := 0; i < n; i++ {
		var l, r string
		switch {
		case i >= len(a.Elements):
			r = b.Elements[i].String()
		case i >= len(b.Elements):
			l = a.Elements[i].String()
		case !a.Elements[i].Equal(b.Elements[i]):
			l, r = a.Elements[i].String(), b.Elements[i].String()
		default:
			continue
		}
		rows = append(rows, []string{strconv.Itoa(i), truncate(l, 40), truncate(r, 40)})
	}
	return rows
}
