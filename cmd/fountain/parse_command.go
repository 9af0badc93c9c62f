/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gofountain/internal/fountain"
)

type titleEntryJSON struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

type elementJSON struct {
	Index       int    `json:"index"`
	Kind        string `json:"kind"`
	Text        string `json:"text"`
	SceneNumber string `json:"scene_number,omitempty"`
	Depth       int    `json:"depth,omitempty"`
	Dual        string `json:"dual,omitempty"`
	Centered    bool   `json:"centered,omitempty"`
	Lyric       bool   `json:"lyric,omitempty"`
}

type scriptJSON struct {
	File      string           `json:"file"`
	Parser    string           `json:"parser"`
	TitlePage []titleEntryJSON `json:"title_page"`
	Elements  []elementJSON    `json:"elements"`
}

func newParseCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "List the title page and elements of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.loadScript(args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, toScriptJSON(s))
			}
			out := cmd.OutOrStdout()
			if len(s.TitlePage) > 0 {
				rows := make([][]string, 0, len(s.TitlePage))
				for _, e := range s.TitlePage {
					rows = append(rows, []string{e.Key, strings.Join(e.Values, " / ")})
				}
				fmt.Fprintln(out, renderTable([]string{"Key", "Value"}, rows, nil))
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Kind", "Scene", "Text"},
				elementRows(s.Elements),
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Write JSON instead of a table")
	return cmd
}

func elementRows(els []fountain.Element) [][]string {
	rows := make([][]string, 0, len(els))
	for i, e := range els {
		kind := e.Kind.String()
		if e.Dual != fountain.DualNone {
			kind += " (" + e.Dual.String() + ")"
		}
		if e.Kind == fountain.Section {
			kind += " " + strconv.Itoa(e.Depth)
		}
		text := strings.ReplaceAll(e.Text, "\n", " / ")
		rows = append(rows, []string{strconv.Itoa(i), kind, e.SceneNumber, truncate(text, 60)})
	}
	return rows
}

func toScriptJSON(s *fountain.Script) scriptJSON {
	out := scriptJSON{
		File:      s.Filename,
		Parser:    s.Parser().String(),
		TitlePage: make([]titleEntryJSON, 0, len(s.TitlePage)),
		Elements:  make([]elementJSON, 0, len(s.Elements)),
	}
	for _, e := range s.TitlePage {
		out.TitlePage = append(out.TitlePage, titleEntryJSON{Key: e.Key, Values: e.Values})
	}
	for i, e := range s.Elements {
		ej := elementJSON{
			Index:       i,
			Kind:        e.Kind.String(),
			Text:        e.Text,
			SceneNumber: e.SceneNumber,
			Depth:       e.Depth,
			Centered:    e.Centered,
			Lyric:       e.Lyric,
		}
		if e.Dual != fountain.DualNone {
			ej.Dual = e.Dual.String()
		}
		out.Elements = append(out.Elements, ej)
	}
	return out
}
