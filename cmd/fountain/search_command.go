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
	"gofountain/internal/storage"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var kinds []string
	var q storage.SearchQuery
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "search <file> [query]",
		Short: "Index a script and search its elements",
		Long: "Indexes the script's elements in .fountain/index.sqlite next to it and runs a " +
			"full-text query. The query uses SQLite FTS5 syntax; without one only the filters apply.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.loadScript(args[0])
			if err != nil {
				return err
			}
			if len(args) == 2 {
				q.Text = args[1]
			}
			for _, k := range kinds {
				kind, ok := kindByName(k)
				if !ok {
					return fmt.Errorf("unknown element kind %q", k)
				}
				q.Kinds = append(q.Kinds, kind.String())
			}
			if err := storage.IndexElements(cmd.Context(), args[0], indexDocuments(s)); err != nil {
				return err
			}
			res, err := storage.Search(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, res)
			}
			rows := make([][]string, 0, len(res))
			for _, r := range res {
				rows = append(rows, []string{
					strconv.Itoa(r.Ordinal),
					r.Kind,
					truncate(r.Scene, 30),
					r.Character,
					truncate(strings.ReplaceAll(r.Text, "\n", " / "), 50),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Kind", "Scene", "Character", "Text"},
				rows,
				[]columnAlignment{alignRight},
			))
			fmt.Fprintf(out, "%d matches\n", len(res))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&kinds, "kind", nil, "Restrict to element kinds, e.g. dialogue,action")
	f.StringVar(&q.Character, "character", "", "Restrict to lines of this character")
	f.StringVar(&q.Scene, "scene", "", "Restrict to scenes whose heading contains this text")
	f.IntVar(&q.Limit, "limit", 0, "Maximum number of results")
	f.IntVar(&q.Offset, "offset", 0, "Skip this many results")
	f.BoolVar(&jsonOut, "json", false, "Write JSON instead of a table")
	return cmd
}

// kindByName matches display names ("Scene Heading") and their compact
// forms ("scene-heading", "sceneheading").
func kindByName(name string) (fountain.Kind, bool) {
	norm := func(s string) string {
		s = strings.ToLower(s)
		return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
	}
	want := norm(strings.TrimSpace(name))
	for _, k := range fountain.Kinds {
		if norm(k.String()) == want {
			return k, true
		}
	}
	return 0, false
}

// indexDocuments attaches the current scene heading to every element and
// the speaking character to dialogue groups.
func indexDocuments(s *fountain.Script) []storage.Document {
	docs := make([]storage.Document, 0, len(s.Elements))
	var scene, character string
	for i, e := range s.Elements {
		switch e.Kind {
		case fountain.SceneHeading:
			scene, character = e.Text, ""
		case fountain.Character:
			character = cueName(e.Text)
		case fountain.Dialogue, fountain.Parenthetical:
		default:
			character = ""
		}
		d := storage.Document{Ordinal: i, Kind: e.Kind.String(), Scene: scene, Text: e.Text}
		if e.Kind.InDialogueGroup() {
			d.Character = character
		}
		docs = append(docs, d)
	}
	return docs
}

// cueName strips extensions such as "(V.O.)" from a character cue.
func cueName(cue string) string {
	if i := strings.IndexByte(cue, '('); i >= 0 {
		cue = cue[:i]
	}
	return strings.TrimSpace(cue)
}
