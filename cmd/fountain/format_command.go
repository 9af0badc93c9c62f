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
	"log/slog"

	"github.com/spf13/cobra"

	applog "gofountain/internal/log"
)

func newFormatCommand(ctx *commandContext) *cobra.Command {
	var output string
	var write bool
	cmd := &cobra.Command{
		Use:   "format <file>",
		Short: "Rewrite a script in canonical Fountain form",
		Long: "Parses the script and serializes it again. The result goes to stdout " +
			"unless --output or --write is given. Files are replaced atomically and the " +
			"previous version is kept in .fountain/backups.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" && write {
				return fmt.Errorf("--output and --write are mutually exclusive")
			}
			s, err := ctx.loadScript(args[0])
			if err != nil {
				return err
			}
			target := output
			if write {
				target = args[0]
			}
			if target == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), s.StringFromDocument())
				return err
			}
			if err := s.WriteToFile(target); err != nil {
				return err
			}
			applog.WithComponent("cli").Info("script formatted",
				slog.String("from", args[0]),
				slog.String("to", target),
				slog.Int("elements", len(s.Elements)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to this file")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Replace the input file")
	return cmd
}
