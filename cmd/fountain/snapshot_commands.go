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
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	applog "gofountain/internal/log"
	"gofountain/internal/storage"
)

func newSnapshotCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save, list, prune and restore script snapshots",
	}
	cmd.AddCommand(newSnapshotSaveCommand(ctx))
	cmd.AddCommand(newSnapshotListCommand())
	cmd.AddCommand(newSnapshotPruneCommand())
	cmd.AddCommand(newSnapshotRestoreCommand())
	return cmd
}

func newSnapshotSaveCommand(ctx *commandContext) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "save <file>",
		Short: "Store the current script text in the index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// parse first so unreadable files are rejected before anything is stored
			s, err := ctx.loadScript(args[0])
			if err != nil {
				return err
			}
			raw, err := storage.ReadScript(args[0])
			if err != nil {
				return err
			}
			id, err := storage.SaveSnapshot(cmd.Context(), args[0], string(raw), time.Now())
			if err != nil {
				return err
			}
			if keep > 0 {
				if err := storage.PruneSnapshots(cmd.Context(), args[0], keep); err != nil {
					return err
				}
			}
			applog.WithComponent("cli").Info("snapshot saved",
				slog.String("id", id),
				slog.String("path", args[0]),
				slog.Int("elements", len(s.Elements)))
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 0, "Prune to this many snapshots after saving")
	return cmd
}

func newSnapshotListCommand() *cobra.Command {
	var limit int
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list <file>",
		Short: "List the snapshots of a script, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snaps, err := storage.ListSnapshots(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if jsonOut {
				type snapshotJSON struct {
					ID    string    `json:"id"`
					TS    time.Time `json:"ts"`
					Bytes int       `json:"bytes"`
				}
				out := make([]snapshotJSON, 0, len(snaps))
				for _, s := range snaps {
					out = append(out, snapshotJSON{ID: s.ID, TS: s.TS, Bytes: len(s.Text)})
				}
				return writeJSON(cmd, out)
			}
			if len(snaps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no snapshots")
				return nil
			}
			rows := make([][]string, 0, len(snaps))
			for _, s := range snaps {
				rows = append(rows, []string{
					s.ID,
					s.TS.Local().Format("2006-01-02 15:04:05"),
					humanize.Time(s.TS),
					humanize.Bytes(uint64(len(s.Text))),
					strconv.Itoa(strings.Count(s.Text, "\n") + 1),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Saved", "Age", "Size", "Lines"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of snapshots to list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Write JSON instead of a table")
	return cmd
}

func newSnapshotPruneCommand() *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune <file>",
		Short: "Delete all but the newest snapshots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 0 {
				return fmt.Errorf("--keep must not be negative")
			}
			return storage.PruneSnapshots(cmd.Context(), args[0], keep)
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 10, "Number of snapshots to keep")
	return cmd
}

func newSnapshotRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the script with its newest snapshot",
		Long:  "Writes the newest snapshot over the script. The replaced file is kept in .fountain/backups.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, ok, err := storage.LatestSnapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no snapshot of %s", args[0])
			}
			if err := storage.WriteScript(args[0], []byte(snap.Text)); err != nil {
				return err
			}
			applog.WithComponent("cli").Info("snapshot restored",
				slog.String("id", snap.ID),
				slog.String("path", args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "restored %s (%s)\n", snap.ID, humanize.Time(snap.TS))
			return nil
		},
	}
}
