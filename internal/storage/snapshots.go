/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO snapshots(id, script, ts, text) VALUES (?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestSnapshotSQL = `SELECT id, ts, text FROM snapshots WHERE script = ? ORDER BY ts DESC, rowid DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listSnapshotsSQL = `SELECT id, ts, text FROM snapshots WHERE script = ? ORDER BY ts DESC, rowid DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldSnapshotsSQL = `DELETE FROM snapshots WHERE script = ? AND id NOT IN (
	SELECT id FROM snapshots WHERE script = ? ORDER BY ts DESC, rowid DESC LIMIT ?
)`

// Snapshot is one saved version of a script's text.
type Snapshot struct {
	ID   string
	TS   time.Time
	Text string
}

// scriptKey splits a script path into the directory owning the index and the
// key rows are stored under.
func scriptKey(path string) (dir, key string, err error) {
	if strings.TrimSpace(path) == "" {
		return "", "", errors.New("script path is required")
	}
	return filepath.Dir(path), filepath.Base(path), nil
}

// SaveSnapshot stores text as a new snapshot of the script at path and
// returns its ID.
func SaveSnapshot(ctx context.Context, path, text string, ts time.Time) (string, error) {
	dir, key, err := scriptKey(path)
	if err != nil {
		return "", err
	}
	db, err := InitOrOpenIndex(dir)
	if err != nil {
		return "", err
	}
	defer func() { _ = db.Close() }()
	id := uuid.NewString()
	if _, err := db.ExecContext(ctx, insertSnapshotSQL, id, key, ts.UTC().Format(time.RFC3339Nano), text); err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	return id, nil
}

// LatestSnapshot returns the newest snapshot of the script, or false when
// there is none.
func LatestSnapshot(ctx context.Context, path string) (Snapshot, bool, error) {
	dir, key, err := scriptKey(path)
	if err != nil {
		return Snapshot{}, false, err
	}
	db, err := InitOrOpenIndex(dir)
	if err != nil {
		return Snapshot{}, false, err
	}
	defer func() { _ = db.Close() }()
	var s Snapshot
	var tsStr string
	err = db.QueryRowContext(ctx, selectLatestSnapshotSQL, key).Scan(&s.ID, &tsStr, &s.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	s.TS, _ = time.Parse(time.RFC3339Nano, tsStr)
	return s, true, nil
}

// ListSnapshots returns up to limit snapshots of the script, newest first.
func ListSnapshots(ctx context.Context, path string, limit int) ([]Snapshot, error) {
	dir, key, err := scriptKey(path)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	db, err := InitOrOpenIndex(dir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	rows, err := db.QueryContext(ctx, listSnapshotsSQL, key, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		var tsStr string
		if err := rows.Scan(&s.ID, &tsStr, &s.Text); err != nil {
			return nil, err
		}
		s.TS, _ = time.Parse(time.RFC3339Nano, tsStr)
		out = append(out, s)
	}
	return out, rows.Err()
}

// PruneSnapshots keeps at most keepLast snapshots of the script and deletes
// older ones.
func PruneSnapshots(ctx context.Context, path string, keepLast int) error {
	dir, key, err := scriptKey(path)
	if err != nil {
		return err
	}
	if keepLast < 0 {
		keepLast = 0
	}
	db, err := InitOrOpenIndex(dir)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	_, err = db.ExecContext(ctx, pruneOldSnapshotsSQL, key, key, keepLast)
	return err
}
