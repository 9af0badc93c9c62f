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
	"strings"
)

// language=SQL
// dialect=SQLite
const selectMeasurementSQL = `SELECT lines FROM measurements WHERE measurer = ? AND family = ? AND size = ? AND width = ? AND text = ?`

// language=SQL
// dialect=SQLite
const upsertMeasurementSQL = `INSERT INTO measurements(measurer, family, size, width, text, lines) VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(measurer, family, size, width, text) DO UPDATE SET lines = excluded.lines`

// MeasureKey identifies one wrapped text. Measurer names the metrics source
// so results of different measurers never mix.
type MeasureKey struct {
	Measurer string
	Family   string
	Size     float64
	Width    float64
	Text     string
}

// MeasureStore persists wrapped lines in the index of one directory. It keeps
// the database open until Close.
type MeasureStore struct {
	db *sql.DB
}

// OpenMeasureStore opens the measurement table of the index in dir.
func OpenMeasureStore(dir string) (*MeasureStore, error) {
	db, err := InitOrOpenIndex(dir)
	if err != nil {
		return nil, err
	}
	return &MeasureStore{db: db}, nil
}

// LookupMeasurement returns the stored lines for k, or false when none are
// stored.
func (s *MeasureStore) LookupMeasurement(ctx context.Context, k MeasureKey) ([]string, bool, error) {
	var joined string
	err := s.db.QueryRowContext(ctx, selectMeasurementSQL, k.Measurer, k.Family, k.Size, k.Width, k.Text).Scan(&joined)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup measurement: %w", err)
	}
	return strings.Split(joined, "\n"), true, nil
}

// StoreMeasurement records lines for k. Lines must not contain newlines.
func (s *MeasureStore) StoreMeasurement(ctx context.Context, k MeasureKey, lines []string) error {
	if len(lines) == 0 {
		return errors.New("no lines to store")
	}
	if _, err := s.db.ExecContext(ctx, upsertMeasurementSQL, k.Measurer, k.Family, k.Size, k.Width, k.Text, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("store measurement: %w", err)
	}
	return nil
}

// Count returns the number of stored measurements.
func (s *MeasureStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM measurements`).Scan(&n)
	return n, err
}

// Clear drops every stored measurement.
func (s *MeasureStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM measurements`)
	return err
}

func (s *MeasureStore) Close() error {
	return s.db.Close()
}
