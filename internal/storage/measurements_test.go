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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasureStore(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, err := OpenMeasureStore(dir)
	require.NoError(t, err)

	k := MeasureKey{Measurer: "courier", Family: "Courier", Size: 12, Width: 432, Text: "Brick sits."}
	_, ok, err := s.LookupMeasurement(ctx, k)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.StoreMeasurement(ctx, k, []string{"Brick", "sits."}))
	lines, ok, err := s.LookupMeasurement(ctx, k)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"Brick", "sits."}, lines)

	// a different width is a different measurement
	k2 := k
	k2.Width = 216
	_, ok, err = s.LookupMeasurement(ctx, k2)
	require.NoError(t, err)
	assert.False(t, ok)

	// overwrite
	require.NoError(t, s.StoreMeasurement(ctx, k, []string{"Brick sits."}))
	lines, _, _ = s.LookupMeasurement(ctx, k)
	assert.Equal(t, []string{"Brick sits."}, lines)

	assert.Error(t, s.StoreMeasurement(ctx, k, nil))
	require.NoError(t, s.Close())

	// persisted across reopen
	s, err = OpenMeasureStore(dir)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, s.Clear(ctx))
	n, _ = s.Count(ctx)
	assert.Equal(t, 0, n)
}
