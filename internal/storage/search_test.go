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
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func seedElements() []Document {
	return []Document{
		{Ordinal: 0, Kind: "SceneHeading", Scene: "INT. HOUSE - DAY", Text: "INT. HOUSE - DAY"},
		{Ordinal: 1, Kind: "Action", Scene: "INT. HOUSE - DAY", Text: "Brick sits on the couch with waves of boredom."},
		{Ordinal: 2, Kind: "Character", Scene: "INT. HOUSE - DAY", Character: "BRICK", Text: "BRICK"},
		{Ordinal: 3, Kind: "Dialogue", Scene: "INT. HOUSE - DAY", Character: "BRICK", Text: "Hello there, Steel."},
		{Ordinal: 4, Kind: "SceneHeading", Scene: "EXT. BEACH - NIGHT", Text: "EXT. BEACH - NIGHT"},
		{Ordinal: 5, Kind: "Dialogue", Scene: "EXT. BEACH - NIGHT", Character: "STEEL", Text: "Hello yourself. Watch the waves."},
	}
}

func TestSearchElements(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "brick.fountain")
	ctx := context.Background()
	require.NoError(t, IndexElements(ctx, path, seedElements()))

	res, err := Search(ctx, path, SearchQuery{Text: "hello"})
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Equal(t, 3, res[0].Ordinal)
	require.Equal(t, "STEEL", res[1].Character)

	res, err = Search(ctx, path, SearchQuery{Text: "waves", Kinds: []string{"Dialogue"}})
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Equal(t, 5, res[0].Ordinal)

	res, err = Search(ctx, path, SearchQuery{Character: "brick"})
	require.NoError(t, err)
	var got []int
	for _, r := range res {
		got = append(got, r.Ordinal)
	}
	if diff := cmp.Diff([]int{2, 3}, got); diff != "" {
		t.Fatalf("character filter mismatch (-want +got):\n%s", diff)
	}

	res, err = Search(ctx, path, SearchQuery{Scene: "beach", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Equal(t, 5, res[0].Ordinal)
}

func TestIndexElementsReplacesPrevious(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "brick.fountain")
	other := filepath.Join(root, "steel.fountain")
	ctx := context.Background()
	require.NoError(t, IndexElements(ctx, path, seedElements()))
	require.NoError(t, IndexElements(ctx, other, seedElements()[:2]))
	require.NoError(t, IndexElements(ctx, path, []Document{{Ordinal: 0, Kind: "Action", Text: "Only the rain."}}))

	res, err := Search(ctx, path, SearchQuery{Text: "hello"})
	require.NoError(t, err)
	require.Empty(t, res, "old elements must leave the full-text index")

	res, err = Search(ctx, path, SearchQuery{Text: "rain"})
	require.NoError(t, err)
	require.Len(t, res, 1)

	res, err = Search(ctx, other, SearchQuery{})
	require.NoError(t, err)
	require.Len(t, res, 2)
}

func TestLikeContainsEscapes(t *testing.T) {
	require.Equal(t, `%50\%\_off%`, likeContains("50%_off"))
	require.Equal(t, "?,?,?", placeholders(3))
	require.Equal(t, "", placeholders(0))
}
