/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gofountain/internal/layout"
	applog "gofountain/internal/log"
	"gofountain/internal/storage"
)

// Store keeps wrapped lines between runs. *storage.MeasureStore implements it.
type Store interface {
	LookupMeasurement(ctx context.Context, k storage.MeasureKey) ([]string, bool, error)
	StoreMeasurement(ctx context.Context, k storage.MeasureKey, lines []string) error
}

const storeTimeout = 2 * time.Second

// Persistent answers from a Store and falls through to the wrapped measurer
// on a miss, recording its result. A failing store is logged and bypassed so
// measurement never fails because of the cache.
type Persistent struct {
	m     layout.Measurer
	name  string
	store Store
	l     *slog.Logger

	mu           sync.Mutex
	hits, misses int
}

// Persist wraps m. name identifies the measurer in stored keys.
func Persist(m layout.Measurer, name string, store Store) *Persistent {
	return &Persistent{
		m:     m,
		name:  name,
		store: store,
		l:     applog.WithOperation(applog.WithComponent("textlayout"), "persist").With(slog.String("measurer", name)),
	}
}

func (p *Persistent) Wrap(text string, f layout.Font, maxWidth float64) ([]string, error) {
	k := storage.MeasureKey{Measurer: p.name, Family: f.Family, Size: f.Size, Width: maxWidth, Text: text}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if p.store != nil {
		lines, ok, err := p.store.LookupMeasurement(ctx, k)
		switch {
		case err != nil:
			p.l.Warn("measurement lookup failed", slog.Any("err", err))
		case ok:
			p.count(true)
			return lines, nil
		}
	}
	lines, err := layout.Measure(p.m, text, f, maxWidth)
	if err != nil {
		return nil, err
	}
	p.count(false)
	if p.store != nil {
		if err := p.store.StoreMeasurement(ctx, k, lines); err != nil {
			p.l.Warn("measurement store failed", slog.Any("err", err))
		}
	}
	return lines, nil
}

func (p *Persistent) Lines(text string, f layout.Font, maxWidth float64) (int, error) {
	lines, err := p.Wrap(text, f, maxWidth)
	return len(lines), err
}

func (p *Persistent) count(hit bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if hit {
		p.hits++
	} else {
		p.misses++
	}
}

// Stats returns how many wraps were answered from the store and how many
// were measured.
func (p *Persistent) Stats() (hits, misses int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits, p.misses
}
