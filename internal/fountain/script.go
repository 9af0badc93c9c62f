/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import (
	"net/url"
	"time"

	applog "gofountain/internal/log"
	"gofountain/internal/storage"
)

// Script is a parsed screenplay: one title page and the body elements.
// Loading replaces both wholesale. A Script is not safe for concurrent
// mutation.
type Script struct {
	Filename             string
	TitlePage            TitlePage
	Elements             []Element
	SuppressSceneNumbers bool

	parser ParserType
}

// Option configures a Script.
type Option func(*Script)

// WithParser selects the classification strategy used by every load.
func WithParser(t ParserType) Option { return func(s *Script) { s.parser = t } }

// WithSuppressSceneNumbers hides scene numbers in paginated output.
func WithSuppressSceneNumbers(v bool) Option {
	return func(s *Script) { s.SuppressSceneNumbers = v }
}

// New returns an empty Script.
func New(opts ...Option) *Script {
	s := &Script{}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewFromString parses text into a new Script.
func NewFromString(text string, opts ...Option) *Script {
	s := New(opts...)
	s.LoadString(text)
	return s
}

// NewFromFile reads and parses the file at path. On error the returned Script
// is empty and the error is a *FileError.
func NewFromFile(path string, opts ...Option) (*Script, error) {
	s := New(opts...)
	err := s.LoadFile(path)
	return s, err
}

// Parser reports the strategy this Script parses with.
func (s *Script) Parser() ParserType { return s.parser }

// LoadString parses text and replaces the title page and elements.
func (s *Script) LoadString(text string) {
	start := time.Now()
	tp, els := NewParser(s.parser).Parse(text)
	s.TitlePage = tp
	s.Elements = els
	applog.WithOperation(applog.WithComponent("fountain"), "parse").Debug("script parsed",
		"parser", s.parser.String(),
		"elements", len(els),
		"title_entries", len(tp),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// LoadBytes decodes raw source bytes (UTF-8, or UTF-16 with a BOM) and parses
// them. Undecodable input resets the Script and returns a *FileError.
func (s *Script) LoadBytes(b []byte) error {
	text, err := decode(b)
	if err != nil {
		s.reset()
		return &FileError{Path: s.Filename, Err: err}
	}
	s.LoadString(text)
	return nil
}

// LoadFile reads and parses the file at path.
func (s *Script) LoadFile(path string) error {
	s.Filename = path
	b, err := storage.ReadScript(path)
	if err != nil {
		s.reset()
		return &FileError{Path: path, Err: err}
	}
	return s.LoadBytes(b)
}

// LoadURL loads a script from a file URL.
func (s *Script) LoadURL(u *url.URL) error {
	path, err := storage.ScriptFromURL(u)
	if err != nil {
		s.reset()
		return &FileError{Path: u.String(), Err: err}
	}
	return s.LoadFile(path)
}

// WriteToFile serializes the document and stores it at path.
func (s *Script) WriteToFile(path string) error {
	if err := storage.WriteScript(path, []byte(s.StringFromDocument())); err != nil {
		return err
	}
	s.Filename = path
	return nil
}

// WriteToURL serializes the document to a file URL.
func (s *Script) WriteToURL(u *url.URL) error {
	path, err := storage.ScriptFromURL(u)
	if err != nil {
		return err
	}
	return s.WriteToFile(path)
}

func (s *Script) reset() {
	s.TitlePage = nil
	s.Elements = nil
}
