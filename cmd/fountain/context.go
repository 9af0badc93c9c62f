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
	"path/filepath"
	"strings"
	"sync"

	"gofountain/internal/config"
	"gofountain/internal/crash"
	"gofountain/internal/fountain"
	"gofountain/internal/layout"
	applog "gofountain/internal/log"
	"gofountain/internal/storage"
	"gofountain/internal/textlayout"
)

// commandContext carries the global flags and the lazily loaded
// configuration shared by all commands.
type commandContext struct {
	configFlag   *string
	parserFlag   *string
	logLevelFlag *string
	session      *crash.Session

	configOnce sync.Once
	config     config.AppConfig
	configErr  error
}

func newCommandContext(configFlag, parserFlag, logLevelFlag *string, session *crash.Session) *commandContext {
	if session == nil {
		session = &crash.Session{}
	}
	return &commandContext{
		configFlag:   configFlag,
		parserFlag:   parserFlag,
		logLevelFlag: logLevelFlag,
		session:      session,
	}
}

// ensureConfig loads the configuration once, applies the flag overrides and
// initializes logging from the result.
func (c *commandContext) ensureConfig() (config.AppConfig, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if v := flagValue(c.parserFlag); v != "" {
			cfg.Parser.Type = strings.ToLower(v)
		}
		if v := flagValue(c.logLevelFlag); v != "" {
			cfg.Logging.Level = strings.ToLower(v)
		}
		if err := config.Validate(cfg); err != nil {
			c.configErr = err
			return
		}
		applog.Init(applog.Options{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.Source,
			File:      cfg.Logging.File,
		})
		c.config = cfg
	})
	return c.config, c.configErr
}

func flagValue(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// loadScript reads path with the configured parser and registers it with the
// crash session.
func (c *commandContext) loadScript(path string) (*fountain.Script, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	pt, err := fountain.ParseParserType(cfg.Parser.Type)
	if err != nil {
		return nil, err
	}
	return c.loadScriptWith(path, pt)
}

func (c *commandContext) loadScriptWith(path string, pt fountain.ParserType) (*fountain.Script, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	s := fountain.New(fountain.WithParser(pt), fountain.WithSuppressSceneNumbers(!cfg.Page.ShowSceneNumbers))
	c.session.ScriptPath = path
	c.session.Text = s.StringFromDocument
	if err := s.LoadFile(path); err != nil {
		return nil, err
	}
	applog.WithComponent("cli").Debug("script loaded",
		slog.String("path", path),
		slog.String("parser", pt.String()),
		slog.Int("elements", len(s.Elements)))
	return s, nil
}

// font is the configured body font.
func (c *commandContext) font() layout.Font {
	cfg, _ := c.ensureConfig()
	return layout.Font{Family: cfg.Font.Family, Size: cfg.Font.Size}
}

// measurer builds the text measurer named by kind for a script. With cache
// set, wrapped lines are persisted in the script's index. The returned close
// function releases the cache and is never nil.
func (c *commandContext) measurer(kind string, cache bool, scriptPath string) (layout.Measurer, func() error, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	noop := func() error { return nil }

	var m layout.Measurer
	name := strings.ToLower(strings.TrimSpace(kind))
	switch name {
	case "", "estimate":
		name = "estimate"
		m = layout.Monospace{}
	case "courier":
		m = textlayout.NewCourierMeasurer()
	case "face":
		lib := textlayout.NewFontLibrary()
		if p := strings.TrimSpace(cfg.Font.Path); p != "" {
			if err := lib.LoadTTF(cfg.Font.Family, 400, false, p); err != nil {
				return nil, nil, fmt.Errorf("load font %s: %w", p, err)
			}
			name = "face:" + filepath.Base(p)
		}
		m = textlayout.NewFaceMeasurer(textlayout.OTProvider{Lib: lib})
	default:
		return nil, nil, fmt.Errorf("unknown measurer %q", kind)
	}

	if !cache || scriptPath == "" {
		return layout.Cached(m), noop, nil
	}
	store, err := storage.OpenMeasureStore(filepath.Dir(scriptPath))
	if err != nil {
		// measuring without the persistent cache is still correct
		applog.WithComponent("cli").Warn("measurement cache unavailable", slog.Any("err", err))
		return layout.Cached(m), noop, nil
	}
	return layout.Cached(textlayout.Persist(m, name, store)), store.Close, nil
}
