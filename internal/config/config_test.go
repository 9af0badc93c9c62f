/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate points the per-user config at a temp file and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigPath, p)
	for _, env := range envKeys {
		t.Setenv(env, "")
	}
	return p
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("expected defaults, got %#v", cfg)
	}
}

func TestEnvOverridesPage(t *testing.T) {
	isolate(t)
	t.Setenv(EnvPageWidth, "595")
	t.Setenv(EnvPageHeight, "842")
	t.Setenv(EnvParser, "REGEX")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Page.Width != 595 || cfg.Page.Height != 842 {
		t.Fatalf("page = %+v, want A4", cfg.Page)
	}
	if cfg.Parser.Type != "regex" {
		t.Fatalf("Parser.Type = %q", cfg.Parser.Type)
	}
	if env, ok := EnvOverrideFor("page.width"); !ok || env != EnvPageWidth {
		t.Fatalf("EnvOverrideFor(page.width) = %q %v", env, ok)
	}
	if _, ok := EnvOverrideFor("font.family"); ok {
		t.Fatalf("font.family is not overridden")
	}
}

func TestEnvOverrideUnparsableNumberIgnored(t *testing.T) {
	isolate(t)
	t.Setenv(EnvFontSize, "twelve")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Font.Size != 12 {
		t.Fatalf("Font.Size = %v", cfg.Font.Size)
	}
}

func TestEnvOverrideInvalidValueRejected(t *testing.T) {
	isolate(t)
	t.Setenv(EnvPageWidth, "-1")
	_, err := Load("")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestLoadFileMergesAndKeepsDefaults(t *testing.T) {
	p := isolate(t)
	doc := "parser:\n  type: regex\nmeasurer:\n  kind: face\nfont:\n  family: Go Mono\n  path: /fonts/GoMono.ttf\n"
	if err := os.WriteFile(p, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Parser.Type != "regex" || cfg.Measurer.Kind != "face" || cfg.Font.Family != "Go Mono" || cfg.Font.Path != "/fonts/GoMono.ttf" {
		t.Fatalf("file values not merged: %#v", cfg)
	}
	// absent keys keep defaults, including booleans
	if cfg.Font.Size != 12 || !cfg.Cache.Enabled || !cfg.Page.ShowSceneNumbers {
		t.Fatalf("defaults lost: %#v", cfg)
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	isolate(t)
	p := filepath.Join(t.TempDir(), "bad.yaml")
	doc := "page:\n  width: 0\nmeasurer:\n  kind: laser\nunknown: 1\n"
	if err := os.WriteFile(p, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(p)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Problems) < 3 {
		t.Fatalf("expected three problems, got %v", verr.Problems)
	}
	if !strings.Contains(err.Error(), "bad.yaml") {
		t.Fatalf("error should name the file: %v", err)
	}
}

func TestEmptyFileIsValid(t *testing.T) {
	p := isolate(t)
	if err := os.WriteFile(p, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(""); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	p := isolate(t)
	cfg := Defaults()
	cfg.Page.Width = 595
	cfg.Cache.Enabled = false
	cfg.Logging.Level = "debug"
	if err := Save(cfg, ""); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	got, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != cfg {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, cfg)
	}
	bad := Defaults()
	bad.Measurer.Kind = "laser"
	if err := Save(bad, ""); err == nil {
		t.Fatalf("Save must validate")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/fountain.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/fountain.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/fountain.log")
	t.Setenv(EnvCache, "off")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/fountain.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
	if cfg.Cache.Enabled {
		t.Fatalf("FOUNTAIN_CACHE=off should disable the cache")
	}
}
