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
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are rejected by the schema so typos surface early.

type ParserConfig struct {
	Type string `yaml:"type"` // "fast" | "regex"
}

// PageConfig is the page size in points.
type PageConfig struct {
	Width            float64 `yaml:"width"`
	Height           float64 `yaml:"height"`
	ShowSceneNumbers bool    `yaml:"show_scene_numbers"`
}

type FontConfig struct {
	Family string  `yaml:"family"`
	Size   float64 `yaml:"size"`
	// Path is a TrueType/OpenType file used by the "face" measurer.
	Path string `yaml:"path"`
}

type MeasurerConfig struct {
	Kind string `yaml:"kind"` // "estimate" | "courier" | "face"
}

// CacheConfig controls the persistent measurement cache in the script's
// .fountain index.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	Parser        ParserConfig   `yaml:"parser"`
	Page          PageConfig     `yaml:"page"`
	Font          FontConfig     `yaml:"font"`
	Measurer      MeasurerConfig `yaml:"measurer"`
	Cache         CacheConfig    `yaml:"cache"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults: US Letter, Courier 12.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Parser:        ParserConfig{Type: "fast"},
		Page:          PageConfig{Width: 612, Height: 792, ShowSceneNumbers: true},
		Font:          FontConfig{Family: "Courier", Size: 12},
		Measurer:      MeasurerConfig{Kind: "courier"},
		Cache:         CacheConfig{Enabled: true},
		Logging:       LoggingConfig{Level: "info", Format: "auto", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath = "FOUNTAIN_CONFIG"
	EnvParser     = "FOUNTAIN_PARSER"
	EnvPageWidth  = "FOUNTAIN_PAGE_WIDTH"
	EnvPageHeight = "FOUNTAIN_PAGE_HEIGHT"
	EnvFontFamily = "FOUNTAIN_FONT_FAMILY"
	EnvFontSize   = "FOUNTAIN_FONT_SIZE"
	EnvFontPath   = "FOUNTAIN_FONT_PATH"
	EnvMeasurer   = "FOUNTAIN_MEASURER"
	EnvCache      = "FOUNTAIN_CACHE"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "FOUNTAIN_LOG_LEVEL"
	EnvLogFormat = "FOUNTAIN_LOG_FORMAT"
	EnvLogSource = "FOUNTAIN_LOG_SOURCE"
	EnvLogFile   = "FOUNTAIN_LOG_FILE"
)

//go:embed schema.json
var schemaJSON []byte

// ValidationError lists the schema violations of a configuration document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// ConfigPath returns the per-user config file path. FOUNTAIN_CONFIG wins when
// set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoFountain")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoFountain")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "gofountain")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "gofountain")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the config file at path (the per-user file when path is empty),
// applies defaults and merges environment overrides. A missing file is not an
// error; a file that does not match the schema is.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		p, err := ConfigPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := validateYAML(data); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read config: %w", err)
	}
	applyEnvOverrides(&cfg)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the config YAML to path, the per-user file when path is empty.
func Save(cfg AppConfig, path string) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate checks cfg against the embedded JSON schema.
func Validate(cfg AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return validateYAML(data)
}

func validateYAML(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if doc == nil {
		// empty file
		doc = map[string]any{}
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if res.Valid() {
		return nil
	}
	verr := &ValidationError{}
	for _, e := range res.Errors() {
		verr.Problems = append(verr.Problems, e.String())
	}
	return verr
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if v := strings.ToLower(strings.TrimSpace(src.Parser.Type)); v != "" {
		dst.Parser.Type = v
	}
	if src.Page.Width != 0 {
		dst.Page.Width = src.Page.Width
	}
	if src.Page.Height != 0 {
		dst.Page.Height = src.Page.Height
	}
	// booleans: src starts from Defaults, so absent keys keep the default
	dst.Page.ShowSceneNumbers = src.Page.ShowSceneNumbers
	if v := strings.TrimSpace(src.Font.Family); v != "" {
		dst.Font.Family = v
	}
	if src.Font.Size != 0 {
		dst.Font.Size = src.Font.Size
	}
	if v := strings.TrimSpace(src.Font.Path); v != "" {
		dst.Font.Path = v
	}
	if v := strings.ToLower(strings.TrimSpace(src.Measurer.Kind)); v != "" {
		dst.Measurer.Kind = v
	}
	dst.Cache.Enabled = src.Cache.Enabled
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvParser)); v != "" {
		cfg.Parser.Type = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvPageWidth)); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Page.Width = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvPageHeight)); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Page.Height = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvFontFamily)); v != "" {
		cfg.Font.Family = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFontSize)); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Font.Size = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvFontPath)); v != "" {
		cfg.Font.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMeasurer)); v != "" {
		cfg.Measurer.Kind = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvCache)); v != "" {
		cfg.Cache.Enabled = truthy(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"parser.type":    EnvParser,
	"page.width":     EnvPageWidth,
	"page.height":    EnvPageHeight,
	"font.family":    EnvFontFamily,
	"font.size":      EnvFontSize,
	"font.path":      EnvFontPath,
	"measurer.kind":  EnvMeasurer,
	"cache.enabled":  EnvCache,
	"logging.level":  EnvLogLevel,
	"logging.format": EnvLogFormat,
	"logging.source": EnvLogSource,
	"logging.file":   EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
