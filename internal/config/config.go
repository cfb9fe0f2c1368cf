// Package config loads a site manifest from YAML or JSON files.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	serrors "github.com/yyt520/ahooks-code-analysis/internal/errors"
	"github.com/yyt520/ahooks-code-analysis/internal/logfields"
	"github.com/yyt520/ahooks-code-analysis/internal/site"
)

// Load reads, normalizes and validates the manifest at path. The file format
// is chosen by extension: .json is JSON, anything else is YAML.
func Load(path string) (*site.SiteConfig, error) {
	cfg, err := Decode(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode reads and normalizes the manifest at path without validating it.
func Decode(path string) (*site.SiteConfig, error) {
	if loaded, err := loadEnvFiles(filepath.Dir(path)); err != nil {
		slog.Debug("Environment files not loaded", logfields.Error(err))
	} else if len(loaded) > 0 {
		slog.Debug("Loaded environment files", slog.Any("files", loaded))
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, serrors.ConfigNotFound(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, serrors.FileSystemError("read", path, err)
	}

	expanded := expandEnv(data)

	var cfg site.SiteConfig
	if isJSON(path) {
		err = decodeJSON(bytes.NewReader(expanded), &cfg)
	} else {
		err = decodeYAML(bytes.NewReader(expanded), &cfg)
	}
	if err != nil {
		return nil, serrors.ConfigDecode(path, err)
	}

	normalize(&cfg)
	return &cfg, nil
}

// envRef matches ${NAME}. Bare $NAME and other dollar signs are literal text.
var envRef = regexp.MustCompile(`\$\{[A-Za-z_][A-Za-z0-9_]*\}`)

// expandEnv substitutes set environment variables for ${NAME} references.
// References to unset variables are left as written.
func expandEnv(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		if v, ok := os.LookupEnv(string(ref[2 : len(ref)-1])); ok {
			return []byte(v)
		}
		return ref
	})
}

// LoadOrDefault loads path, or returns the built-in manifest when path is empty.
func LoadOrDefault(path string) (*site.SiteConfig, error) {
	if path == "" {
		return site.Default(), nil
	}
	return Load(path)
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func decodeYAML(r io.Reader, cfg *site.SiteConfig) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("file is empty")
		}
		return err
	}
	return nil
}

func decodeJSON(r io.Reader, cfg *site.SiteConfig) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("file is empty")
		}
		return err
	}
	return nil
}

// normalize trims string fields and canonicalizes the mode. An unknown mode
// is kept so Validate reports it with the other problems.
func normalize(cfg *site.SiteConfig) {
	for _, s := range []*string{&cfg.Title, &cfg.Favicon, &cfg.Logo, &cfg.OutputPath, &cfg.Base, &cfg.PublicPath} {
		*s = strings.TrimSpace(*s)
	}
	cfg.Mode = site.Mode(strings.TrimSpace(string(cfg.Mode)))
	if mode, err := site.ParseMode(string(cfg.Mode)); err == nil {
		cfg.Mode = mode
	}
	for i := range cfg.Navs {
		cfg.Navs[i].Title = strings.TrimSpace(cfg.Navs[i].Title)
		cfg.Navs[i].Path = strings.TrimSpace(cfg.Navs[i].Path)
	}
	for i := range cfg.Locales {
		cfg.Locales[i].Code = strings.TrimSpace(cfg.Locales[i].Code)
	}
	for section, entries := range cfg.Menus {
		for gi := range entries {
			for ci, child := range entries[gi].Children {
				entries[gi].Children[ci] = strings.Trim(strings.TrimSpace(child), "/")
			}
		}
		cfg.Menus[section] = entries
	}
}

// Init writes the built-in manifest to path as YAML (or JSON for .json).
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return serrors.New(serrors.CategoryConfig, serrors.SeverityFatal,
			"configuration file already exists (use --force to overwrite)").
			WithContext("path", path)
	}

	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(site.Default(), "", "  ")
		data = append(data, '\n')
	} else {
		data, err = marshalYAML(site.Default())
	}
	if err != nil {
		return serrors.InternalError("failed to marshal default manifest", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return serrors.FileSystemError("mkdir", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return serrors.FileSystemError("write", path, fmt.Errorf("write config: %w", err))
	}
	return nil
}

func marshalYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
