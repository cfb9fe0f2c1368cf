// Package render writes a site manifest in the formats read by documentation
// generators: JSON, YAML, a dumi .umirc.ts module and a Hugo config file.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	serrors "github.com/yyt520/ahooks-code-analysis/internal/errors"
	"github.com/yyt520/ahooks-code-analysis/internal/logfields"
	"github.com/yyt520/ahooks-code-analysis/internal/site"
)

// Format names an output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatUmi  Format = "umi"
	FormatHugo Format = "hugo"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatYAML, FormatUmi, FormatHugo}

// ParseFormat accepts a format name, case-insensitively. "yml" and "ts" are aliases.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "umi", "ts", "dumi":
		return FormatUmi, nil
	case "hugo":
		return FormatHugo, nil
	}
	return "", serrors.ValidationFailed("format", fmt.Sprintf("unknown format %q", raw))
}

// FileName is the conventional file name for the format.
func (f Format) FileName() string {
	switch f {
	case FormatJSON:
		return ".umirc.json"
	case FormatYAML:
		return ".umirc.yaml"
	case FormatUmi:
		return ".umirc.ts"
	case FormatHugo:
		return "hugo.yaml"
	}
	return ""
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatUmi:
		return "text/typescript; charset=utf-8"
	default:
		return "application/yaml; charset=utf-8"
	}
}

// Render writes cfg to w in the given format.
func Render(cfg *site.SiteConfig, format Format, w io.Writer) error {
	var err error
	switch format {
	case FormatJSON:
		err = renderJSON(cfg, w)
	case FormatYAML:
		err = renderYAML(cfg, w)
	case FormatUmi:
		err = renderUmi(cfg, w)
	case FormatHugo:
		err = renderHugo(cfg, w)
	default:
		return serrors.ValidationFailed("format", fmt.Sprintf("unknown format %q", format))
	}
	if err != nil {
		return serrors.RenderFailed(string(format), err)
	}
	return nil
}

// Bytes renders cfg into memory.
func Bytes(cfg *site.SiteConfig, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(cfg, format, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders cfg into dir under the format's conventional file name.
// The file is replaced atomically. It returns the written path.
func WriteFile(cfg *site.SiteConfig, format Format, dir string) (string, error) {
	data, err := Bytes(cfg, format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", serrors.FileSystemError("mkdir", dir, err)
	}

	target := filepath.Join(dir, format.FileName())
	tmp, err := os.CreateTemp(dir, "."+format.FileName()+".*.tmp")
	if err != nil {
		return "", serrors.FileSystemError("create", dir, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", serrors.FileSystemError("write", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return "", serrors.FileSystemError("close", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", serrors.FileSystemError("chmod", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", serrors.FileSystemError("rename", target, err)
	}

	slog.Debug("Rendered manifest", logfields.Format(string(format)), logfields.Path(target), slog.Int("bytes", len(data)))
	return target, nil
}

func renderJSON(cfg *site.SiteConfig, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

func renderYAML(cfg *site.SiteConfig, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
