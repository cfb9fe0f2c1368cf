// Package pages cross-checks a site manifest against the Markdown docs
// tree: every sidebar child must resolve to a page file, and every page
// under a section root should be listed in a menu.
package pages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/inful/mdfp"

	serrors "github.com/yyt520/ahooks-code-analysis/internal/errors"
	"github.com/yyt520/ahooks-code-analysis/internal/logfields"
	"github.com/yyt520/ahooks-code-analysis/internal/site"
)

// Meta is what the checker reads from one page file.
type Meta struct {
	Title       string `json:"title,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	// Stale is set when the file stores a fingerprint that no longer matches its content.
	Stale bool `json:"stale,omitempty"`
}

// Result is the outcome for one sidebar child.
type Result struct {
	Section string `json:"section"`
	Group   string `json:"group"`
	Page    string `json:"page"`
	File    string `json:"file,omitempty"`
	Found   bool   `json:"found"`
	Meta
	Error string `json:"error,omitempty"`
}

// Report collects the results of Check.
type Report struct {
	DocsDir  string    `json:"docsDir"`
	Revision *Revision `json:"revision,omitempty"`
	Pages    []Result  `json:"pages"`
	Orphans  []string  `json:"orphans,omitempty"`
}

// Missing returns the results whose page file was not found or could not be read.
func (r *Report) Missing() []Result {
	var out []Result
	for _, p := range r.Pages {
		if !p.Found || p.Error != "" {
			out = append(out, p)
		}
	}
	return out
}

// HasErrors reports whether any listed page is missing or unreadable.
func (r *Report) HasErrors() bool { return len(r.Missing()) > 0 }

// HasWarnings reports orphan pages or stale fingerprints.
func (r *Report) HasWarnings() bool {
	if len(r.Orphans) > 0 {
		return true
	}
	for _, p := range r.Pages {
		if p.Stale {
			return true
		}
	}
	return false
}

// Err joins one classified error per missing page, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, p := range r.Missing() {
		e := serrors.PageMissing(p.Page).WithContext("section", p.Section)
		if p.Error != "" {
			e = e.WithContext("reason", p.Error)
		}
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// WriteText prints a human-readable summary.
func (r *Report) WriteText(w io.Writer) error {
	found := len(r.Pages) - len(r.Missing())
	if _, err := fmt.Fprintf(w, "Checked %d pages in %s: %d found, %d missing, %d orphaned\n",
		len(r.Pages), r.DocsDir, found, len(r.Missing()), len(r.Orphans)); err != nil {
		return err
	}
	if r.Revision != nil {
		_, _ = fmt.Fprintf(w, "  at %s %s\n", r.Revision.Short(), r.Revision.Branch)
	}
	for _, p := range r.Pages {
		switch {
		case !p.Found:
			_, _ = fmt.Fprintf(w, "  MISSING  %s (%s / %s)\n", p.Page, p.Section, p.Group)
		case p.Error != "":
			_, _ = fmt.Fprintf(w, "  ERROR    %s: %s\n", p.Page, p.Error)
		case p.Stale:
			_, _ = fmt.Fprintf(w, "  STALE    %s: stored fingerprint does not match content\n", p.Page)
		}
	}
	for _, o := range r.Orphans {
		_, _ = fmt.Fprintf(w, "  ORPHAN   %s\n", o)
	}
	return nil
}

// WriteJSON prints the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Resolve finds the Markdown file for a page path such as
// "hooks/dom/useSize". Candidates are tried in order: <page>.md,
// <page>.<locale>.md, <page>/index.md, <page>/index.<locale>.md.
// Candidates outside docsDir are never returned.
func Resolve(docsDir, page string, locales []site.Locale) (string, bool) {
	rel := filepath.FromSlash(strings.Trim(page, "/"))
	bases := []string{rel, filepath.Join(rel, "index")}
	for _, base := range bases {
		candidates := []string{base + ".md"}
		for _, l := range locales {
			candidates = append(candidates, base+"."+l.Code+".md")
		}
		for _, c := range candidates {
			path := filepath.Join(docsDir, c)
			if !within(docsDir, path) {
				continue
			}
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				return path, true
			}
		}
	}
	return "", false
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ReadMeta reads the title and fingerprint of a page file.
func ReadMeta(path string) (Meta, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, err
	}
	raw, body, _, err := splitFrontmatter(content)
	if err != nil {
		return Meta{}, err
	}
	fields, err := parseFrontmatter(raw)
	if err != nil {
		return Meta{}, fmt.Errorf("parse frontmatter: %w", err)
	}

	var m Meta
	if t, ok := fields["title"].(string); ok {
		m.Title = strings.TrimSpace(t)
	}
	if m.Title == "" {
		m.Title = firstHeading(body)
	}

	m.Fingerprint, err = fingerprint(fields, body)
	if err != nil {
		return Meta{}, fmt.Errorf("fingerprint: %w", err)
	}
	if stored, ok := fields[mdfp.FingerprintField].(string); ok && stored != "" && stored != m.Fingerprint {
		m.Stale = true
	}
	return m, nil
}

// Check resolves every sidebar child of cfg under docsDir and lists pages
// under the section roots that no menu references. The returned error is
// only set for problems with docsDir itself or cancellation; missing pages
// are recorded in the report (see Report.Err).
func Check(ctx context.Context, cfg *site.SiteConfig, docsDir string) (*Report, error) {
	info, err := os.Stat(docsDir)
	if err != nil {
		return nil, serrors.FileSystemError("stat", docsDir, err)
	}
	if !info.IsDir() {
		return nil, serrors.FileSystemError("stat", docsDir, errors.New("not a directory"))
	}

	report := &Report{DocsDir: docsDir}
	if rev, err := ReadRevision(docsDir); err != nil {
		slog.Warn("Could not read docs revision", logfields.Path(docsDir), logfields.Error(err))
	} else {
		report.Revision = rev
	}
	listed := make(map[string]bool)
	for _, p := range cfg.Pages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		listed[strings.Trim(p.Path, "/")] = true

		res := Result{Section: p.Section, Group: p.Group, Page: p.Path}
		if file, ok := Resolve(docsDir, p.Path, cfg.Locales); ok {
			res.Found = true
			res.File = file
			meta, err := ReadMeta(file)
			if err != nil {
				res.Error = err.Error()
			} else {
				res.Meta = meta
			}
		} else {
			slog.Debug("Page not found", logfields.Page(p.Path), logfields.Section(p.Section))
		}
		report.Pages = append(report.Pages, res)
	}

	for _, root := range cfg.SectionRoots() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		orphans, err := findOrphans(docsDir, root, listed, cfg.Locales)
		if err != nil {
			return nil, err
		}
		report.Orphans = append(report.Orphans, orphans...)
	}
	slices.Sort(report.Orphans)

	slog.Info("Docs tree checked",
		logfields.Path(docsDir),
		logfields.Pages(len(report.Pages)),
		slog.Int("missing", len(report.Missing())),
		slog.Int("orphans", len(report.Orphans)))
	return report, nil
}

// findOrphans walks <docsDir>/<section> and returns Markdown files (relative
// to docsDir, slash-separated) whose page key is not listed.
func findOrphans(docsDir, section string, listed map[string]bool, locales []site.Locale) ([]string, error) {
	root := filepath.Join(docsDir, filepath.FromSlash(strings.Trim(section, "/")))
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, nil
	}

	var orphans []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		rel, err := filepath.Rel(docsDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !listed[pageKey(rel, locales)] {
			orphans = append(orphans, rel)
		}
		return nil
	})
	if err != nil {
		return nil, serrors.FileSystemError("walk", root, err)
	}
	return orphans, nil
}

// pageKey maps a docs-relative file such as "hooks/dom/useSize/index.zh-CN.md"
// to the page path "hooks/dom/useSize".
func pageKey(rel string, locales []site.Locale) string {
	key := strings.TrimSuffix(rel, filepath.Ext(rel))
	for _, l := range locales {
		if strings.HasSuffix(key, "."+l.Code) {
			key = strings.TrimSuffix(key, "."+l.Code)
			break
		}
	}
	if key == "index" {
		return ""
	}
	return strings.TrimSuffix(key, "/index")
}
