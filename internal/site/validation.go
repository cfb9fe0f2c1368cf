package site

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/language"

	serrors "github.com/yyt520/ahooks-code-analysis/internal/errors"
)

// Validate checks the schema and the referential consistency of the
// manifest. All problems are reported, joined with errors.Join; each member
// is a *errors.SiteError.
func (c *SiteConfig) Validate() error {
	v := &manifestValidator{config: c}
	v.validateMetadata()
	v.validatePaths()
	v.validateNavs()
	v.validateLocales()
	v.validateMenus()
	return errors.Join(v.errs...)
}

// manifestValidator accumulates problems across the manifest sections.
type manifestValidator struct {
	config *SiteConfig
	errs   []error
}

func (v *manifestValidator) add(err error) { v.errs = append(v.errs, err) }

func (v *manifestValidator) validateMetadata() {
	c := v.config
	if strings.TrimSpace(c.Title) == "" {
		v.add(serrors.FieldRequired("title"))
	}
	for _, f := range []struct{ name, value string }{{"favicon", c.Favicon}, {"logo", c.Logo}} {
		field, value := f.name, f.value
		if strings.TrimSpace(value) == "" {
			v.add(serrors.FieldRequired(field))
			continue
		}
		if u, err := url.Parse(value); err != nil || u.Scheme == "" || u.Host == "" {
			v.add(serrors.ValidationFailed(field, "must be an absolute URL"))
		}
	}
	switch {
	case c.Mode == "":
		v.add(serrors.FieldRequired("mode"))
	case !c.Mode.Valid():
		v.add(serrors.ValidationFailed("mode", fmt.Sprintf("unknown mode %q", c.Mode)))
	}
}

func (v *manifestValidator) validatePaths() {
	c := v.config
	switch {
	case strings.TrimSpace(c.OutputPath) == "":
		v.add(serrors.FieldRequired("outputPath"))
	case path.IsAbs(c.OutputPath):
		v.add(serrors.ValidationFailed("outputPath", "must be relative"))
	case path.Clean(c.OutputPath) == ".." || strings.HasPrefix(path.Clean(c.OutputPath), "../"):
		v.add(serrors.ValidationFailed("outputPath", "must not escape the project directory"))
	}
	for _, f := range []struct{ name, value string }{{"base", c.Base}, {"publicPath", c.PublicPath}} {
		field, value := f.name, f.value
		if value == "" {
			v.add(serrors.FieldRequired(field))
			continue
		}
		if !strings.HasPrefix(value, "/") || !strings.HasSuffix(value, "/") {
			v.add(serrors.ValidationFailed(field, "must start and end with '/'"))
		}
	}
}

func (v *manifestValidator) validateNavs() {
	if len(v.config.Navs) == 0 {
		v.add(serrors.FieldRequired("navs"))
		return
	}
	for i, n := range v.config.Navs {
		field := fmt.Sprintf("navs[%d]", i)
		if strings.TrimSpace(n.Title) == "" {
			v.add(serrors.ValidationFailed(field+".title", "must not be empty"))
		}
		if strings.TrimSpace(n.Path) == "" {
			v.add(serrors.ValidationFailed(field+".path", "must not be empty"))
		}
	}
}

func (v *manifestValidator) validateLocales() {
	if len(v.config.Locales) == 0 {
		v.add(serrors.FieldRequired("locales"))
		return
	}
	seen := make(map[string]bool, len(v.config.Locales))
	for i, l := range v.config.Locales {
		field := fmt.Sprintf("locales[%d]", i)
		if !WellFormedLocale(l.Code) {
			v.add(serrors.ValidationFailed(field, fmt.Sprintf("malformed locale code %q", l.Code)))
		}
		if strings.TrimSpace(l.Label) == "" {
			v.add(serrors.ValidationFailed(field, "label must not be empty"))
		}
		key := strings.ToLower(l.Code)
		if seen[key] {
			v.add(serrors.ValidationFailed(field, fmt.Sprintf("duplicate locale %q", l.Code)))
		}
		seen[key] = true
	}
}

func (v *manifestValidator) validateMenus() {
	c := v.config
	if c.Menus == nil {
		v.add(serrors.FieldRequired("menus"))
		return
	}

	navs := make(map[string]NavItem, len(c.Navs))
	for _, n := range c.Navs {
		navs[n.Path] = n
	}

	owner := make(map[string]string)
	for _, section := range c.SectionRoots() {
		nav, ok := navs[section]
		switch {
		case !ok:
			v.add(serrors.DanglingReference("menus", section).
				WithContext("reason", "no nav entry has this path"))
		case nav.IsExternal():
			v.add(serrors.ValidationFailed("menus", fmt.Sprintf("section %q points to an external URL", section)))
		}

		for gi, entry := range c.Menus[section] {
			field := fmt.Sprintf("menus[%s][%d]", section, gi)
			if strings.TrimSpace(entry.Title) == "" {
				v.add(serrors.ValidationFailed(field+".title", "must not be empty"))
			}
			if len(entry.Children) == 0 {
				v.add(serrors.ValidationFailed(field+".children", "must list at least one page"))
			}
			for _, child := range entry.Children {
				if strings.TrimSpace(child) == "" {
					v.add(serrors.ValidationFailed(field+".children", "page path must not be empty"))
					continue
				}
				if reason := pagePathProblem(child); reason != "" {
					v.add(serrors.ValidationFailed(field+".children", fmt.Sprintf("page %q %s", child, reason)))
					continue
				}
				if prev, dup := owner[child]; dup {
					v.add(serrors.ValidationFailed(field+".children",
						fmt.Sprintf("page %q already listed in %s", child, prev)))
					continue
				}
				owner[child] = field
			}
		}
	}
}

// pagePathProblem describes why a sidebar child cannot name a page inside
// the docs tree, or returns "" when it can.
func pagePathProblem(child string) string {
	switch {
	case strings.Contains(child, `\`):
		return "must use forward slashes"
	case path.IsAbs(child):
		return "must be relative to the docs directory"
	}
	for _, seg := range strings.Split(child, "/") {
		if seg == ".." {
			return "must not contain '..'"
		}
	}
	return ""
}

// WellFormedLocale reports whether code is a BCP 47 tag in canonical
// spelling, ignoring case ("zh-CN", "en", "pt-BR").
func WellFormedLocale(code string) bool {
	if code == "" || strings.Contains(code, "_") {
		return false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return false
	}
	return strings.EqualFold(tag.String(), code)
}
