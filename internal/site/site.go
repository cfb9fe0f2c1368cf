// Package site defines the typed configuration manifest consumed by the
// documentation-site generator: metadata, top navigation, locales and the
// sidebar menus per section.
//
// A SiteConfig is built once (Default or config.Load) and treated as
// immutable afterwards. Accessors that expose slices or maps return copies.
package site

import (
	"slices"
	"strings"
)

// SiteConfig is the whole manifest.
type SiteConfig struct {
	Title      string                 `json:"title" yaml:"title"`
	Favicon    string                 `json:"favicon" yaml:"favicon"`
	Logo       string                 `json:"logo" yaml:"logo"`
	OutputPath string                 `json:"outputPath" yaml:"outputPath"`
	Mode       Mode                   `json:"mode" yaml:"mode"`
	Hash       bool                   `json:"hash" yaml:"hash"`
	Base       string                 `json:"base" yaml:"base"`
	PublicPath string                 `json:"publicPath" yaml:"publicPath"`
	Navs       []NavItem              `json:"navs" yaml:"navs"`
	Locales    []Locale               `json:"locales" yaml:"locales"`
	Menus      map[string][]MenuEntry `json:"menus" yaml:"menus"`
}

// NavItem is a top navigation link. Path is either an internal route
// ("/hooks") or an external URL.
type NavItem struct {
	Title string `json:"title" yaml:"title"`
	Path  string `json:"path" yaml:"path"`
}

// IsExternal reports whether the nav points outside the site.
func (n NavItem) IsExternal() bool {
	return strings.HasPrefix(n.Path, "http://") || strings.HasPrefix(n.Path, "https://")
}

// MenuEntry is a labelled sidebar group. Each child is a page path such as
// "hooks/dom/useEventListener".
type MenuEntry struct {
	Title    string   `json:"title" yaml:"title"`
	Children []string `json:"children" yaml:"children"`
}

// Menu returns a copy of the sidebar groups for a section root.
func (c *SiteConfig) Menu(section string) ([]MenuEntry, bool) {
	entries, ok := c.Menus[section]
	if !ok {
		return nil, false
	}
	return cloneEntries(entries), true
}

// SectionRoots returns the menu keys in nav display order. Keys without a
// matching nav are appended in sorted order.
func (c *SiteConfig) SectionRoots() []string {
	roots := make([]string, 0, len(c.Menus))
	seen := make(map[string]bool, len(c.Menus))
	for _, n := range c.Navs {
		if _, ok := c.Menus[n.Path]; ok && !seen[n.Path] {
			roots = append(roots, n.Path)
			seen[n.Path] = true
		}
	}
	var rest []string
	for k := range c.Menus {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(roots, rest...)
}

// Page is one sidebar child with the section and group it belongs to.
type Page struct {
	Section string
	Group   string
	Path    string
}

// Pages lists every menu child in display order.
func (c *SiteConfig) Pages() []Page {
	var pages []Page
	for _, section := range c.SectionRoots() {
		for _, entry := range c.Menus[section] {
			for _, child := range entry.Children {
				pages = append(pages, Page{Section: section, Group: entry.Title, Path: child})
			}
		}
	}
	return pages
}

// Clone returns a deep copy.
func (c *SiteConfig) Clone() *SiteConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.Navs = slices.Clone(c.Navs)
	out.Locales = slices.Clone(c.Locales)
	if c.Menus != nil {
		out.Menus = make(map[string][]MenuEntry, len(c.Menus))
		for k, v := range c.Menus {
			out.Menus[k] = cloneEntries(v)
		}
	}
	return &out
}

func cloneEntries(entries []MenuEntry) []MenuEntry {
	if entries == nil {
		return nil
	}
	out := make([]MenuEntry, len(entries))
	for i, e := range entries {
		out[i] = MenuEntry{Title: e.Title, Children: slices.Clone(e.Children)}
	}
	return out
}
