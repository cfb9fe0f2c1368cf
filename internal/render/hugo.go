package render

import (
	"io"
	"path"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yyt520/ahooks-code-analysis/internal/site"
)

// hugoConfig is the subset of hugo.yaml derived from the manifest.
type hugoConfig struct {
	Title                  string                     `yaml:"title"`
	BaseURL                string                     `yaml:"baseURL"`
	PublishDir             string                     `yaml:"publishDir"`
	LanguageCode           string                     `yaml:"languageCode"`
	DefaultContentLanguage string                     `yaml:"defaultContentLanguage"`
	Languages              map[string]hugoLanguage    `yaml:"languages"`
	Params                 map[string]any             `yaml:"params"`
	Menu                   map[string][]hugoMenuEntry `yaml:"menu"`
}

type hugoLanguage struct {
	LanguageName string `yaml:"languageName"`
	Weight       int    `yaml:"weight"`
}

type hugoMenuEntry struct {
	Identifier string `yaml:"identifier,omitempty"`
	Name       string `yaml:"name"`
	URL        string `yaml:"url,omitempty"`
	PageRef    string `yaml:"pageRef,omitempty"`
	Parent     string `yaml:"parent,omitempty"`
	Weight     int    `yaml:"weight"`
}

func renderHugo(cfg *site.SiteConfig, w io.Writer) error {
	hc := hugoConfig{
		Title: cfg.Title,
		// The manifest carries no host, so baseURL is the path prefix alone.
		// Hugo resolves it against the serving host; deployments that need
		// absolute links override it with --baseURL.
		BaseURL:    cfg.Base,
		PublishDir: cfg.OutputPath,
		Languages:  map[string]hugoLanguage{},
		Params: map[string]any{
			"favicon":    cfg.Favicon,
			"logo":       cfg.Logo,
			"hashAssets": cfg.Hash,
		},
		Menu: map[string][]hugoMenuEntry{},
	}
	for i, l := range cfg.Locales {
		code := strings.ToLower(l.Code)
		if i == 0 {
			hc.LanguageCode = l.Code
			hc.DefaultContentLanguage = code
		}
		hc.Languages[code] = hugoLanguage{LanguageName: l.Label, Weight: i + 1}
	}

	for i, n := range cfg.Navs {
		entry := hugoMenuEntry{Name: n.Title, Weight: (i + 1) * 10}
		if n.IsExternal() {
			entry.URL = n.Path
		} else {
			entry.PageRef = n.Path
		}
		hc.Menu["main"] = append(hc.Menu["main"], entry)
	}

	for _, root := range cfg.SectionRoots() {
		menuName := hugoMenuName(root)
		ids := make(map[string]bool)
		for gi, group := range cfg.Menus[root] {
			groupID := uniqueID(ids, menuName+"-"+slug(group.Title))
			hc.Menu[menuName] = append(hc.Menu[menuName], hugoMenuEntry{
				Identifier: groupID,
				Name:       group.Title,
				Weight:     (gi + 1) * 100,
			})
			for ci, child := range group.Children {
				hc.Menu[menuName] = append(hc.Menu[menuName], hugoMenuEntry{
					Name:    path.Base(child),
					PageRef: "/" + strings.TrimPrefix(child, "/"),
					Parent:  groupID,
					Weight:  (gi+1)*100 + ci + 1,
				})
			}
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(hc); err != nil {
		return err
	}
	return enc.Close()
}

// hugoMenuName turns a section root such as "/hooks" into a menu name.
func hugoMenuName(root string) string {
	name := strings.Trim(root, "/")
	if name == "" {
		return "sidebar"
	}
	return strings.ReplaceAll(name, "/", "-")
}

// uniqueID returns id, or id with the first free numeric suffix when a
// group title in the same menu already slugged to it.
func uniqueID(taken map[string]bool, id string) string {
	candidate := id
	for n := 2; taken[candidate]; n++ {
		candidate = id + "-" + strconv.Itoa(n)
	}
	taken[candidate] = true
	return candidate
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if r == ' ' || r == '/' || r == '_' || r == '-' {
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
			continue
		}
		b.WriteRune(r)
		dash = false
	}
	return strings.TrimSuffix(b.String(), "-")
}
