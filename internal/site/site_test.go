package site

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	serrors "github.com/yyt520/ahooks-code-analysis/internal/errors"
)

func TestDefault_HooksMenu_FirstGroupIsDom(t *testing.T) {
	cfg := Default()

	entries, ok := cfg.Menu("/hooks")
	require.True(t, ok)
	require.NotEmpty(t, entries)
	require.Equal(t, "Dom", entries[0].Title)
	require.Equal(t, "hooks/dom/useEventListener", entries[0].Children[0])
	require.Len(t, entries[0].Children, 25)
}

func TestDefault_Metadata(t *testing.T) {
	cfg := Default()

	require.Equal(t, "ahooks-code-analysis", cfg.Title)
	require.Equal(t, "docs-dist", cfg.OutputPath)
	require.Equal(t, ModeSite, cfg.Mode)
	require.True(t, cfg.Hash)
	require.Equal(t, "/ahooks-code-analysis/", cfg.Base)
	require.Equal(t, cfg.Base, cfg.PublicPath)
	require.Equal(t, cfg.Favicon, cfg.Logo)
	require.Equal(t, []Locale{{Code: "zh-CN", Label: "中文"}}, cfg.Locales)
	require.Len(t, cfg.Navs, 5)
	require.Equal(t, NavItem{Title: "Hooks", Path: "/hooks"}, cfg.Navs[1])
}

func TestDefault_Validates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDefault_NavsHaveTitleAndPath(t *testing.T) {
	for _, n := range Default().Navs {
		require.NotEmpty(t, n.Title)
		require.NotEmpty(t, n.Path)
	}
}

func TestDefault_MenuKeysMatchNavPaths(t *testing.T) {
	cfg := Default()
	paths := map[string]bool{}
	for _, n := range cfg.Navs {
		paths[n.Path] = true
	}
	for k := range cfg.Menus {
		require.True(t, paths[k], "menu key %q has no nav entry", k)
	}
}

func TestDefault_ChildrenAreUnique(t *testing.T) {
	counts := map[string]int{}
	for _, p := range Default().Pages() {
		counts[p.Path]++
	}
	for page, n := range counts {
		require.Equal(t, 1, n, "page %q listed %d times", page, n)
	}
	require.Equal(t, 1, counts["hooks/dom/useDrag"])
}

func TestDefault_LocalesWellFormed(t *testing.T) {
	cfg := Default()
	require.NotEmpty(t, cfg.Locales)
	for _, l := range cfg.Locales {
		require.True(t, WellFormedLocale(l.Code), l.Code)
	}
}

func TestDefault_Idempotent(t *testing.T) {
	require.Equal(t, Default(), Default())
}

func TestDefault_ReturnsFreshValue(t *testing.T) {
	a := Default()
	a.Menus["/hooks"][0].Children[0] = "changed"
	a.Navs[0].Title = "changed"

	b := Default()
	require.Equal(t, "hooks/dom/useEventListener", b.Menus["/hooks"][0].Children[0])
	require.Equal(t, "指南", b.Navs[0].Title)
}

func TestJSON_RoundTrip_DeepEqual(t *testing.T) {
	orig := Default()

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var back SiteConfig
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, orig, &back)
}

func TestJSON_UsesGeneratorKeys(t *testing.T) {
	data, err := json.Marshal(Default())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, "docs-dist", raw["outputPath"])
	require.Equal(t, "/ahooks-code-analysis/", raw["publicPath"])
	require.Equal(t, []any{[]any{"zh-CN", "中文"}}, raw["locales"])
}

func TestYAML_RoundTrip_DeepEqual(t *testing.T) {
	orig := Default()

	data, err := yaml.Marshal(orig)
	require.NoError(t, err)
	require.Contains(t, string(data), "[zh-CN, 中文]")

	var back SiteConfig
	require.NoError(t, yaml.Unmarshal(data, &back))
	require.Equal(t, orig, &back)
}

func TestLocale_RejectsWrongArity(t *testing.T) {
	var l Locale
	require.Error(t, json.Unmarshal([]byte(`["zh-CN"]`), &l))
	require.Error(t, yaml.Unmarshal([]byte(`[a, b, c]`), &l))
	require.Error(t, json.Unmarshal([]byte(`"zh-CN"`), &l))
}

func TestClone_IsIndependent(t *testing.T) {
	orig := Default()
	cp := orig.Clone()
	require.Equal(t, orig, cp)

	cp.Menus["/hooks"][0].Children[0] = "x"
	cp.Locales[0].Label = "x"
	require.Equal(t, "hooks/dom/useEventListener", orig.Menus["/hooks"][0].Children[0])
	require.Equal(t, "中文", orig.Locales[0].Label)
}

func TestMenu_ReturnsCopy(t *testing.T) {
	cfg := Default()
	entries, _ := cfg.Menu("/hooks")
	entries[0].Children[0] = "x"
	require.Equal(t, "hooks/dom/useEventListener", cfg.Menus["/hooks"][0].Children[0])

	_, ok := cfg.Menu("/guide")
	require.False(t, ok)
}

func TestSectionRoots_FollowNavOrder(t *testing.T) {
	cfg := Default()
	cfg.Menus["/guide"] = []MenuEntry{{Title: "Intro", Children: []string{"guide/intro"}}}
	cfg.Menus["/zzz"] = []MenuEntry{{Title: "Z", Children: []string{"zzz/a"}}}

	require.Equal(t, []string{"/guide", "/hooks", "/zzz"}, cfg.SectionRoots())
}

func TestNavItem_IsExternal(t *testing.T) {
	require.True(t, NavItem{Path: "https://github.com/yyt520"}.IsExternal())
	require.False(t, NavItem{Path: "/hooks"}.IsExternal())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("  Site ")
	require.NoError(t, err)
	require.Equal(t, ModeSite, m)

	m, err = ParseMode("doc")
	require.NoError(t, err)
	require.Equal(t, ModeDoc, m)

	_, err = ParseMode("blog")
	require.Error(t, err)
	require.Equal(t, []string{"doc", "site"}, ModeValues())
}

func TestValidate_EmptyManifest_ReportsEveryRequiredField(t *testing.T) {
	err := (&SiteConfig{}).Validate()
	require.Error(t, err)

	fields := map[any]bool{}
	for _, e := range serrors.Flatten(err) {
		se, ok := e.(*serrors.SiteError)
		require.True(t, ok)
		fields[se.Context["field"]] = true
	}
	for _, f := range []string{"title", "favicon", "logo", "mode", "outputPath", "base", "publicPath", "navs", "locales", "menus"} {
		require.True(t, fields[f], "missing required error for %s", f)
	}
}

func TestValidate_DanglingMenuKey(t *testing.T) {
	cfg := Default()
	cfg.Menus["/components"] = []MenuEntry{{Title: "C", Children: []string{"components/a"}}}

	err := cfg.Validate()
	require.Error(t, err)
	require.True(t, serrors.IsCategory(err, serrors.CategoryReference))
}

func TestValidate_MenuOnExternalNav(t *testing.T) {
	cfg := Default()
	cfg.Menus["https://github.com/yyt520"] = []MenuEntry{{Title: "X", Children: []string{"x"}}}

	require.Error(t, cfg.Validate())
}

func TestValidate_DuplicateChildAcrossGroups(t *testing.T) {
	cfg := Default()
	cfg.Menus["/hooks"] = append(cfg.Menus["/hooks"], MenuEntry{
		Title:    "Again",
		Children: []string{"hooks/dom/useDrag"},
	})

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "hooks/dom/useDrag")
}

func TestValidate_ChildOutsideDocsTree(t *testing.T) {
	for _, child := range []string{"../secret", "hooks/../../secret", "/etc/passwd", `hooks\dom\useSize`} {
		t.Run(child, func(t *testing.T) {
			cfg := Default()
			cfg.Menus["/hooks"][0].Children = append(cfg.Menus["/hooks"][0].Children, child)

			err := cfg.Validate()
			require.Error(t, err)
			require.True(t, serrors.IsCategory(err, serrors.CategoryValidation))
			require.ErrorContains(t, err, "menus[/hooks][0].children")
		})
	}
}

func TestValidate_Locales(t *testing.T) {
	cases := map[string][]Locale{
		"underscore": {{Code: "zh_CN", Label: "中文"}},
		"garbage":    {{Code: "not a locale", Label: "x"}},
		"no label":   {{Code: "en", Label: ""}},
		"duplicate":  {{Code: "en", Label: "English"}, {Code: "EN", Label: "English"}},
	}
	for name, locales := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Locales = locales
			require.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_Paths(t *testing.T) {
	cfg := Default()
	cfg.OutputPath = "/abs/dist"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.OutputPath = "../outside"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Base = "ahooks-code-analysis"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Favicon = "not-a-url"
	require.Error(t, cfg.Validate())
}

func TestWellFormedLocale(t *testing.T) {
	for _, ok := range []string{"zh-CN", "en", "en-US", "pt-BR"} {
		require.True(t, WellFormedLocale(ok), ok)
	}
	for _, bad := range []string{"", "zh_CN", "12", "en--US"} {
		require.False(t, WellFormedLocale(bad), bad)
	}
}
