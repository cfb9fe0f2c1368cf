package site

const (
	repo      = "ahooks-code-analysis"
	brandIcon = "https://user-images.githubusercontent.com/9554297/83762004-a0761b00-a6a9-11ea-83b4-9c8ff721d4b8.png"

	// HooksSection is the section root of the hooks sidebar.
	HooksSection = "/hooks"
)

// Default returns the manifest of the ahooks-code-analysis site. Every call
// builds a fresh value.
func Default() *SiteConfig {
	return &SiteConfig{
		Title:      repo,
		Favicon:    brandIcon,
		Logo:       brandIcon,
		OutputPath: "docs-dist",
		Mode:       ModeSite,
		Hash:       true,
		// Served from GitHub Pages under the repository name.
		Base:       "/" + repo + "/",
		PublicPath: "/" + repo + "/",
		Navs: []NavItem{
			{Title: "指南", Path: "/guide"},
			{Title: "Hooks", Path: HooksSection},
			{Title: "ahooks 官网", Path: "https://ahooks.js.org/zh-CN"},
			{Title: "GitHub", Path: "https://github.com/yyt520/ahooks-code-analysis"},
			{Title: "关于我", Path: "https://github.com/yyt520"},
		},
		Locales: []Locale{{Code: "zh-CN", Label: "中文"}},
		Menus: map[string][]MenuEntry{
			HooksSection: {
				{
					Title: "Dom",
					Children: []string{
						"hooks/dom/useEventListener",
						"hooks/dom/useClickAway",
						"hooks/dom/useDocumentVisibility",
						"hooks/dom/useDrop",
						"hooks/dom/useDrag",
						"hooks/dom/useEventTarget",
						"hooks/dom/useExternal",
						"hooks/dom/useTitle",
						"hooks/dom/useFavicon",
						"hooks/dom/useFullscreen",
						"hooks/dom/useHover",
						"hooks/dom/useInViewport",
						"hooks/dom/useKeyPress",
						"hooks/dom/useLongPress",
						"hooks/dom/useMouse",
						"hooks/dom/useResponsive",
						"hooks/dom/useScroll",
						"hooks/dom/useSize",
						"hooks/dom/useFocusWithin",
						"hooks/advanced/useControllableValue",
						"hooks/advanced/useCreation",
						"hooks/advanced/useEventEmitter",
						"hooks/advanced/useIsomorphicLayoutEffect",
						"hooks/advanced/useLatest",
						"hooks/advanced/useMemoizedFn",
					},
				},
			},
		},
	}
}
