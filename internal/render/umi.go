package render

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"text/template"

	"github.com/yyt520/ahooks-code-analysis/internal/site"
)

const umiTemplate = `import { defineConfig } from 'dumi';

export default defineConfig({
  title: {{ q .Title }},
  favicon: {{ q .Favicon }},
  logo: {{ q .Logo }},
  outputPath: {{ q .OutputPath }},
  mode: {{ q .Mode }},
  hash: {{ .Hash }},
  base: {{ q .Base }},
  publicPath: {{ q .PublicPath }},
  navs: [
{{- range .Navs }}
    { title: {{ q .Title }}, path: {{ q .Path }} },
{{- end }}
  ],
  locales: [{{ range $i, $l := .Locales }}{{ if $i }}, {{ end }}[{{ q $l.Code }}, {{ q $l.Label }}]{{ end }}],
  menus: {
{{- range .Sections }}
    {{ q .Root }}: [
{{- range .Entries }}
      {
        title: {{ q .Title }},
        children: [
{{- range .Children }}
          {{ q . }},
{{- end }}
        ],
      },
{{- end }}
    ],
{{- end }}
  },
});
`

var umiTmpl = template.Must(template.New("umirc").Funcs(template.FuncMap{"q": tsString}).Parse(umiTemplate))

type umiSection struct {
	Root    string
	Entries []site.MenuEntry
}

type umiView struct {
	*site.SiteConfig
	Sections []umiSection
}

func renderUmi(cfg *site.SiteConfig, w io.Writer) error {
	view := umiView{SiteConfig: cfg}
	for _, root := range cfg.SectionRoots() {
		view.Sections = append(view.Sections, umiSection{Root: root, Entries: cfg.Menus[root]})
	}
	return umiTmpl.Execute(w, view)
}

// tsString quotes s as a single-quoted TypeScript string literal.
func tsString(s any) string {
	var str string
	switch v := s.(type) {
	case string:
		str = v
	case site.Mode:
		str = string(v)
	default:
		b, _ := json.Marshal(v)
		str = string(b)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(str)
	quoted := strings.TrimSuffix(buf.String(), "\n")

	// Swap JSON double quotes for the single quotes used in .umirc.ts files.
	inner := quoted[1 : len(quoted)-1]
	inner = strings.ReplaceAll(inner, `\"`, `"`)
	inner = strings.ReplaceAll(inner, `'`, `\'`)
	return "'" + inner + "'"
}
