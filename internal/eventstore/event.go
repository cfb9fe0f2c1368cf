// Package eventstore keeps a history of manifest lifecycle events: loads,
// rejected reloads and docs checks.
package eventstore

import (
	"encoding/json"
	"time"

	serrors "github.com/yyt520/ahooks-code-analysis/internal/errors"
	"github.com/yyt520/ahooks-code-analysis/internal/pages"
	"github.com/yyt520/ahooks-code-analysis/internal/site"
)

// Event types.
const (
	TypeManifestLoaded   = "ManifestLoaded"
	TypeManifestRejected = "ManifestRejected"
	TypeDocsChecked      = "DocsChecked"
)

// Event is one recorded occurrence. ID is assigned by the store.
type Event struct {
	ID        int64             `json:"id"`
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ManifestLoaded describes a manifest that was accepted and is being served.
type ManifestLoaded struct {
	Source   string   `json:"source"`
	Title    string   `json:"title"`
	Navs     int      `json:"navs"`
	Sections []string `json:"sections"`
	Pages    int      `json:"pages"`
}

// ManifestRejected describes a reload that failed; the previous manifest stays.
type ManifestRejected struct {
	Source   string `json:"source"`
	Category string `json:"category,omitempty"`
	Error    string `json:"error"`
}

// DocsChecked summarizes a docs tree check.
type DocsChecked struct {
	DocsDir  string `json:"docsDir"`
	Commit   string `json:"commit,omitempty"`
	Pages    int    `json:"pages"`
	Missing  int    `json:"missing"`
	Orphans  int    `json:"orphans"`
	Duration int64  `json:"duration_ms"`
}

// NewManifestLoaded creates a ManifestLoaded event for cfg read from source.
func NewManifestLoaded(source string, cfg *site.SiteConfig) (Event, error) {
	return newEvent(TypeManifestLoaded, ManifestLoaded{
		Source:   source,
		Title:    cfg.Title,
		Navs:     len(cfg.Navs),
		Sections: cfg.SectionRoots(),
		Pages:    len(cfg.Pages()),
	})
}

// NewManifestRejected creates a ManifestRejected event for a failed load.
func NewManifestRejected(source string, cause error) (Event, error) {
	return newEvent(TypeManifestRejected, ManifestRejected{
		Source:   source,
		Category: string(serrors.GetCategory(cause)),
		Error:    cause.Error(),
	})
}

// NewDocsChecked creates a DocsChecked event from a report.
func NewDocsChecked(report *pages.Report, duration time.Duration) (Event, error) {
	payload := DocsChecked{
		DocsDir:  report.DocsDir,
		Pages:    len(report.Pages),
		Missing:  len(report.Missing()),
		Orphans:  len(report.Orphans),
		Duration: duration.Milliseconds(),
	}
	if report.Revision != nil {
		payload.Commit = report.Revision.Commit
	}
	return newEvent(TypeDocsChecked, payload)
}

func newEvent(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, serrors.InternalError("failed to marshal "+eventType+" payload", err)
	}
	return Event{Type: eventType, Timestamp: time.Now(), Payload: data}, nil
}
