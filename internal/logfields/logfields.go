// Package logfields defines the canonical structured log keys.
package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyFormat     = "format"
	KeySection    = "section"
	KeyPage       = "page"
	KeyPages      = "pages"
	KeyDurationMS = "duration_ms"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyRequestID  = "request_id"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func Page(p string) slog.Attr         { return slog.String(KeyPage, p) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func RequestID(id string) slog.Attr   { return slog.String(KeyRequestID, id) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
