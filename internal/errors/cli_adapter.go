package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if se, ok := As(err); ok {
		return a.exitCodeFromSiteError(se)
	}

	return 1
}

func (a *CLIErrorAdapter) exitCodeFromSiteError(err *SiteError) int {
	switch err.Category {
	case CategoryValidation, CategoryReference:
		return 2 // Manifest does not satisfy its schema
	case CategoryConfig:
		return 7
	case CategoryRender, CategoryFileSystem:
		return 11
	case CategoryRuntime:
		return 12
	case CategoryInternal:
		return 10
	default:
		return 1
	}
}

// FormatError formats an error for user-friendly display. Joined errors are
// printed one per line.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	parts := Flatten(err)
	if len(parts) > 1 {
		lines := make([]string, 0, len(parts))
		for _, p := range parts {
			lines = append(lines, "  - "+a.formatOne(p))
		}
		return fmt.Sprintf("%d problems:\n%s", len(parts), strings.Join(lines, "\n"))
	}
	if len(parts) == 1 {
		return a.formatOne(parts[0])
	}
	return a.formatOne(err)
}

func (a *CLIErrorAdapter) formatOne(err error) string {
	se, ok := err.(*SiteError)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return se.Error()
	}

	switch se.Category {
	case CategoryConfig, CategoryValidation, CategoryReference:
		msg := se.Message
		if field, ok := se.Context["field"]; ok {
			msg = fmt.Sprintf("%s: %v", msg, field)
		}
		if reason, ok := se.Context["reason"]; ok {
			msg = fmt.Sprintf("%s (%v)", msg, reason)
		}
		if target, ok := se.Context["target"]; ok {
			msg = fmt.Sprintf("%s -> %v", msg, target)
		}
		return msg
	default:
		return fmt.Sprintf("%s: %s", se.Category, se.Message)
	}
}

// Report writes the formatted error and returns the exit code. Callers
// decide whether to exit.
func (a *CLIErrorAdapter) Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if a.shouldLog(err) {
		a.logError(err)
	}
	_, _ = fmt.Fprintln(w, a.FormatError(err))
	return a.ExitCodeFor(err)
}

func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	if se, ok := As(err); ok {
		return se.Category == CategoryInternal || se.Category == CategoryRuntime
	}
	return true
}

func (a *CLIErrorAdapter) logError(err error) {
	if se, ok := As(err); ok {
		attrs := []slog.Attr{slog.String("category", string(se.Category))}
		for k, v := range se.Context {
			attrs = append(attrs, slog.Any(k, v))
		}
		a.logger.LogAttrs(context.Background(), slogLevel(se.Severity), se.Message, attrs...)
		return
	}
	a.logger.Error("Unclassified error", "error", err)
}

func slogLevel(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
