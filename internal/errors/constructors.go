package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *SiteError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigDecode(path string, cause error) *SiteError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "failed to decode configuration").
		WithContext("path", path)
}

func ConfigRequired(field string) *SiteError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

// FieldRequired reports a required manifest field that is absent or empty.
func FieldRequired(field string) *SiteError {
	return New(CategoryValidation, SeverityFatal, "required field missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *SiteError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Reference errors

func DanglingReference(field, target string) *SiteError {
	return New(CategoryReference, SeverityFatal, "dangling reference").
		WithContext("field", field).
		WithContext("target", target)
}

func PageMissing(page string) *SiteError {
	return New(CategoryReference, SeverityError, "documentation page not found").
		WithContext("page", page)
}

// Output errors

func RenderFailed(format string, cause error) *SiteError {
	return Wrap(cause, CategoryRender, SeverityFatal, "render failed").
		WithContext("format", format)
}

func FileSystemError(operation, path string, cause error) *SiteError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "filesystem operation failed").
		WithContext("operation", operation).
		WithContext("path", path)
}

// Internal errors

func InternalError(message string, cause error) *SiteError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
