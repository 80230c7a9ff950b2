// Package millerr defines the stable error taxonomy surfaced to tool
// callers and the plain stderr logging convention used throughout mill.
package millerr

import "fmt"

// Code is a stable, machine-readable error category. Callers match on
// Code rather than parsing message text.
type Code string

const (
	InvalidRequest        Code = "E_INVALID_REQUEST"
	UnsupportedLanguage    Code = "E_UNSUPPORTED_LANGUAGE"
	CapabilityNotSupported Code = "E_CAPABILITY_NOT_SUPPORTED"
	LSPUnavailable         Code = "E_LSP_UNAVAILABLE"
	LSPTimeout             Code = "E_LSP_TIMEOUT"
	PlanConflict           Code = "E_PLAN_CONFLICT"
	ChecksumMismatch       Code = "E_CHECKSUM_MISMATCH"
	IOError                Code = "E_IO_ERROR"
	RollbackFailed         Code = "E_ROLLBACK_FAILED"
	Internal               Code = "E_INTERNAL"
)

// Error wraps an underlying cause with a stable Code and any structured
// detail fields relevant for diagnosis (e.g. language, path, capability).
type Error struct {
	Code    Code
	Message string
	Detail  map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an Error with no underlying cause.
func New(code Code, message string, detail map[string]any) *Error {
	return &Error{Code: code, Message: message, Detail: detail}
}

// Wrap attaches code and message to an existing error.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// UnsupportedLanguageErr reports a file extension with no registered plugin.
func UnsupportedLanguageErr(ext string) *Error {
	return New(UnsupportedLanguage, fmt.Sprintf("no language plugin registered for extension %q", ext), map[string]any{"extension": ext})
}

// CapabilityNotSupportedErr reports a registered plugin missing a capability.
func CapabilityNotSupportedErr(capability, language string) *Error {
	return New(CapabilityNotSupported, fmt.Sprintf("plugin %q does not support capability %q", language, capability),
		map[string]any{"capability": capability, "language": language})
}

// ChecksumMismatchErr reports a precheck failure: the file changed since the
// plan was built.
func ChecksumMismatchErr(path string) *Error {
	return New(ChecksumMismatch, fmt.Sprintf("file changed since plan was built: %s", path), map[string]any{"path": path})
}

// CodeOf extracts the Code from err if it (or something it wraps) is an
// *Error; otherwise returns Internal.
func CodeOf(err error) Code {
	var e *Error
	for err != nil {
		if ce, ok := err.(*Error); ok {
			e = ce
			break
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = unwrapper.Unwrap()
	}
	if e == nil {
		return Internal
	}
	return e.Code
}
