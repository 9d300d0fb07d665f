// Package errors defines the typed errors shared by collection,
// reconciliation and publishing. Every type answers errors.Is against one of
// the sentinels below so callers can branch without string matching.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard library helpers, re-exported so packages need one errors import.
var (
	New  = errors.New
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Sentinels matched by the typed errors.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrSourceFailed      = errors.New("source failed")
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrNotPublished      = errors.New("feed not published")
	ErrTimeout           = errors.New("operation timed out")
)

// NotFoundError reports a missing file, feed or ledger entry.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError reports bad user input: flags, config values, feeds.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError creates a ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError reports an unusable configuration file or section.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Component == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("config %s: %s", e.Component, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// CollectorError is one series' collection failure. A run turns it into a
// warning tagged with the series and keeps going.
type CollectorError struct {
	Series  string
	Message string
	Err     error
}

func (e *CollectorError) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("[%s] %s", e.Series, e.Message)
	case e.Message == "":
		return fmt.Sprintf("[%s] %v", e.Series, e.Err)
	default:
		return fmt.Sprintf("[%s] %s: %v", e.Series, e.Message, e.Err)
	}
}

func (e *CollectorError) Unwrap() error { return e.Err }

// Is matches ErrSourceFailed.
func (e *CollectorError) Is(target error) bool { return target == ErrSourceFailed }

// NewCollectorError creates a CollectorError.
func NewCollectorError(series, message string, err error) *CollectorError {
	return &CollectorError{Series: series, Message: message, Err: err}
}

// HTTPError is a non-2xx answer from a remote source. 5xx matches
// ErrSourceUnavailable and 404 matches ErrNotFound.
type HTTPError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is matches on the status class.
func (e *HTTPError) Is(target error) bool {
	switch {
	case e.StatusCode >= 500:
		return target == ErrSourceUnavailable
	case e.StatusCode == 404:
		return target == ErrNotFound
	}
	return false
}

// NewHTTPError creates an HTTPError.
func NewHTTPError(url string, statusCode int, message string) *HTTPError {
	return &HTTPError{URL: url, StatusCode: statusCode, Message: message}
}

// PublishError reports a run whose feed failed validation. The debug
// artifact was written; the public feed and the ledger were not.
type PublishError struct {
	DebugPath string
	Errors    []string
}

func (e *PublishError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "feed not published: %d validation error(s)", len(e.Errors))
	if e.DebugPath != "" {
		fmt.Fprintf(&b, ", debug artifact at %s", e.DebugPath)
	}
	for _, msg := range e.Errors {
		b.WriteString("\n  - ")
		b.WriteString(msg)
	}
	return b.String()
}

// Is matches ErrNotPublished and ErrInvalidInput.
func (e *PublishError) Is(target error) bool {
	return target == ErrNotPublished || target == ErrInvalidInput
}

// NewPublishError creates a PublishError.
func NewPublishError(debugPath string, errs []string) *PublishError {
	return &PublishError{DebugPath: debugPath, Errors: errs}
}

// ParseError reports malformed JSON or YAML.
type ParseError struct {
	Format  string
	File    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s parse error at %s:%d:%d: %s", e.Format, e.File, e.Line, e.Column, e.Message)
	case e.File != "":
		return fmt.Sprintf("%s parse error in %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError creates a ParseError.
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// IOError reports a failed filesystem or network operation.
type IOError struct {
	Operation string // read, write, rename, fetch
	Path      string
	Message   string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Operation, e.Path, e.Message)
}

func (e *IOError) Unwrap() error { return e.Err }

// NewIOError creates an IOError.
func NewIOError(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Message: errText(err), Err: err}
}

// ResourceError reports a failed step on a named resource such as the
// ledger, the feed or the sources file.
type ResourceError struct {
	Operation string
	Resource  string
	ID        string
	Message   string
	Err       error
}

func (e *ResourceError) Error() string {
	target := e.Resource
	if e.ID != "" {
		target += " " + e.ID
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, target, e.Message)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// TimeoutError reports a collector or request that ran past its budget.
type TimeoutError struct {
	Operation string
	Duration  string
	Message   string
}

func (e *TimeoutError) Error() string {
	msg := e.Operation + " timed out"
	if e.Duration != "" {
		msg += " after " + e.Duration
	}
	return msg + ": " + e.Message
}

// Is matches ErrTimeout.
func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// NewTimeoutError creates a TimeoutError.
func NewTimeoutError(operation, duration, message string) *TimeoutError {
	return &TimeoutError{Operation: operation, Duration: duration, Message: message}
}

// IsNotFound reports whether err matches ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidationError reports whether err matches ErrInvalidInput.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsTimeout reports whether err matches ErrTimeout.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// IsNotPublished reports whether a run withheld the public feed.
func IsNotPublished(err error) bool { return errors.Is(err, ErrNotPublished) }

// The Wrap helpers return nil for a nil err.

// WrapValidation converts err into a ValidationError for field.
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO converts err into an IOError.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource converts err into a ResourceError.
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Message: err.Error(), Err: err}
}

// WrapParse converts err into a ParseError.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapCollector converts err into a CollectorError for series.
func WrapCollector(series string, err error) error {
	if err == nil {
		return nil
	}
	return NewCollectorError(series, "", err)
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
