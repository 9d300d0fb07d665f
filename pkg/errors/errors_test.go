package errors_test

import (
	"errors"
	"testing"

	pkgerrors "github.com/agentstation/congressmap/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "ledger item",
			ID:       "asa-2026-congress-0a1b2c3d4e",
		}
		assert.Equal(t, "ledger item asa-2026-congress-0a1b2c3d4e not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("collector", "copa")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "start_date",
			Message: "not a YYYY-MM-DD date",
		}
		assert.Equal(t, "invalid start_date: not a YYYY-MM-DD date", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "event has no id"}
		assert.Equal(t, "invalid input: event has no id", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestCollectorError(t *testing.T) {
	t.Run("wrapped cause", func(t *testing.T) {
		base := errors.New("connection refused")
		err := pkgerrors.NewCollectorError("COPA", "fetch failed", base)
		assert.Equal(t, "[COPA] fetch failed: connection refused", err.Error())
		assert.Equal(t, base, err.Unwrap())
		assert.True(t, errors.Is(err, pkgerrors.ErrSourceFailed))
	})

	t.Run("timeout propagates through chain", func(t *testing.T) {
		err := pkgerrors.WrapCollector("ASA", pkgerrors.NewTimeoutError("collect", "20s", "deadline exceeded"))
		assert.True(t, pkgerrors.IsTimeout(err))
		assert.Contains(t, err.Error(), "[ASA]")
	})

	t.Run("message only", func(t *testing.T) {
		err := pkgerrors.NewCollectorError("SBA", "no collector registered", nil)
		assert.Equal(t, "[SBA] no collector registered", err.Error())
	})

	t.Run("nil wraps to nil", func(t *testing.T) {
		assert.Nil(t, pkgerrors.WrapCollector("ASA", nil))
	})
}

func TestHTTPError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		unavailable bool
		notFound    bool
	}{
		{"server error", 503, true, false},
		{"not found", 404, false, true},
		{"forbidden", 403, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pkgerrors.NewHTTPError("https://example.org/events.json", tt.status, "")
			assert.Contains(t, err.Error(), "https://example.org/events.json")
			assert.Equal(t, tt.unavailable, errors.Is(err, pkgerrors.ErrSourceUnavailable))
			assert.Equal(t, tt.notFound, pkgerrors.IsNotFound(err))
		})
	}
}

func TestPublishError(t *testing.T) {
	err := pkgerrors.NewPublishError("data/debug.json", []string{
		"events[0]: congress start_date after end_date",
		"events[2]: duplicate id=x (first at events[1])",
	})
	msg := err.Error()
	assert.Contains(t, msg, "2 validation error(s)")
	assert.Contains(t, msg, "data/debug.json")
	assert.Contains(t, msg, "events[0]")
	assert.True(t, pkgerrors.IsNotPublished(err))
	assert.True(t, pkgerrors.IsValidationError(err))

	var target *pkgerrors.PublishError
	require.True(t, errors.As(error(err), &target))
	assert.Len(t, target.Errors, 2)
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("sources", "entry 3 has no series", nil)
	assert.Contains(t, err.Error(), "sources")
	assert.Contains(t, err.Error(), "entry 3 has no series")
}

func TestIOError(t *testing.T) {
	t.Run("unwrap", func(t *testing.T) {
		baseErr := errors.New("disk full")
		err := pkgerrors.NewIOError("write", "/data/ledger.json", baseErr)
		assert.Equal(t, baseErr, err.Unwrap())
		assert.Contains(t, err.Error(), "/data/ledger.json")
	})

	t.Run("wrap helper", func(t *testing.T) {
		err := pkgerrors.WrapIO("rename", "/data/feed.json", errors.New("cross-device link"))
		ioErr, ok := err.(*pkgerrors.IOError)
		require.True(t, ok)
		assert.Equal(t, "rename", ioErr.Operation)
		assert.Equal(t, "/data/feed.json", ioErr.Path)
		assert.Nil(t, pkgerrors.WrapIO("read", "file", nil))
	})
}

func TestResourceError(t *testing.T) {
	err := pkgerrors.WrapResource("load", "ledger", "", errors.New("unexpected EOF"))
	resErr, ok := err.(*pkgerrors.ResourceError)
	require.True(t, ok)
	assert.Equal(t, "failed to load ledger: unexpected EOF", resErr.Error())
	assert.Nil(t, pkgerrors.WrapResource("save", "feed", "", nil))
}

func TestParseError(t *testing.T) {
	t.Run("with file and position", func(t *testing.T) {
		err := &pkgerrors.ParseError{
			Format:  "yaml",
			File:    "sources.yaml",
			Line:    10,
			Column:  5,
			Message: "unexpected token",
		}
		assert.Contains(t, err.Error(), "sources.yaml")
		assert.Contains(t, err.Error(), "10:5")
	})

	t.Run("without file", func(t *testing.T) {
		err := pkgerrors.WrapParse("json", "", errors.New("invalid character"))
		assert.Equal(t, "json parse error: invalid character", err.Error())
	})
}

func TestErrorChaining(t *testing.T) {
	ioErr := pkgerrors.WrapIO("fetch", "https://example.org", errors.New("connection reset"))
	colErr := pkgerrors.NewCollectorError("COPA", "fetch failed", ioErr)

	var target *pkgerrors.IOError
	require.True(t, errors.As(colErr, &target))
	assert.Equal(t, "fetch", target.Operation)
	assert.True(t, errors.Is(colErr, pkgerrors.ErrSourceFailed))
}
