// Package static provides a collector for events that are maintained by
// hand, either inline in the source configuration or in a YAML/JSON file.
// It makes no network calls.
package static

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agentstation/congressmap/pkg/errors"
	"github.com/agentstation/congressmap/pkg/events"
	"github.com/agentstation/congressmap/pkg/sources"
	"github.com/goccy/go-yaml"
)

// Kind is the registry key of the static collector.
const Kind = "static"

// Collector emits the events listed in its configuration.
type Collector struct {
	baseDir string
}

var _ sources.Collector = (*Collector)(nil)

// Option configures a Collector.
type Option func(*Collector)

// WithBaseDir resolves relative file paths against dir.
func WithBaseDir(dir string) Option {
	return func(c *Collector) {
		c.baseDir = dir
	}
}

// New creates a static collector.
func New(opts ...Option) *Collector {
	c := &Collector{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect implements sources.Collector. Events come from the "events" list
// of the configuration and from the document named by "file"; both may be
// present. Entries that are not objects are skipped with a warning.
func (c *Collector) Collect(ctx context.Context, cfg sources.Config) sources.Result {
	if err := ctx.Err(); err != nil {
		return sources.Err(cfg.Series, err)
	}

	var items []any
	inline, hasInline := cfg.Value("events")
	if hasInline {
		list, ok := inline.([]any)
		if !ok {
			return sources.Err(cfg.Series, errors.NewValidationError("events", inline, "must be a list"))
		}
		items = append(items, list...)
	}

	file := cfg.String("file")
	if file != "" {
		loaded, err := c.load(file)
		if err != nil {
			return sources.Err(cfg.Series, err)
		}
		items = append(items, loaded...)
	}

	if !hasInline && file == "" {
		return sources.Err(cfg.Series, errors.NewConfigError(cfg.Series, "static source needs events or file", nil))
	}

	evs := make([]events.Raw, 0, len(items))
	var warnings []string
	for i, item := range items {
		m, ok := plain(item).(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("[%s] static entry %d is not an object; skipped", cfg.Series, i))
			continue
		}
		raw := events.Raw(m)
		if _, ok := raw[events.KeySource]; !ok {
			raw[events.KeySource] = string(events.OriginScraped)
		}
		evs = append(evs, raw)
	}
	return sources.Ok(cfg.Series, evs, warnings)
}

func (c *Collector) load(file string) ([]any, error) {
	path := file
	if !filepath.IsAbs(path) && c.baseDir != "" {
		path = filepath.Join(c.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	switch t := doc.(type) {
	case []any:
		return t, nil
	case map[string]any:
		if list, ok := t["events"].([]any); ok {
			return list, nil
		}
	case nil:
		return nil, nil
	}
	return nil, errors.NewParseError("yaml", path, "expected a list of events or an object with an events list", nil)
}

// plain converts YAML decoded values into the shapes the event codec reads:
// string keyed maps and dates as text.
func plain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = plain(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = plain(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plain(val)
		}
		return out
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format(time.DateOnly)
		}
		return t.UTC().Format(time.RFC3339)
	default:
		return v
	}
}
