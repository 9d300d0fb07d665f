// Package jsonfeed provides a collector that fetches event documents
// published as JSON over HTTP.
//
// Source configuration keys:
//
//	url        document location (required)
//	events_key object key holding the event list (default "events")
//	token_env  environment variable holding an access token
//	header     header carrying the token (default Authorization: Bearer)
//
// The document is either a list of events or an object with a list under
// events_key. Events without evidence are attributed to the document URL.
package jsonfeed

import (
	"context"
	"fmt"
	"net/http"

	"github.com/agentstation/congressmap/internal/transport"
	"github.com/agentstation/congressmap/pkg/errors"
	"github.com/agentstation/congressmap/pkg/events"
	"github.com/agentstation/congressmap/pkg/logging"
	"github.com/agentstation/congressmap/pkg/sources"
)

// Kind is the registry key of the JSON feed collector.
const Kind = "jsonfeed"

const defaultEventsKey = "events"

// Collector fetches events from a JSON document.
type Collector struct {
	http *http.Client
}

var _ sources.Collector = (*Collector)(nil)

// Option configures a Collector.
type Option func(*Collector)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Collector) {
		c.http = hc
	}
}

// New creates a JSON feed collector.
func New(opts ...Option) *Collector {
	c := &Collector{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect implements sources.Collector.
func (c *Collector) Collect(ctx context.Context, cfg sources.Config) sources.Result {
	url := cfg.String("url")
	if url == "" {
		return sources.Err(cfg.Series, errors.NewConfigError(cfg.Series, "jsonfeed source needs url", nil))
	}

	client := c.client(cfg)
	logging.FromContext(ctx).Debug().
		Str("source", cfg.Series).
		Str("url", url).
		Msg("Fetching event document")

	resp, err := client.Get(ctx, url)
	if err != nil {
		return sources.Err(cfg.Series, err)
	}
	var doc any
	if err := transport.DecodeResponse(resp, &doc); err != nil {
		return sources.Err(cfg.Series, err)
	}

	key := cfg.String("events_key")
	if key == "" {
		key = defaultEventsKey
	}
	items, err := eventList(doc, key)
	if err != nil {
		return sources.Err(cfg.Series, errors.WrapParse("json", url, err))
	}

	evs := make([]events.Raw, 0, len(items))
	var warnings []string
	for i, item := range items {
		raw, ok := item.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("[%s] %s: entry %d is not an object; skipped", cfg.Series, url, i))
			continue
		}
		if _, ok := raw[events.KeySource]; !ok {
			raw[events.KeySource] = string(events.OriginScraped)
		}
		if _, ok := raw[events.KeyEvidence]; !ok {
			raw[events.KeyEvidence] = map[string]any{
				"url":   url,
				"field": raw[events.KeyType],
			}
		}
		evs = append(evs, raw)
	}
	return sources.Ok(cfg.Series, evs, warnings)
}

func (c *Collector) client(cfg sources.Config) *transport.Client {
	opts := []transport.Option{
		transport.WithAuth(transport.FromEnv(cfg.String("token_env"), cfg.String("header"))),
	}
	if c.http != nil {
		hc := *c.http
		opts = append(opts, transport.WithHTTPClient(&hc))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, transport.WithTimeout(cfg.Timeout))
	}
	return transport.New(opts...)
}

// eventList accepts a bare list or an object holding the list under key.
func eventList(doc any, key string) ([]any, error) {
	switch t := doc.(type) {
	case []any:
		return t, nil
	case map[string]any:
		list, ok := t[key].([]any)
		if !ok {
			return nil, fmt.Errorf("object has no %q list", key)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("expected a list of events or an object with a %q list", key)
	}
}
