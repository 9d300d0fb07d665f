package congressmap

import (
	"context"
	"fmt"
	"strconv"

	"github.com/agentstation/congressmap/internal/metrics"
	"github.com/agentstation/congressmap/pkg/authority"
	"github.com/agentstation/congressmap/pkg/constants"
	"github.com/agentstation/congressmap/pkg/errors"
	"github.com/agentstation/congressmap/pkg/events"
	"github.com/agentstation/congressmap/pkg/evidence"
	"github.com/agentstation/congressmap/pkg/feed"
	"github.com/agentstation/congressmap/pkg/identity"
	"github.com/agentstation/congressmap/pkg/ledger"
	"github.com/agentstation/congressmap/pkg/logging"
	"github.com/agentstation/congressmap/pkg/overrides"
	"github.com/agentstation/congressmap/pkg/sources"
	pkgsync "github.com/agentstation/congressmap/pkg/sync"
	"github.com/agentstation/congressmap/pkg/validation"
	"github.com/google/uuid"
)

// Compile-time interface check to ensure proper implementation.
var _ Updater = (*client)(nil)

// Updater runs update passes.
type Updater interface {
	// Update runs one pass of the pipeline. When the feed fails validation
	// the result is returned together with an *errors.PublishError.
	Update(ctx context.Context, opts ...pkgsync.Option) (*pkgsync.Result, error)
}

// Update collects, resolves, validates and publishes events.
func (c *client) Update(ctx context.Context, opts ...pkgsync.Option) (*pkgsync.Result, error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}

	// Step 1: Parse options
	options := pkgsync.Defaults()
	options.IncludeMissing = c.options.includeMissing
	options.Apply(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}
	if len(options.Sources) > 0 && !options.DryRun {
		// a partial collection would mark every unselected event missing
		options.DryRun = true
	}

	var cancel context.CancelFunc
	if options.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
	} else {
		cancel = func() {}
	}
	defer cancel()

	// hooks run after runMu is released so a callback may start another run
	var notify func()
	defer func() {
		if notify != nil {
			notify()
		}
	}()

	c.runMu.Lock()
	defer c.runMu.Unlock()

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx)

	result := &pkgsync.Result{
		RunID:     runID,
		StartedAt: c.options.clock().UTC(),
		DryRun:    options.DryRun,
	}
	defer c.record(result)

	// Step 2: Load sources, previous ledger and overrides
	cfgs, warnings, err := c.options.sources.LoadSources(ctx)
	if err != nil {
		return nil, errors.WrapResource("load", "sources", "", err)
	}
	result.Warnings = append(result.Warnings, warnings...)

	prev, err := c.options.store.Load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn().Err(err).Msg("Previous ledger unreadable, starting cold")
		result.Warnings = append(result.Warnings, fmt.Sprintf("[ledger] previous ledger unreadable, starting cold: %v", err))
		prev = ledger.New()
	}

	ovr, warnings, err := c.options.overrides.LoadOverrides(ctx)
	if err != nil {
		return nil, errors.WrapResource("load", "overrides", "", err)
	}
	result.Warnings = append(result.Warnings, warnings...)

	// Step 3: Collect raw events from every selected source
	cfgs = selectSources(cfgs, options)
	logger.Info().Int("sources", len(cfgs)).Bool("dry_run", options.DryRun).Msg("Starting update")
	outcomes := c.collect(ctx, cfgs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 4: Normalize at the boundary and derive ids
	var batch []sourced
	for _, oc := range outcomes {
		sr := pkgsync.SourceResult{
			Series:   oc.cfg.Series,
			Kind:     oc.cfg.Key(),
			Events:   len(oc.result.Events),
			Warnings: len(oc.result.Warnings),
			Duration: oc.duration,
			Err:      oc.result.Err,
		}
		result.Warnings = append(result.Warnings, oc.result.Warnings...)
		if oc.result.Err != nil {
			result.Warnings = append(result.Warnings, oc.result.Err.Error())
		}

		accepted, dropped := normalize(oc.cfg, oc.result.Events)
		sr.Accepted = len(accepted)
		result.Warnings = append(result.Warnings, dropped...)
		batch = append(batch, accepted...)
		result.Sources = append(result.Sources, sr)
	}

	// Step 5: Resolve competing values per datum
	resolved, conflicts := c.resolve(batch)
	result.Conflicts = conflicts
	resolveLog := logging.FromContext(logging.WithStage(ctx, "resolve"))
	for _, e := range resolved {
		if len(e.Conflicts) > 0 {
			resolveLog.Warn().
				Str("id", e.ID).
				Str("value", e.Value()).
				Int("conflicts", len(e.Conflicts)).
				Msg("Sources disagree")
		}
	}

	// Step 6: Apply manual overrides
	applied, err := overrides.Apply(resolved, ovr)
	if err != nil {
		return nil, err
	}
	result.Merged = applied.Merged
	result.Injected = applied.Injected
	result.Warnings = append(result.Warnings, applied.Warnings...)

	// Step 7: Validate in feed order
	now := c.options.clock()
	final := feed.Sorted(applied.Events)
	result.Events = final
	report := validation.Validate(final)
	result.Valid = report.OK
	result.Errors = report.Errors

	if !report.OK {
		logging.FromContext(logging.WithStage(ctx, "validate")).Error().
			Int("errors", len(report.Errors)).
			Msg("Feed failed validation")
		result.Ledger = prev
		path := ""
		if !options.DryRun {
			debug := feed.NewDebug(final, report.Errors, result.Warnings, now)
			if path, err = c.options.publisher.PublishDebug(ctx, debug); err != nil {
				return result, errors.WrapResource("save", "debug artifact", "", err)
			}
		}
		result.DebugPath = path
		result.FinishedAt = c.options.clock().UTC()
		return result, errors.NewPublishError(path, report.Errors)
	}

	// Step 8: Reconcile the ledger and build the feed
	next := ledger.Reconcile(prev, final, now)
	next.Warnings = append(next.Warnings, result.Warnings...)
	result.Ledger = next
	result.Transitions = ledger.Diff(prev, next)

	f := feed.Build(final, next, now, feed.Options{IncludeMissing: options.IncludeMissing})
	result.Feed = &f

	if options.DryRun {
		logger.Info().Bool("dry_run", true).Msg("Dry run completed - nothing persisted")
		result.FinishedAt = c.options.clock().UTC()
		return result, nil
	}

	// Step 9: Persist, ledger first so the feed never runs ahead of it
	if err := c.options.store.Save(ctx, next); err != nil {
		return result, errors.WrapResource("save", "ledger", "", err)
	}
	if err := c.options.publisher.Publish(ctx, f); err != nil {
		return result, errors.WrapResource("save", "feed", "", err)
	}
	result.Published = true

	c.mu.Lock()
	c.last = &next
	c.mu.Unlock()

	// Step 10: Notify once the run lock is released
	transitions := result.Transitions
	notify = func() { c.hooks.trigger(next, transitions) }

	logger.Info().
		Int("events", len(f.Events)).
		Int("added", len(result.Transitions.Added)).
		Int("returned", len(result.Transitions.Returned)).
		Int("missing", len(result.Transitions.WentMissing)).
		Int("warnings", len(result.Warnings)).
		Msg("Feed published")

	result.FinishedAt = c.options.clock().UTC()
	return result, nil
}

// sourced is a normalized event together with the source that reported it.
type sourced struct {
	event events.Event
	cfg   sources.Config
}

// normalize converts raw events into typed events with ids. Events that
// violate the shape invariant are dropped with a warning tagged with the
// series.
func normalize(cfg sources.Config, raws []events.Raw) ([]sourced, []string) {
	defaults := events.Defaults{Series: cfg.Series, Origin: events.OriginScraped}
	if cfg.Priority != nil {
		defaults.Priority = *cfg.Priority
	}

	var out []sourced
	var warnings []string
	for i, raw := range raws {
		e, err := events.Normalize(raw, defaults)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("[%s] event %d dropped: %v", cfg.Series, i, err))
			continue
		}
		e.ID = identity.Derive(e)
		out = append(out, sourced{event: e, cfg: cfg})
	}
	return out, warnings
}

// resolve keeps one event per datum: the one reported by the most trusted
// source. It returns the events in datum order and the number of
// conflicting values recorded.
func (c *client) resolve(batch []sourced) ([]events.Event, int) {
	board := evidence.NewBoard()
	for i, s := range batch {
		role := s.cfg.Role
		var eventTrust *authority.Trust
		url, snippet := "", ""
		if ev := s.event.Evidence; ev != nil {
			if ev.Role != "" {
				role = ev.Role
			}
			eventTrust = ev.Trust
			url, snippet = ev.URL, ev.Snippet
		}
		if role == "" {
			role = authority.RoleOfficial
		}
		board.Add(evidence.Candidate{
			Datum:   evidence.DatumKey(s.event),
			Value:   s.event.Value(),
			Trust:   c.options.trust.Resolve(role, s.cfg.Trust, eventTrust),
			Role:    role,
			URL:     url,
			Snippet: snippet,
			Source:  s.cfg.Series,
			Ref:     i,
		})
	}

	total := 0
	var out []events.Event
	for _, res := range board.Resolve() {
		w := res.Winner
		e := batch[w.Ref].event.Clone()

		trust := w.Trust
		field := string(e.Type)
		if e.Evidence != nil && e.Evidence.Field != "" {
			field = e.Evidence.Field
		}
		e.Evidence = &events.Evidence{
			URL:     w.URL,
			Snippet: evidence.Bound(w.Snippet, constants.MaxSnippetLength),
			Field:   field,
			Source:  w.Source,
			Role:    w.Role,
			Trust:   &trust,
		}
		for _, loser := range res.Conflicts {
			e.Conflicts = append(e.Conflicts, loser.Conflict())
		}
		e.Conflicts = dedupeConflicts(e.Conflicts)
		total += len(e.Conflicts)
		out = append(out, e)
	}
	return out, total
}

// dedupeConflicts drops repeated conflict records, keeping the first.
func dedupeConflicts(in []events.Conflict) []events.Conflict {
	if len(in) < 2 {
		return in
	}
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, c := range in {
		key := c.Value + "\x00" + c.Source + "\x00" + c.URL + "\x00" + strconv.Itoa(int(c.Trust))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// record exports the run to the metrics recorder, if one is configured.
func (c *client) record(result *pkgsync.Result) {
	rec := c.options.metrics
	if rec == nil {
		return
	}
	if result.FinishedAt.IsZero() {
		result.FinishedAt = c.options.clock().UTC()
	}
	outcome := metrics.OutcomeFailed
	switch {
	case result.Published:
		outcome = metrics.OutcomePublished
	case len(result.Errors) > 0:
		outcome = metrics.OutcomeRejected
	case result.DryRun && result.Valid:
		outcome = metrics.OutcomeDryRun
	}
	ledgerCounts := map[string]int{}
	for status, n := range result.Ledger.Count() {
		ledgerCounts[string(status)] = n
	}
	published := 0
	if result.Feed != nil {
		published = len(result.Feed.Events)
	}
	rec.Record(metrics.Run{
		Outcome:          outcome,
		Duration:         result.Duration(),
		Collected:        result.Collected(),
		FailedSources:    result.Failed(),
		Warnings:         len(result.Warnings),
		Conflicts:        result.Conflicts,
		ValidationErrors: len(result.Errors),
		Published:        published,
		Ledger:           ledgerCounts,
	}, c.options.clock())

	if c.options.metricsTextfile != "" {
		if err := rec.WriteTextfile(c.options.metricsTextfile); err != nil {
			logging.Warn().Err(err).Str("path", c.options.metricsTextfile).Msg("Failed to write metrics")
		}
	}
}
