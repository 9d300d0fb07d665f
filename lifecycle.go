package congressmap

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/agentstation/congressmap/pkg/errors"
	"github.com/agentstation/congressmap/pkg/logging"
	"github.com/agentstation/congressmap/pkg/sources"
	pkgsync "github.com/agentstation/congressmap/pkg/sync"
	"github.com/sourcegraph/conc/pool"
)

// collected is the outcome of one collaborator call.
type collected struct {
	cfg      sources.Config
	index    int
	result   sources.Result
	duration time.Duration
}

// collect runs the collector of every source concurrently. A failing,
// panicking or slow collector only affects its own result. Results are
// returned sorted by series, then by configuration order.
func (c *client) collect(ctx context.Context, cfgs []sources.Config) []collected {
	logger := logging.FromContext(ctx)

	p := pool.NewWithResults[collected]().WithMaxGoroutines(c.options.concurrency)
	for i, cfg := range cfgs {
		p.Go(func() collected {
			start := time.Now()
			res := c.collectOne(ctx, cfg)
			d := time.Since(start)

			ev := logger.Info()
			if !res.OK() {
				ev = logger.Warn().Err(res.Err)
			}
			ev.Str("source", cfg.Series).
				Str("kind", cfg.Key()).
				Int("events", len(res.Events)).
				Int("warnings", len(res.Warnings)).
				Dur("duration", d).
				Msg("Collected")

			return collected{cfg: cfg, index: i, result: res, duration: d}
		})
	}
	out := p.Wait()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].cfg.Series != out[j].cfg.Series {
			return out[i].cfg.Series < out[j].cfg.Series
		}
		return out[i].index < out[j].index
	})
	return out
}

// collectOne runs one collector under its timeout and converts every kind
// of failure into an error result tagged with the series.
func (c *client) collectOne(ctx context.Context, cfg sources.Config) sources.Result {
	collector, ok := c.options.registry.Get(cfg.Key())
	if !ok {
		return sources.Err(cfg.Series, errors.NewCollectorError(cfg.Series,
			fmt.Sprintf("No collector registered for kind %q", cfg.Key()), nil))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = c.options.collectorTimeout
	}
	cctx, cancel := context.WithTimeout(logging.WithSource(ctx, cfg.Series), timeout)
	defer cancel()

	done := make(chan sources.Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- sources.Err(cfg.Series, fmt.Errorf("panic: %v", r))
			}
		}()
		done <- collector.Collect(cctx, cfg.Clone())
	}()

	var res sources.Result
	select {
	case res = <-done:
	case <-cctx.Done():
		if ctx.Err() != nil {
			res = sources.Err(cfg.Series, ctx.Err())
		} else {
			res = sources.Err(cfg.Series, errors.NewTimeoutError("collect "+cfg.Series, timeout.String(), "collector did not finish"))
		}
	}

	res.Series = cfg.Series
	if res.Err != nil {
		var ce *errors.CollectorError
		if !errors.As(res.Err, &ce) {
			res.Err = errors.WrapCollector(cfg.Series, res.Err)
		}
		res.Events = nil
	}
	return res
}

// selectSources drops disabled sources and those the run options exclude.
func selectSources(cfgs []sources.Config, opts *pkgsync.Options) []sources.Config {
	out := make([]sources.Config, 0, len(cfgs))
	for _, cfg := range cfgs {
		if cfg.Disabled || !opts.Selected(cfg.Series) {
			continue
		}
		out = append(out, cfg)
	}
	return out
}
