package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/congressmap"
	"github.com/agentstation/congressmap/internal/cmd/output"
	"github.com/agentstation/congressmap/internal/cmd/table"
	"github.com/agentstation/congressmap/internal/watch"
	"github.com/agentstation/congressmap/pkg/constants"
	"github.com/agentstation/congressmap/pkg/errors"
	"github.com/agentstation/congressmap/pkg/events"
	"github.com/agentstation/congressmap/pkg/ledger"
	"github.com/agentstation/congressmap/pkg/logging"
	pkgsync "github.com/agentstation/congressmap/pkg/sync"
)

// updateFlags holds the flags of the update command.
type updateFlags struct {
	DryRun         bool
	IncludeMissing bool
	Sources        []string
	Timeout        time.Duration
	Watch          bool
	Every          time.Duration
}

// NewUpdateCommand creates the update command.
func (a *App) NewUpdateCommand() *cobra.Command {
	flags := &updateFlags{}

	cmd := &cobra.Command{
		Use:     "update",
		GroupID: "core",
		Short:   "Collect, reconcile and publish events",
		Args:    cobra.NoArgs,
		Long: `Update runs one reconciliation pass:

• Collect events from every enabled source in the sources document
• Derive stable ids and resolve competing dates by source trust
• Apply manual overrides and inject curated events
• Validate the batch, then save the ledger and publish the feed

When validation fails the public feed and ledger are left untouched, a debug
artifact is written instead and the command exits non-zero.`,
		Example: `  congressmap update                        # Run one pass
  congressmap update --dry-run              # Compute without writing files
  congressmap update --source ASA           # Preview a single source
  congressmap update --watch                # Re-run when sources or overrides change
  congressmap update --every 6h             # Re-run on an interval`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			opts := []pkgsync.Option{
				pkgsync.WithDryRun(flags.DryRun),
				pkgsync.WithTimeout(flags.Timeout),
			}
			if len(flags.Sources) > 0 {
				opts = append(opts, pkgsync.WithSources(flags.Sources...))
			}
			if cmd.Flags().Changed("include-missing") {
				opts = append(opts, pkgsync.WithIncludeMissing(flags.IncludeMissing))
			}

			switch {
			case flags.Watch && flags.Every > 0:
				return errors.NewValidationError("watch", flags.Every, "--watch and --every cannot be combined")
			case flags.Every > 0:
				if flags.DryRun || len(flags.Sources) > 0 {
					return errors.NewValidationError("every", flags.Every, "interval updates always publish; drop --dry-run and --source")
				}
				return a.updateEvery(ctx, cmd.OutOrStdout(), flags.Every)
			case flags.Watch:
				return a.updateOnChange(ctx, cmd.OutOrStdout(), opts)
			}
			return a.update(ctx, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "compute the feed without writing any file")
	cmd.Flags().BoolVar(&flags.IncludeMissing, "include-missing", false, "publish events that were not seen this run with status missing")
	cmd.Flags().StringSliceVarP(&flags.Sources, "source", "s", nil, "only collect these series (implies --dry-run)")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", constants.UpdateTimeout, "timeout for the whole run")
	cmd.Flags().BoolVarP(&flags.Watch, "watch", "w", false, "re-run whenever the sources or overrides files change")
	cmd.Flags().DurationVar(&flags.Every, "every", 0, "re-run on this interval until interrupted")

	return cmd
}

// update runs one pass and reports it.
func (a *App) update(ctx context.Context, w io.Writer, opts []pkgsync.Option) error {
	c, err := a.Client()
	if err != nil {
		return err
	}

	result, err := c.Update(ctx, opts...)
	if result != nil {
		if rerr := a.report(w, result); rerr != nil {
			a.logger.Warn().Err(rerr).Msg("Failed to render update report")
		}
	}
	return err
}

// updateOnChange runs one pass, then another after every settled change of
// the sources or overrides documents.
func (a *App) updateOnChange(ctx context.Context, w io.Writer, opts []pkgsync.Option) error {
	if err := a.update(ctx, w, opts); err != nil && !errors.IsNotPublished(err) {
		return err
	}

	paths := a.config.Paths()
	watcher := watch.New([]string{paths.Sources, paths.Overrides}, watch.WithDebounce(constants.WatchDebounce))
	return watcher.Run(ctx, func(ctx context.Context) error {
		return a.update(ctx, w, opts)
	})
}

// updateEvery runs one pass, then interval updates in the background until
// ctx is done.
func (a *App) updateEvery(ctx context.Context, w io.Writer, every time.Duration) error {
	c, err := a.ClientWithOptions(
		congressmap.WithAutoUpdateInterval(every),
		congressmap.WithAutoUpdates(true),
	)
	if err != nil {
		return err
	}
	defer func() { _ = c.AutoUpdatesOff() }()

	logger := logging.FromContext(ctx)
	c.OnEventAdded(func(e events.Event) {
		logger.Info().Str("id", e.ID).Str("series", e.Series).Msg("Event added")
	})
	c.OnEventMissing(func(item ledger.Item) {
		logger.Warn().Str("id", item.Event.ID).Str("series", item.Event.Series).Msg("Event went missing")
	})

	result, err := c.Update(ctx)
	if result != nil {
		if rerr := a.report(w, result); rerr != nil {
			a.logger.Warn().Err(rerr).Msg("Failed to render update report")
		}
	}
	if err != nil && !errors.IsNotPublished(err) {
		return err
	}

	a.logger.Info().Dur("every", every).Msg("Interval updates started")
	<-ctx.Done()
	a.logger.Info().Msg("Interval updates stopped")
	return nil
}

// updateReport is the structured form of a run for json and yaml output.
type updateReport struct {
	RunID     string         `json:"run_id" yaml:"run_id"`
	DryRun    bool           `json:"dry_run" yaml:"dry_run"`
	Valid     bool           `json:"valid" yaml:"valid"`
	Published bool           `json:"published" yaml:"published"`
	Events    int            `json:"events" yaml:"events"`
	Added     []string       `json:"added" yaml:"added"`
	Returned  []string       `json:"returned" yaml:"returned"`
	Missing   []string       `json:"went_missing" yaml:"went_missing"`
	Merged    []string       `json:"merged" yaml:"merged"`
	Injected  []string       `json:"injected" yaml:"injected"`
	Sources   []sourceReport `json:"sources" yaml:"sources"`
	Warnings  []string       `json:"warnings" yaml:"warnings"`
	Errors    []string       `json:"errors" yaml:"errors"`
	DebugPath string         `json:"debug_path,omitempty" yaml:"debug_path,omitempty"`
	Duration  string         `json:"duration" yaml:"duration"`
}

type sourceReport struct {
	Series   string `json:"series" yaml:"series"`
	Kind     string `json:"kind" yaml:"kind"`
	Events   int    `json:"events" yaml:"events"`
	Accepted int    `json:"accepted" yaml:"accepted"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newUpdateReport(r *pkgsync.Result) updateReport {
	rep := updateReport{
		RunID:     r.RunID,
		DryRun:    r.DryRun,
		Valid:     r.Valid,
		Published: r.Published,
		Events:    len(r.Events),
		Added:     nonNil(r.Transitions.Added),
		Returned:  nonNil(r.Transitions.Returned),
		Missing:   nonNil(r.Transitions.WentMissing),
		Merged:    nonNil(r.Merged),
		Injected:  nonNil(r.Injected),
		Warnings:  nonNil(r.Warnings),
		Errors:    nonNil(r.Errors),
		DebugPath: r.DebugPath,
		Duration:  r.Duration().Round(time.Millisecond).String(),
	}
	rep.Sources = make([]sourceReport, 0, len(r.Sources))
	for _, sr := range r.Sources {
		s := sourceReport{Series: sr.Series, Kind: sr.Kind, Events: sr.Events, Accepted: sr.Accepted}
		if sr.Err != nil {
			s.Error = sr.Err.Error()
		}
		rep.Sources = append(rep.Sources, s)
	}
	return rep
}

// report writes the run to w in the configured format. Table output also
// lists warnings and validation errors, and ends with the summary line.
func (a *App) report(w io.Writer, r *pkgsync.Result) error {
	format := a.format()
	if !format.IsTable() {
		return output.NewFormatter(format).Format(w, newUpdateReport(r))
	}

	formatter := output.NewFormatter(format)
	if len(r.Sources) > 0 {
		if err := formatter.Format(w, table.SourcesToTableData(r.Sources)); err != nil {
			return err
		}
	}
	if len(r.Warnings) > 0 {
		if err := formatter.Format(w, table.ErrorsToTableData("Warning", r.Warnings)); err != nil {
			return err
		}
	}
	if len(r.Errors) > 0 {
		if err := formatter.Format(w, table.ErrorsToTableData("Validation Error", r.Errors)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, r.Summary())
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
