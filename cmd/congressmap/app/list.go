package app

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/congressmap/internal/cmd/output"
	"github.com/agentstation/congressmap/internal/cmd/table"
	"github.com/agentstation/congressmap/internal/persistence"
	"github.com/agentstation/congressmap/pkg/events"
	"github.com/agentstation/congressmap/pkg/feed"
	"github.com/agentstation/congressmap/pkg/ledger"
	"github.com/agentstation/utc"
)

// listFilter narrows listed events.
type listFilter struct {
	Series string
	Type   string
	Status string
}

func (f listFilter) match(e events.Event, status ledger.Status) bool {
	if f.Series != "" && !strings.EqualFold(f.Series, e.Series) {
		return false
	}
	if f.Type != "" && events.ParseType(f.Type) != e.Type {
		return false
	}
	if f.Status != "" && !strings.EqualFold(f.Status, string(status)) {
		return false
	}
	return true
}

func (f *listFilter) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Series, "series", "", "only show this series")
	cmd.Flags().StringVar(&f.Type, "type", "", "only show this event type")
	cmd.Flags().StringVar(&f.Status, "status", "", "only show this status (active, manual, missing, ended)")
}

// NewListCommand creates the list command.
func (a *App) NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		GroupID: "core",
		Short:   "List published events, ledger items or sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(a.newListEventsCommand())
	cmd.AddCommand(a.newListLedgerCommand())
	cmd.AddCommand(a.newListSourcesCommand())

	return cmd
}

func (a *App) newListEventsCommand() *cobra.Command {
	var filter listFilter

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the events of the published feed",
		Example: `  congressmap list events
  congressmap list events --series ASA -o wide
  congressmap list events --status missing -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := persistence.ReadFeed(a.config.Paths().Feed)
			if err != nil {
				return err
			}

			entries := make([]feed.Entry, 0, len(f.Events))
			for _, en := range f.Events {
				if filter.match(en.Event, en.Status) {
					entries = append(entries, en)
				}
			}

			format := a.format()
			return output.Render(cmd.OutOrStdout(), format,
				table.EntriesToTableData(entries, format == output.FormatWide),
				entries)
		},
	}
	filter.register(cmd)

	return cmd
}

func (a *App) newListLedgerCommand() *cobra.Command {
	var filter listFilter

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "List every event the ledger remembers",
		Long: `List every event the ledger remembers, including events no source reports
anymore. The status column shows ended for active and manual items whose last
date has passed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.Client()
			if err != nil {
				return err
			}
			l, err := c.Ledger(cmd.Context())
			if err != nil {
				return err
			}

			today := events.Today(utc.Now().Time)
			filtered := ledger.New()
			filtered.UpdatedAt = l.UpdatedAt
			filtered.Warnings = l.Warnings
			for id, item := range l.Items {
				if filter.match(item.Event, ledger.DisplayStatus(item, today)) {
					filtered.Items[id] = item
				}
			}

			format := a.format()
			return output.Render(cmd.OutOrStdout(), format,
				table.LedgerToTableData(filtered, today, format == output.FormatWide),
				filtered)
		},
	}
	filter.register(cmd)

	return cmd
}

func (a *App) newListSourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the configured sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader := persistence.NewSourcesFile(a.config.Paths().Sources)
			cfgs, warnings, err := loader.LoadSources(cmd.Context())
			if err != nil {
				return err
			}
			for _, w := range warnings {
				a.logger.Warn().Msg(w)
			}

			format := a.format()
			if format.IsTable() {
				return output.Render(cmd.OutOrStdout(), format, table.ConfigsToTableData(cfgs), nil)
			}
			raw := make([]map[string]any, 0, len(cfgs))
			for _, cfg := range cfgs {
				raw = append(raw, cfg.Raw)
			}
			return output.Render(cmd.OutOrStdout(), format, table.Data{}, raw)
		},
	}
}
