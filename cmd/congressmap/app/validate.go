package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/congressmap/internal/cmd/output"
	"github.com/agentstation/congressmap/internal/cmd/table"
	"github.com/agentstation/congressmap/internal/persistence"
	"github.com/agentstation/congressmap/pkg/errors"
	"github.com/agentstation/congressmap/pkg/validation"
)

// NewValidateCommand creates the validate command.
func (a *App) NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "validate [feed.json]",
		GroupID: "management",
		Short:   "Validate a feed document",
		Long: `Validate runs the publishing checks on a feed document and reports every
problem found. Without an argument the configured feed is checked.`,
		Example: `  congressmap validate
  congressmap validate data/events.json -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.config.Paths().Feed
			if len(args) == 1 {
				path = args[0]
			}

			f, err := persistence.ReadFeed(path)
			if err != nil {
				return err
			}
			report := validation.Validate(f.EventsOf())

			w := cmd.OutOrStdout()
			format := a.format()
			if format.IsTable() {
				if !report.OK {
					if err := output.NewFormatter(format).Format(w, table.ErrorsToTableData("Error", report.Errors)); err != nil {
						return err
					}
				}
				fmt.Fprintf(w, "%s: %d events, %d error(s)\n", path, len(f.Events), len(report.Errors))
			} else if err := output.NewFormatter(format).Format(w, report); err != nil {
				return err
			}

			if !report.OK {
				return errors.NewValidationError("feed", path, fmt.Sprintf("%d error(s)", len(report.Errors)))
			}
			return nil
		},
	}
}
