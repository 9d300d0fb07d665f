package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/congressmap/internal/cmd/output"
	"github.com/agentstation/congressmap/pkg/errors"
	"github.com/agentstation/congressmap/pkg/logging"
)

const rootLong = `Congressmap collects congress dates and deadlines from configured sources,
reconciles them by source authority, applies curated overrides and publishes
a validated event feed together with a ledger that remembers every event
across runs.`

// Execute runs one CLI invocation. Flag overrides apply to this invocation
// only; the loaded configuration is restored afterwards.
func (a *App) Execute(ctx context.Context, args []string) error {
	base, saved := a.config, *a.config
	defer func() {
		changed := a.config != base || a.config.DataDir != saved.DataDir
		*base = saved
		a.setConfig(base)
		if changed {
			a.resetClient()
		}
	}()

	root := a.newRootCommand()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	return root.ExecuteContext(ctx)
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "congressmap",
		Short:             "Anesthesiology congress calendar reconciler",
		Long:              rootLong,
		Version:           a.build.Version,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	root.SetVersionTemplate("congressmap {{.Version}}\n")
	root.AddGroup(
		&cobra.Group{ID: "core", Title: "Core Commands:"},
		&cobra.Group{ID: "management", Title: "Management Commands:"},
	)

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default $HOME/.congressmap.yaml)")
	pf.StringP("data-dir", "d", "", "directory holding sources, ledger and feed files")
	pf.StringP("format", "o", "", "output format: table, wide, json, yaml")
	pf.String("log-level", "", "trace, debug, info, warn or error; wins over -v and -q")
	pf.BoolP("verbose", "v", false, "debug logging")
	pf.BoolP("quiet", "q", false, "warnings and errors only")
	pf.Bool("no-color", false, "disable colored output")

	root.AddCommand(
		a.NewUpdateCommand(),
		a.NewListCommand(),
		a.NewValidateCommand(),
		a.NewVersionCommand(),
	)
	return root
}

// setupCommand applies persistent flags before any subcommand runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if path := flagString(cmd, "config"); path != "" {
		config, err := LoadConfig(path)
		if err != nil {
			return err
		}
		a.config = config
		a.resetClient()
	}

	format := flagString(cmd, "format")
	if _, err := output.ParseFormat(format); err != nil {
		return errors.WrapValidation("format", err)
	}

	dataDir := flagString(cmd, "data-dir")
	if dataDir != "" {
		a.resetClient()
	}
	a.config.UpdateFromFlags(
		flagBool(cmd, "verbose"),
		flagBool(cmd, "quiet"),
		flagBool(cmd, "no-color"),
		format,
		flagString(cmd, "log-level"),
		dataDir,
	)

	a.setConfig(a.config)
	logging.SetDefault(*a.logger)
	cmd.SetContext(a.Context(cmd.Context()))
	return nil
}

// format resolves the output format for the running command.
func (a *App) format() output.Format {
	return output.DetectFormat(a.config.Format)
}

// ExitOnError prints err to stderr and exits 1. Nil is a no-op.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// flagString and flagBool read persistent flags registered in
// newRootCommand; a lookup failure is a programming error.
func flagString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("flag %s: %v", name, err))
	}
	return v
}

func flagBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("flag %s: %v", name, err))
	}
	return v
}
