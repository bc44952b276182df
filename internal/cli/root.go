package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"gangster-ledger/internal/config"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	Verbose bool
	cfg     config.Config
}

// NewRootCommand creates the root command for the ledger CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:          "ledger",
		Short:        "Bookkeeping for the family",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg

			level := cfg.SlogLevel()
			if opts.Verbose {
				level = slog.LevelDebug
			}
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
			slog.SetDefault(slog.New(handler))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSimulateCommand(opts))

	return cmd
}
