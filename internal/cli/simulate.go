package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"gangster-ledger/internal/flair"
	"gangster-ledger/internal/ledger"
	"gangster-ledger/internal/payout"
	"gangster-ledger/internal/store"
)

// NewSimulateCommand plays out the sample contract board and prints the ledger.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Assign the sample contracts round-robin and print the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := ledger.New(store.New(time.Now), ledger.WithLogger(slog.Default()))
			return simulate(cmd, svc)
		},
	}
}

func simulate(cmd *cobra.Command, svc *ledger.Service) error {
	st := svc.Store()
	st.SeedSampleData()

	roster := st.ListGangsters()
	if len(roster) == 0 {
		return fmt.Errorf("empty roster")
	}

	out := cmd.OutOrStdout()
	for i, c := range st.ListActiveContracts() {
		g := roster[i%len(roster)]
		res, ok := svc.Assign(cmd.Context(), c.ID, g.ID)
		if !ok {
			fmt.Fprintf(out, "%-30s refused for %s\n", c.Target, g.Name)
			continue
		}
		fmt.Fprintf(out, "%-30s %-26s %8s  rep %d\n", c.Target, g.Name, flair.Currency(res.Loot.Amount), res.Reputation)
	}

	writeRoster(out, st)
	fmt.Fprintf(out, "\ntotal loot: %s\n", flair.Grouped(st.TotalLoot()))
	return nil
}

func writeRoster(out io.Writer, st *store.Store) {
	fmt.Fprintln(out)
	for _, g := range st.ListGangsters() {
		stats := payout.Stats(g)
		fmt.Fprintf(out, "%-26s rep %-4d success %d%%  danger %d  %s\n",
			g.Name, g.Reputation, stats.SuccessRate, stats.DangerLevel, stats.Status)
	}
}
