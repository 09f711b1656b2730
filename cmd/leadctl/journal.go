package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sdibella/leadoptions/internal/journal"
	"github.com/sdibella/leadoptions/internal/money"
)

func journalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "journal PATH",
		Short: "Summarise a platform event journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := journal.Read(args[0])
			if err != nil {
				return err
			}
			trades, err := journal.Trades(entries)
			if err != nil {
				return err
			}

			fmt.Println(titleStyle.Render(fmt.Sprintf("%d events", len(entries))))
			for _, c := range journal.Tally(entries) {
				fmt.Printf("%s %d\n", labelStyle.Render(fmt.Sprintf("%-14s", c.Type)), c.Count)
			}

			if len(trades) == 0 {
				return nil
			}
			net := decimal.Zero
			wins := 0
			for _, t := range trades {
				pnl, err := decimal.NewFromString(t.PnL)
				if err != nil {
					return fmt.Errorf("trade %s pnl %q: %w", t.ID, t.PnL, err)
				}
				net = net.Add(pnl)
				if t.Won {
					wins++
				}
			}
			fmt.Println()
			fmt.Printf("%s %d/%d won, net %s\n", labelStyle.Render("trades        "), wins, len(trades), money.USD(net))
			return nil
		},
	}
}
