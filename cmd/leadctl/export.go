package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdibella/leadoptions/internal/config"
	"github.com/sdibella/leadoptions/internal/history"
	"github.com/sdibella/leadoptions/internal/ledger"
)

func exportCmd() *cobra.Command {
	var (
		out     string
		start   string
		end     string
		columns string
		save    bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the transaction history CSV using the saved export preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store := history.NewPrefsStore(cfg.ExportPrefsPath)
			p := store.Load()

			if cmd.Flags().Changed("start") {
				p.DateRange.Start = start
			}
			if cmd.Flags().Changed("end") {
				p.DateRange.End = end
			}
			if cmd.Flags().Changed("columns") {
				on := make(map[string]bool)
				for _, c := range strings.Split(columns, ",") {
					on[strings.TrimSpace(c)] = true
				}
				for _, c := range history.Columns {
					p.Columns[c] = on[c]
				}
			}

			now := time.Now()
			rows := history.Merge(ledger.Seed(now), history.Archived(time.Local))
			data, err := history.Export(rows, p, time.Local)
			if err != nil {
				return err
			}

			if out == "" {
				out = history.FileName(now)
			}
			if out == "-" {
				_, err = os.Stdout.Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			if save {
				if err := store.Save(p); err != nil {
					return fmt.Errorf("saving export prefs: %w", err)
				}
			}
			fmt.Fprintf(os.Stderr, "wrote %s (%d columns)\n", out, len(p.Active()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default transaction_history_<date>.csv)")
	cmd.Flags().StringVar(&start, "start", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&columns, "columns", "", "comma-separated column keys: "+strings.Join(history.Columns, ","))
	cmd.Flags().BoolVar(&save, "save", true, "save the effective preferences")
	return cmd
}
