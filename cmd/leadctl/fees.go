package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sdibella/leadoptions/internal/money"
	"github.com/sdibella/leadoptions/internal/settings"
)

func feesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fees",
		Short: "Inspect deposit and withdrawal fee rules",
	}
	cmd.AddCommand(feesQuoteCmd())
	return cmd
}

func feesQuoteCmd() *cobra.Command {
	var (
		kind    string
		fee     string
		feeType string
	)
	cmd := &cobra.Command{
		Use:   "quote AMOUNT",
		Short: "Quote the fee and net amount for a deposit or withdrawal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}

			s := settings.Default()
			if fee != "" {
				f, err := decimal.NewFromString(fee)
				if err != nil {
					return fmt.Errorf("invalid fee %q: %w", fee, err)
				}
				switch kind {
				case "deposit":
					s.DepositFee = f
				default:
					s.WithdrawalFee = f
				}
			}
			if feeType != "" {
				switch kind {
				case "deposit":
					s.DepositFeeType = settings.FeeType(feeType)
				default:
					s.WithdrawalFeeType = settings.FeeType(feeType)
				}
			}
			if err := s.Validate(); err != nil {
				return err
			}

			var q settings.Quote
			switch kind {
			case "deposit":
				q = s.DepositQuote(amount)
			case "withdrawal":
				q = s.WithdrawalQuote(amount)
			default:
				return fmt.Errorf("--kind must be deposit or withdrawal, got %q", kind)
			}

			fmt.Println(titleStyle.Render(kind + " quote"))
			fmt.Println(labelStyle.Render("amount  ") + money.USD(q.Amount))
			fmt.Println(labelStyle.Render("fee     ") + money.USD(q.Fee))
			fmt.Println(labelStyle.Render("net     ") + money.USD(q.Net))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "withdrawal", "deposit or withdrawal")
	cmd.Flags().StringVar(&fee, "fee", "", "override the configured fee")
	cmd.Flags().StringVar(&feeType, "type", "", "override the fee type (fixed or percentage)")
	return cmd
}
