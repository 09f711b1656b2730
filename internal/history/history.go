// Package history builds the transaction history view: ledger rows enriched
// with fees and network details, merged with older archived rows, plus the
// CSV export and its saved preferences.
package history

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sdibella/leadoptions/internal/ledger"
)

var (
	withdrawalServiceFee = decimal.RequireFromString("5.00")
	bitcoinGasFee        = decimal.RequireFromString("15.40")
	defaultGasFee        = decimal.RequireFromString("2.50")
)

// Row is a transaction as the history table shows it.
type Row struct {
	ledger.Transaction
	ServiceFee decimal.Decimal `json:"serviceFee"`
	GasFee     decimal.Decimal `json:"gasFee"`
	Network    string          `json:"network"`
}

// Enrich derives fees and network from the transaction type and method.
func Enrich(tx ledger.Transaction) Row {
	r := Row{
		Transaction: tx,
		ServiceFee:  decimal.Zero,
		GasFee:      decimal.Zero,
		Network:     networkFor(tx.Method),
	}
	if tx.Type == ledger.Withdrawal {
		r.ServiceFee = withdrawalServiceFee
	}
	if tx.Type.MovesFunds() {
		r.GasFee = defaultGasFee
		if strings.Contains(tx.Method, "Bitcoin") {
			r.GasFee = bitcoinGasFee
		}
	}
	if r.TxHash == "" {
		r.TxHash = "-"
	}
	return r
}

func networkFor(method string) string {
	switch {
	case strings.Contains(method, "Bitcoin"):
		return "Bitcoin"
	case strings.Contains(method, "TRC20"):
		return "Tron (TRC20)"
	default:
		return "Internal"
	}
}

// Total is the signed cash effect: withdrawals cost amount plus fees,
// everything else nets the gas fee.
func (r Row) Total() decimal.Decimal {
	if r.Type == ledger.Withdrawal {
		return r.Amount.Add(r.ServiceFee).Add(r.GasFee).Neg()
	}
	return r.Amount.Sub(r.GasFee)
}

// Archived returns the fixed older rows shown below the live ledger.
func Archived(loc *time.Location) []Row {
	d := decimal.RequireFromString
	at := func(m time.Month, day, h, min int) time.Time {
		return time.Date(2023, m, day, h, min, 0, 0, loc)
	}
	row := func(id string, t ledger.Type, amount string, st ledger.Status, date string, when time.Time, method, svc, gas, network, hash string) Row {
		return Row{
			Transaction: ledger.Transaction{
				ID: id, Type: t, Amount: d(amount), Status: st,
				Date: date, At: when, Method: method, TxHash: hash,
			},
			ServiceFee: d(svc),
			GasFee:     d(gas),
			Network:    network,
		}
	}

	return []Row{
		row("tx_h1", ledger.Deposit, "15000", ledger.Completed, "Oct 15, 2023, 08:45 AM", at(time.October, 15, 8, 45), "Bitcoin (BTC)", "0", "18.20", "Bitcoin", "0x7a2b9e..."),
		row("tx_h2", ledger.Profit, "850", ledger.Completed, "Oct 14, 2023, 02:30 PM", at(time.October, 14, 14, 30), "Trade Profit", "0", "0", "Internal", "-"),
		row("tx_h3", ledger.Withdrawal, "2000", ledger.Completed, "Oct 12, 2023, 11:15 AM", at(time.October, 12, 11, 15), "USDT (TRC20)", "5.00", "2.10", "Tron (TRC20)", "0x3c4d5e..."),
		row("tx_h4", ledger.Bonus, "500", ledger.Completed, "Oct 01, 2023, 10:00 AM", at(time.October, 1, 10, 0), "Loyalty Bonus", "0", "0", "Internal", "-"),
		row("tx_h5", ledger.Withdrawal, "5000", ledger.Failed, "Sep 28, 2023, 04:20 PM", at(time.September, 28, 16, 20), "Bank Transfer", "0", "0", "SWIFT", "-"),
		row("tx_h6", ledger.Deposit, "2500", ledger.Completed, "Sep 25, 2023, 09:10 AM", at(time.September, 25, 9, 10), "USDT (TRC20)", "0", "2.10", "Tron (TRC20)", "0x9f8e7d..."),
		row("tx_h7", ledger.Profit, "320", ledger.Completed, "Sep 24, 2023, 01:05 PM", at(time.September, 24, 13, 5), "Trade Profit", "0", "0", "Internal", "-"),
	}
}

// Merge enriches the live ledger, appends the archived rows and sorts the
// result newest first.
func Merge(live []ledger.Transaction, archived []Row) []Row {
	rows := make([]Row, 0, len(live)+len(archived))
	for _, tx := range live {
		rows = append(rows, Enrich(tx))
	}
	rows = append(rows, archived...)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].At.After(rows[j].At)
	})
	return rows
}

// Filter keeps rows whose id, method or network contains search
// (case-insensitive) and whose type matches typ. typ "all" or "" keeps every
// type.
func Filter(rows []Row, search, typ string) []Row {
	search = strings.ToLower(strings.TrimSpace(search))
	typ = strings.ToLower(typ)

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if typ != "" && typ != "all" && string(r.Type) != typ {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.ID), search) &&
			!strings.Contains(strings.ToLower(r.Method), search) &&
			!strings.Contains(strings.ToLower(r.Network), search) {
			continue
		}
		out = append(out, r)
	}
	return out
}
