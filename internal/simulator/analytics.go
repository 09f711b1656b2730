package simulator

import (
	"time"

	"github.com/shopspring/decimal"
)

type EquityPoint struct {
	Time    time.Time       `json:"time"`
	Balance decimal.Decimal `json:"balance"`
}

// Summary aggregates the bounded trade history for the dashboard.
type Summary struct {
	Trades      int             `json:"trades"`
	Wins        int             `json:"wins"`
	Losses      int             `json:"losses"`
	WinRate     float64         `json:"winRate"`
	NetPnL      decimal.Decimal `json:"netPnl"`
	AvgWin      decimal.Decimal `json:"avgWin"`
	AvgLoss     decimal.Decimal `json:"avgLoss"`
	Streak      int             `json:"streak"` // positive = wins in a row, negative = losses
	MaxDrawdown float64         `json:"maxDrawdownPct"`
	EquityCurve []EquityPoint   `json:"equityCurve"`
}

// Summarize takes history newest first, as the engine stores it.
func Summarize(history []TradeResult) Summary {
	s := Summary{
		NetPnL:      decimal.Zero,
		AvgWin:      decimal.Zero,
		AvgLoss:     decimal.Zero,
		EquityCurve: make([]EquityPoint, 0, len(history)),
	}

	totalWin, totalLoss := decimal.Zero, decimal.Zero
	for _, r := range history {
		s.NetPnL = s.NetPnL.Add(r.PnL)
		if r.Won {
			s.Wins++
			totalWin = totalWin.Add(r.PnL)
		} else {
			s.Losses++
			totalLoss = totalLoss.Add(r.PnL)
		}
	}
	s.Trades = s.Wins + s.Losses
	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades)
	}
	if s.Wins > 0 {
		s.AvgWin = totalWin.Div(decimal.NewFromInt(int64(s.Wins))).Round(2)
	}
	if s.Losses > 0 {
		s.AvgLoss = totalLoss.Div(decimal.NewFromInt(int64(s.Losses))).Round(2)
	}

	for _, r := range history {
		if r.Won {
			if s.Streak < 0 {
				break
			}
			s.Streak++
		} else {
			if s.Streak > 0 {
				break
			}
			s.Streak--
		}
	}

	// chronological order for the curve
	for i := len(history) - 1; i >= 0; i-- {
		s.EquityCurve = append(s.EquityCurve, EquityPoint{Time: history[i].Time, Balance: history[i].BalanceAfter})
	}

	peak := decimal.Zero
	for _, ep := range s.EquityCurve {
		if ep.Balance.GreaterThan(peak) {
			peak = ep.Balance
		}
		if peak.IsPositive() {
			dd, _ := peak.Sub(ep.Balance).Div(peak).Mul(decimal.NewFromInt(100)).Float64()
			if dd > s.MaxDrawdown {
				s.MaxDrawdown = dd
			}
		}
	}

	return s
}
