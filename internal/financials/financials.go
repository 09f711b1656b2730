// Package financials holds the single mutable account record that every
// other part of the platform reads and mutates: the random-walk drift, the
// trade simulator, the wallet forms and the admin crash action.
package financials

import (
	"errors"
	"slices"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/sdibella/leadoptions/internal/money"
)

// ErrBelowFloor means a debit would leave less than the required floor.
var ErrBelowFloor = errors.New("balance below floor")

type State struct {
	Balance      decimal.Decimal `json:"balance"`
	Profit       decimal.Decimal `json:"profit"`
	ActiveTrades int             `json:"activeTrades"`
	TotalWon     int             `json:"totalWon"`
	TotalLost    int             `json:"totalLost"`
	IsCrashed    bool            `json:"isCrashed"`
}

// Equal reports whether both records hold the same values.
func (s State) Equal(o State) bool {
	return s.Balance.Equal(o.Balance) && s.Profit.Equal(o.Profit) &&
		s.ActiveTrades == o.ActiveTrades && s.TotalWon == o.TotalWon &&
		s.TotalLost == o.TotalLost && s.IsCrashed == o.IsCrashed
}

// Seed is the demo account shown to the built-in trader.
func Seed() State {
	return State{
		Balance:      decimal.RequireFromString("250500.00"),
		Profit:       decimal.RequireFromString("1000000.00"),
		ActiveTrades: 60,
		TotalWon:     40,
		TotalLost:    20,
	}
}

// Crashed is the state forced by the admin crash action.
func Crashed() State {
	return State{
		Balance:      decimal.RequireFromString("42.50"),
		Profit:       decimal.RequireFromString("-15400.00"),
		ActiveTrades: 0,
		TotalWon:     30,
		TotalLost:    45,
		IsCrashed:    true,
	}
}

// Holder guards State and fans out a copy to subscribers after every change.
type Holder struct {
	mu    sync.Mutex
	state State
	subs  []func(State)
}

func NewHolder(initial State) *Holder {
	return &Holder{state: initial}
}

// Subscribe registers fn to receive the new state after each mutation.
// Callbacks run synchronously outside the lock.
func (h *Holder) Subscribe(fn func(State)) {
	h.mu.Lock()
	h.subs = append(h.subs, fn)
	h.mu.Unlock()
}

func (h *Holder) Snapshot() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Holder) mutate(fn func(*State)) State {
	s, _ := h.apply(func(s *State) bool {
		fn(s)
		return true
	})
	return s
}

// apply runs fn under the lock. Subscribers are only notified when fn
// reports that it changed the state.
func (h *Holder) apply(fn func(*State) bool) (State, bool) {
	h.mu.Lock()
	changed := fn(&h.state)
	s := h.state
	subs := slices.Clone(h.subs)
	h.mu.Unlock()

	if !changed {
		return s, false
	}
	for _, sub := range subs {
		sub(s)
	}
	return s, true
}

// Drift moves balance and profit together by delta, simulating live PnL.
// A crashed account is left untouched and ok is false.
func (h *Holder) Drift(delta decimal.Decimal) (State, bool) {
	return h.apply(func(s *State) bool {
		if s.IsCrashed {
			return false
		}
		s.Balance = s.Balance.Add(delta)
		s.Profit = s.Profit.Add(delta)
		return true
	})
}

// RecordTrade settles one simulated trade. amount is the absolute PnL.
// Trades never settle against a crashed account.
func (h *Holder) RecordTrade(won bool, amount decimal.Decimal) (State, bool) {
	return h.apply(func(s *State) bool {
		if s.IsCrashed {
			return false
		}
		if won {
			s.TotalWon++
			s.Balance = s.Balance.Add(amount)
			s.Profit = s.Profit.Add(amount)
		} else {
			s.TotalLost++
			s.Balance = s.Balance.Sub(amount)
			s.Profit = s.Profit.Sub(amount)
		}
		return true
	})
}

func (h *Holder) SetBalance(v decimal.Decimal) State {
	return h.mutate(func(s *State) { s.Balance = v })
}

func (h *Holder) Credit(v decimal.Decimal) State {
	return h.mutate(func(s *State) { s.Balance = s.Balance.Add(v) })
}

// DebitAbove removes v only if at least v remains above floor at the
// moment of the debit. Otherwise it returns ErrBelowFloor and the
// balance it saw.
func (h *Holder) DebitAbove(v, floor decimal.Decimal) (State, error) {
	s, ok := h.apply(func(s *State) bool {
		if s.Balance.Sub(floor).LessThan(v) {
			return false
		}
		s.Balance = s.Balance.Sub(v)
		return true
	})
	if !ok {
		return s, ErrBelowFloor
	}
	return s, nil
}

func (h *Holder) Crash() State {
	return h.mutate(func(s *State) { *s = Crashed() })
}

// ResetForNewUser zeroes the record for a freshly signed-up trader.
func (h *Holder) ResetForNewUser() State {
	return h.mutate(func(s *State) { *s = State{Balance: decimal.Zero, Profit: decimal.Zero} })
}

// Stat is one dashboard card.
type Stat struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Value  string `json:"value"`
	Icon   string `json:"iconName"`
	Accent string `json:"accentColor"`
}

// Stats maps the state onto the six dashboard cards. Capital is static.
func (s State) Stats() []Stat {
	return []Stat{
		{ID: "1", Label: "Capital", Value: "$500.00", Icon: "DollarSign", Accent: "default"},
		{ID: "2", Label: "Profit", Value: money.USD(s.Profit), Icon: "TrendingUp", Accent: "green"},
		{ID: "3", Label: "Balance", Value: money.USD(s.Balance), Icon: "Wallet", Accent: "default"},
		{ID: "4", Label: "Trades", Value: strconv.Itoa(s.ActiveTrades), Icon: "Activity", Accent: "default"},
		{ID: "5", Label: "Total Won", Value: strconv.Itoa(s.TotalWon), Icon: "CheckCircle", Accent: "green"},
		{ID: "6", Label: "Total Loss", Value: strconv.Itoa(s.TotalLost), Icon: "XCircle", Accent: "red"},
	}
}

// Sentiment is the buy/sell pressure split and signal labels on the
// dashboard. A crashed account flips it to overwhelming selling.
type Sentiment struct {
	BuyPct  int      `json:"buyPct"`
	SellPct int      `json:"sellPct"`
	Signals []string `json:"signals"`
	Banner  string   `json:"banner,omitempty"`
}

func (s State) Sentiment() Sentiment {
	if s.IsCrashed {
		return Sentiment{
			BuyPct:  5,
			SellPct: 95,
			Signals: []string{"STRONG SELL", "STRONG SELL", "STRONG SELL", "STRONG SELL", "STRONG SELL"},
			Banner:  "WARNING: MARGIN CALL TRIGGERED. ACCOUNT LIQUIDATED CONTACT SUPPORT.",
		}
	}
	signals := make([]string, 0, 5)
	for i := 1; i <= 5; i++ {
		if i%2 == 0 {
			signals = append(signals, "STRONG BUY")
		} else {
			signals = append(signals, "SELL")
		}
	}
	return Sentiment{BuyPct: 68, SellPct: 32, Signals: signals}
}
