// Package simulator drives the randomized account activity: a PnL drift on
// one timer and fabricated binary-option trades on another.
package simulator

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sdibella/leadoptions/internal/financials"
	"github.com/sdibella/leadoptions/internal/market"
)

var ErrCrashed = errors.New("account is liquidated")

type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
)

type Direction string

const (
	Call Direction = "CALL"
	Put  Direction = "PUT"
)

// TradeResult is one settled simulated trade. PnL is signed.
type TradeResult struct {
	ID           string          `json:"id"`
	Symbol       string          `json:"symbol"`
	Direction    Direction       `json:"direction"`
	Stake        decimal.Decimal `json:"stake"`
	PnL          decimal.Decimal `json:"pnl"`
	Won          bool            `json:"won"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Time         time.Time       `json:"time"`
}

type Options struct {
	DriftInterval time.Duration
	TradeInterval time.Duration
	WinRate       float64
	HistorySize   int
}

// Engine owns the two simulation loops. Active reports whether any trader
// session is live; nothing moves while it returns false.
type Engine struct {
	holder *financials.Holder
	board  *market.Board
	opts   Options
	active func() bool
	now    func() time.Time

	mu        sync.Mutex
	rng       *rand.Rand
	status    Status
	history   []TradeResult
	posterior *Posterior

	OnTrade  func(TradeResult)
	OnTicker func([]market.Asset)
}

func NewEngine(holder *financials.Holder, board *market.Board, rng *rand.Rand, opts Options, active func() bool) *Engine {
	if opts.HistorySize <= 0 {
		opts.HistorySize = 50
	}
	if active == nil {
		active = func() bool { return true }
	}
	return &Engine{
		holder:    holder,
		board:     board,
		opts:      opts,
		active:    active,
		now:       time.Now,
		rng:       rng,
		status:    StatusActive,
		posterior: NewPosterior(),
	}
}

// Run blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	drift := time.NewTicker(e.opts.DriftInterval)
	defer drift.Stop()
	trade := time.NewTicker(e.opts.TradeInterval)
	defer trade.Stop()

	slog.Info("simulator started",
		"drift_interval", e.opts.DriftInterval,
		"trade_interval", e.opts.TradeInterval,
		"win_rate", e.opts.WinRate,
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-drift.C:
			e.DriftOnce()
		case <-trade.C:
			e.TradeOnce()
		}
	}
}

// DriftOnce applies one random-walk step of between -15 and +25 dollars.
// It reports whether the account moved.
func (e *Engine) DriftOnce() bool {
	if !e.active() || e.holder.Snapshot().IsCrashed {
		return false
	}
	e.mu.Lock()
	delta := decimal.NewFromFloat(e.rng.Float64()*40 - 15).Round(2)
	e.mu.Unlock()

	_, ok := e.holder.Drift(delta)
	return ok
}

// TradeOnce settles one simulated trade and perturbs the asset board.
func (e *Engine) TradeOnce() (TradeResult, bool) {
	if !e.active() || e.holder.Snapshot().IsCrashed {
		return TradeResult{}, false
	}

	e.mu.Lock()
	if e.status != StatusActive {
		e.mu.Unlock()
		return TradeResult{}, false
	}
	asset := e.board.Pick(e.rng)
	dir := Call
	if e.rng.IntN(2) == 1 {
		dir = Put
	}
	stake := decimal.NewFromFloat(50 + e.rng.Float64()*450).Round(2)
	won := e.rng.Float64() < e.opts.WinRate
	e.mu.Unlock()

	amount := stake
	if won {
		amount = stake.Mul(decimal.NewFromInt(int64(asset.Income))).Div(decimal.NewFromInt(100)).Round(2)
	}
	state, ok := e.holder.RecordTrade(won, amount)
	if !ok {
		return TradeResult{}, false
	}

	pnl := amount
	if !won {
		pnl = amount.Neg()
	}
	res := TradeResult{
		ID:           uuid.NewString(),
		Symbol:       asset.Symbol,
		Direction:    dir,
		Stake:        stake,
		PnL:          pnl,
		Won:          won,
		BalanceAfter: state.Balance,
		Time:         e.now(),
	}

	e.mu.Lock()
	e.history = append([]TradeResult{res}, e.history...)
	if len(e.history) > e.opts.HistorySize {
		e.history = e.history[:e.opts.HistorySize]
	}
	if won {
		e.posterior.Update(1, 0)
	} else {
		e.posterior.Update(0, 1)
	}
	assets := e.board.Perturb(e.rng)
	e.mu.Unlock()

	slog.Debug("simulated trade", "symbol", res.Symbol, "won", won, "pnl", pnl.StringFixed(2))

	if e.OnTrade != nil {
		e.OnTrade(res)
	}
	if e.OnTicker != nil {
		e.OnTicker(assets)
	}
	return res, true
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// SetStatus pauses or resumes the trade loop. A liquidated account cannot
// be toggled.
func (e *Engine) SetStatus(s Status) error {
	if e.holder.Snapshot().IsCrashed {
		return ErrCrashed
	}
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
	return nil
}

func (e *Engine) Toggle() (Status, error) {
	next := StatusPaused
	if e.Status() == StatusPaused {
		next = StatusActive
	}
	if err := e.SetStatus(next); err != nil {
		return e.Status(), err
	}
	return next, nil
}

// History returns the bounded trade list, newest first.
func (e *Engine) History() []TradeResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]TradeResult(nil), e.history...)
}

func (e *Engine) Summary() Summary {
	return Summarize(e.History())
}

func (e *Engine) Posterior() PosteriorView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.posterior.View()
}

// Reset clears trade history, used when the account is reseeded.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.history = nil
	e.posterior = NewPosterior()
	e.status = StatusActive
	e.mu.Unlock()
}
