// Package wallet implements the deposit and withdrawal forms on top of the
// shared financial state, the admin fee rules and the transaction ledger.
package wallet

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/sdibella/leadoptions/internal/financials"
	"github.com/sdibella/leadoptions/internal/ledger"
	"github.com/sdibella/leadoptions/internal/money"
	"github.com/sdibella/leadoptions/internal/settings"
)

var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDailyLimit        = errors.New("daily withdrawal limit exceeded")
	ErrMonthlyLimit      = errors.New("monthly withdrawal limit exceeded")
	ErrInvalidAddress    = errors.New("invalid destination address")
	ErrUnknownMethod     = errors.New("unknown payment method")
)

// FormError pairs a sentinel with the message the wallet form displays.
type FormError struct {
	Err error
	Msg string
}

func (e *FormError) Error() string { return e.Msg }
func (e *FormError) Unwrap() error { return e.Err }

func formErr(err error, msg string) error {
	return &FormError{Err: err, Msg: msg}
}

var (
	LockedBonus  = decimal.NewFromInt(2500)
	DailyLimit   = decimal.NewFromInt(50000)
	MonthlyLimit = decimal.NewFromInt(500000)
)

const (
	MethodBitcoin = "Bitcoin Wallet"
	MethodTRC20   = "USDT (TRC20)"
)

// WithdrawMethods lists the destinations the withdraw form offers.
var WithdrawMethods = []string{MethodBitcoin, MethodTRC20}

var (
	btcAddress   = regexp.MustCompile(`^(1|3|bc1)[a-zA-Z0-9]{25,90}$`)
	trc20Address = regexp.MustCompile(`^T[a-zA-Z0-9]{33}$`)
)

type DepositDetails struct {
	Key          string   `json:"key"`
	Method       string   `json:"method"`
	Network      string   `json:"network"`
	Address      string   `json:"address"`
	Label        string   `json:"label"`
	Instructions []string `json:"instructions"`
}

type Wallet struct {
	holder   *financials.Holder
	settings *settings.Store
	ledger   *ledger.Ledger

	mu          sync.Mutex
	usedDaily   decimal.Decimal
	usedMonthly decimal.Decimal
}

func New(holder *financials.Holder, store *settings.Store, l *ledger.Ledger) *Wallet {
	return &Wallet{
		holder:      holder,
		settings:    store,
		ledger:      l,
		usedDaily:   decimal.NewFromInt(1250),
		usedMonthly: decimal.NewFromInt(45200),
	}
}

// DepositDetails returns the receive address and instructions for key
// ("btc" or "usdt"). Unknown keys fall back to btc.
func (w *Wallet) DepositDetails(key string) DepositDetails {
	s := w.settings.Get()
	if strings.ToLower(key) == "usdt" {
		return DepositDetails{
			Key:     "usdt",
			Method:  "USDT (TRC20)",
			Network: "Tron (TRC20)",
			Address: s.USDTWallet,
			Label:   "USDT",
			Instructions: []string{
				"Send only USDT via the Tron (TRC20) network.",
				"Do not send via ERC20 or BSC, your funds will be lost.",
				"Transfers typically arrive within 2-5 minutes.",
				"Ensure the destination address starts with 'T'.",
			},
		}
	}
	return DepositDetails{
		Key:     "btc",
		Method:  "Bitcoin (BTC)",
		Network: "Bitcoin (BTC)",
		Address: s.BTCWallet,
		Label:   "Bitcoin",
		Instructions: []string{
			"Send only Bitcoin (BTC) to this address.",
			"Ensure you are using the Bitcoin network.",
			"Sending any other coin may result in permanent loss.",
			"1 network confirmation is required for credit.",
		},
	}
}

type DepositResult struct {
	Quote       settings.Quote     `json:"quote"`
	Transaction ledger.Transaction `json:"transaction"`
	State       financials.State   `json:"state"`
	Message     string             `json:"message"`
}

// Deposit credits the fee-adjusted amount immediately.
func (w *Wallet) Deposit(key string, amount decimal.Decimal) (DepositResult, error) {
	if !amount.IsPositive() {
		return DepositResult{}, ErrInvalidAmount
	}
	details := w.DepositDetails(key)
	q := w.settings.Get().DepositQuote(amount)

	state := w.holder.Credit(q.Net)
	tx := w.ledger.Record(ledger.Deposit, q.Net, ledger.Completed, details.Method)

	slog.Info("deposit credited", "method", details.Method, "gross", amount.StringFixed(2), "net", q.Net.StringFixed(2))

	return DepositResult{
		Quote:       q,
		Transaction: tx,
		State:       state,
		Message:     "Successfully deposited " + money.USD(amount),
	}, nil
}

func (w *Wallet) QuoteWithdrawal(amount decimal.Decimal) settings.Quote {
	return w.settings.Get().WithdrawalQuote(amount)
}

// ValidateAddress returns nil or an error carrying the form message.
func ValidateAddress(method, addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return formErr(ErrInvalidAddress, "Destination address is required")
	}
	switch method {
	case MethodBitcoin:
		if !btcAddress.MatchString(addr) {
			return formErr(ErrInvalidAddress, "Invalid Bitcoin address. Ensure it starts with 1, 3, or bc1.")
		}
	case MethodTRC20:
		if !trc20Address.MatchString(addr) {
			return formErr(ErrInvalidAddress, "Invalid TRC20 address. Must start with 'T' and be 34 characters.")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	return nil
}

// Message returns the text the form shows for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var fe *FormError
	if errors.As(err, &fe) {
		return fe.Msg
	}
	return err.Error()
}

type WithdrawResult struct {
	Quote       settings.Quote     `json:"quote"`
	Transaction ledger.Transaction `json:"transaction"`
	State       financials.State   `json:"state"`
}

// Withdraw debits the gross amount and records a processing transaction.
func (w *Wallet) Withdraw(method string, amount decimal.Decimal, addr string) (WithdrawResult, error) {
	if !amount.IsPositive() {
		return WithdrawResult{}, ErrInvalidAmount
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	available := Available(w.holder.Snapshot().Balance)
	if amount.GreaterThan(available) {
		return WithdrawResult{}, formErr(ErrInsufficientFunds, "Insufficient funds")
	}
	if remaining := DailyLimit.Sub(w.usedDaily); amount.GreaterThan(remaining) {
		return WithdrawResult{}, formErr(ErrDailyLimit, "Amount exceeds daily withdrawal limit. Remaining today: "+money.USD(remaining))
	}
	if remaining := MonthlyLimit.Sub(w.usedMonthly); amount.GreaterThan(remaining) {
		return WithdrawResult{}, formErr(ErrMonthlyLimit, "Amount exceeds monthly withdrawal limit. Remaining this month: "+money.USD(remaining))
	}
	if err := ValidateAddress(method, addr); err != nil {
		return WithdrawResult{}, err
	}

	// The simulator may have moved the balance since the check above.
	state, err := w.holder.DebitAbove(amount, LockedBonus)
	if err != nil {
		return WithdrawResult{}, formErr(ErrInsufficientFunds, "Insufficient funds")
	}
	w.usedDaily = w.usedDaily.Add(amount)
	w.usedMonthly = w.usedMonthly.Add(amount)
	tx := w.ledger.Record(ledger.Withdrawal, amount, ledger.Processing, method)

	slog.Info("withdrawal queued", "method", method, "amount", amount.StringFixed(2))

	return WithdrawResult{
		Quote:       w.settings.Get().WithdrawalQuote(amount),
		Transaction: tx,
		State:       state,
	}, nil
}

// Available is the withdrawable part of balance after the locked bonus.
func Available(balance decimal.Decimal) decimal.Decimal {
	return money.Floor(balance.Sub(LockedBonus))
}

type Limit struct {
	Limit     decimal.Decimal `json:"limit"`
	Used      decimal.Decimal `json:"used"`
	Remaining decimal.Decimal `json:"remaining"`
}

type Overview struct {
	Balance      decimal.Decimal      `json:"balance"`
	Available    decimal.Decimal      `json:"available"`
	LockedBonus  decimal.Decimal      `json:"lockedBonus"`
	Daily        Limit                `json:"daily"`
	Monthly      Limit                `json:"monthly"`
	Trend        string               `json:"trend"`
	EstimatedPnL string               `json:"estimatedPnl"`
	Recent       []ledger.Transaction `json:"recent"`
}

func (w *Wallet) Overview() Overview {
	balance := w.holder.Snapshot().Balance

	w.mu.Lock()
	daily := Limit{Limit: DailyLimit, Used: w.usedDaily, Remaining: DailyLimit.Sub(w.usedDaily)}
	monthly := Limit{Limit: MonthlyLimit, Used: w.usedMonthly, Remaining: MonthlyLimit.Sub(w.usedMonthly)}
	w.mu.Unlock()

	o := Overview{
		Balance:      balance,
		Available:    Available(balance),
		LockedBonus:  LockedBonus,
		Daily:        daily,
		Monthly:      monthly,
		Trend:        "-99.9%",
		EstimatedPnL: "+$15,230",
		Recent:       w.ledger.All(),
	}
	if balance.GreaterThan(decimal.NewFromInt(1000)) {
		o.Trend = "+2.4%"
	}
	if balance.LessThan(decimal.NewFromInt(1000)) {
		o.EstimatedPnL = "-$45,200"
	}
	return o
}
