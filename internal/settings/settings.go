// Package settings holds the admin-controlled system settings: the service
// fee shown in the footer, the deposit wallet addresses and the fee rules
// applied to deposits and withdrawals.
package settings

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/sdibella/leadoptions/internal/money"
)

type FeeType string

const (
	FeeFixed      FeeType = "fixed"
	FeePercentage FeeType = "percentage"
)

var ErrInvalidSettings = errors.New("invalid system settings")

type SystemSettings struct {
	ServiceFee        decimal.Decimal `json:"serviceFee"`
	BTCWallet         string          `json:"btcWallet"`
	USDTWallet        string          `json:"usdtWallet"`
	WithdrawalFee     decimal.Decimal `json:"withdrawalFee"`
	WithdrawalFeeType FeeType         `json:"withdrawalFeeType"`
	DepositFee        decimal.Decimal `json:"depositFee"`
	DepositFeeType    FeeType         `json:"depositFeeType"`
}

func Default() SystemSettings {
	return SystemSettings{
		ServiceFee:        decimal.RequireFromString("1550.00"),
		BTCWallet:         "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
		USDTWallet:        "TX8D14Nj9j7xAB4dbGeiX9h8unkKHxuWwb",
		WithdrawalFee:     decimal.RequireFromString("5.00"),
		WithdrawalFeeType: FeeFixed,
		DepositFee:        decimal.Zero,
		DepositFeeType:    FeePercentage,
	}
}

func (s SystemSettings) Validate() error {
	for _, ft := range []FeeType{s.WithdrawalFeeType, s.DepositFeeType} {
		if ft != FeeFixed && ft != FeePercentage {
			return fmt.Errorf("%w: fee type %q", ErrInvalidSettings, ft)
		}
	}
	if s.WithdrawalFee.IsNegative() || s.DepositFee.IsNegative() || s.ServiceFee.IsNegative() {
		return fmt.Errorf("%w: fees must not be negative", ErrInvalidSettings)
	}
	return nil
}

// FeeFor computes the fee charged on amount. A percentage fee is a percent of
// amount; a fixed fee is charged as-is.
func FeeFor(amount, fee decimal.Decimal, ft FeeType) decimal.Decimal {
	if ft == FeePercentage {
		return amount.Mul(fee).Div(decimal.NewFromInt(100))
	}
	return fee
}

// Quote is a fee breakdown for a gross amount.
type Quote struct {
	Amount decimal.Decimal `json:"amount"`
	Fee    decimal.Decimal `json:"fee"`
	Net    decimal.Decimal `json:"net"`
}

func NewQuote(amount, fee decimal.Decimal, ft FeeType) Quote {
	f := FeeFor(amount, fee, ft)
	return Quote{Amount: amount, Fee: f, Net: money.Floor(amount.Sub(f))}
}

func (s SystemSettings) DepositQuote(amount decimal.Decimal) Quote {
	return NewQuote(amount, s.DepositFee, s.DepositFeeType)
}

func (s SystemSettings) WithdrawalQuote(amount decimal.Decimal) Quote {
	return NewQuote(amount, s.WithdrawalFee, s.WithdrawalFeeType)
}

// Store guards the live settings shared by the wallet, admin console and
// footer.
type Store struct {
	mu  sync.RWMutex
	cur SystemSettings
}

func NewStore(initial SystemSettings) *Store {
	return &Store{cur: initial}
}

func (s *Store) Get() SystemSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Update replaces the settings wholesale after validation.
func (s *Store) Update(next SystemSettings) error {
	if err := next.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.cur = next
	s.mu.Unlock()
	return nil
}
