// Package ledger records the wallet's transaction list. Rows are fabricated;
// nothing here touches a real payment rail.
package ledger

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrUnknownType = errors.New("unknown transaction type")

type Type string

const (
	Deposit    Type = "deposit"
	Withdrawal Type = "withdrawal"
	Profit     Type = "profit"
	Bonus      Type = "bonus"
)

func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(s)); t {
	case Deposit, Withdrawal, Profit, Bonus:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// MovesFunds reports whether the type goes over an external network.
func (t Type) MovesFunds() bool {
	return t == Deposit || t == Withdrawal
}

type Status string

const (
	Completed  Status = "completed"
	Pending    Status = "pending"
	Processing Status = "processing"
	Failed     Status = "failed"
)

// Transaction is one wallet row. Date is the label the user sees; At is the
// instant it stands for and is what sorting and range filters use.
type Transaction struct {
	ID     string          `json:"id"`
	Type   Type            `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Status Status          `json:"status"`
	Date   string          `json:"date"`
	At     time.Time       `json:"at"`
	Method string          `json:"method"`
	TxHash string          `json:"txHash,omitempty"`
}

// NewTxHash returns a shortened pseudo on-chain hash like "0x3f9a0c1b22de...".
func NewTxHash() string {
	id := uuid.New()
	return "0x" + hex.EncodeToString(id[:6]) + "..."
}

// Ledger keeps transactions newest first.
type Ledger struct {
	mu  sync.RWMutex
	txs []Transaction
	now func() time.Time
}

func New(now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{now: now}
}

// NewSeeded returns a ledger holding the four recent demo rows.
func NewSeeded(now func() time.Time) *Ledger {
	l := New(now)
	l.txs = Seed(l.now())
	return l
}

// Record prepends a new transaction dated now and returns it. Deposits and
// withdrawals get a tx hash.
func (l *Ledger) Record(t Type, amount decimal.Decimal, status Status, method string) Transaction {
	at := l.now()
	tx := Transaction{
		ID:     fmt.Sprintf("tx_%d", at.UnixMilli()),
		Type:   t,
		Amount: amount,
		Status: status,
		Date:   "Just now",
		At:     at,
		Method: method,
	}
	if t.MovesFunds() {
		tx.TxHash = NewTxHash()
	}

	l.mu.Lock()
	// two records in the same millisecond would otherwise share an id
	for _, existing := range l.txs {
		if existing.ID == tx.ID {
			tx.ID = "tx_" + uuid.NewString()[:8]
			break
		}
	}
	l.txs = append([]Transaction{tx}, l.txs...)
	l.mu.Unlock()
	return tx
}

func (l *Ledger) All() []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Transaction(nil), l.txs...)
}

// Recent returns at most n transactions, newest first.
func (l *Ledger) Recent(n int) []Transaction {
	all := l.All()
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// Reset drops every row, used when a fresh account signs up.
func (l *Ledger) Reset() {
	l.mu.Lock()
	l.txs = nil
	l.mu.Unlock()
}

// Seed builds the recent demo rows relative to now.
func Seed(now time.Time) []Transaction {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	yesterday := today.AddDate(0, 0, -1)

	return []Transaction{
		{
			ID: "tx_1", Type: Deposit, Amount: decimal.NewFromInt(5000), Status: Completed,
			Date: "Today, 10:23 AM", At: today.Add(10*time.Hour + 23*time.Minute),
			Method: "Bitcoin (BTC)", TxHash: NewTxHash(),
		},
		{
			ID: "tx_2", Type: Profit, Amount: decimal.NewFromInt(450), Status: Completed,
			Date: "Yesterday, 4:15 PM", At: yesterday.Add(16*time.Hour + 15*time.Minute),
			Method: "Trade Profit",
		},
		{
			ID: "tx_3", Type: Withdrawal, Amount: decimal.NewFromInt(1200), Status: Processing,
			Date: "Oct 24, 2023", At: time.Date(2023, time.October, 24, 0, 0, 0, 0, loc),
			Method: "USDT (TRC20)", TxHash: NewTxHash(),
		},
		{
			ID: "tx_5", Type: Bonus, Amount: decimal.NewFromInt(250), Status: Completed,
			Date: "Oct 20, 2023", At: time.Date(2023, time.October, 20, 0, 0, 0, 0, loc),
			Method: "Welcome Bonus",
		},
	}
}
