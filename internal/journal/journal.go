package journal

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// Journal is an append-only JSONL log of platform events. A nil *Journal
// discards everything, so callers need not check whether it is enabled.
type Journal struct {
	f  *os.File
	mu sync.Mutex
}

// New opens (or creates) the journal file in append mode. An empty path
// returns a nil journal.
func New(path string) (*Journal, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &Journal{f: f}, nil
}

// Log marshals event to JSON and appends it as a single line.
func (j *Journal) Log(event any) error {
	if j == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err = j.f.Write(data); err != nil {
		return err
	}
	return j.f.Sync()
}

func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.f.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

type SessionStart struct {
	Type    string `json:"type"`
	Time    string `json:"time"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	NewUser bool   `json:"new_user"`
	Balance string `json:"balance"`
}

func NewSessionStart(email, role string, newUser bool, balance string) SessionStart {
	return SessionStart{
		Type:    "session_start",
		Time:    now(),
		Email:   email,
		Role:    role,
		NewUser: newUser,
		Balance: balance,
	}
}

type Trade struct {
	Type         string `json:"type"`
	Time         string `json:"time"`
	ID           string `json:"id"`
	Symbol       string `json:"symbol"`
	Direction    string `json:"direction"`
	Stake        string `json:"stake"`
	PnL          string `json:"pnl"`
	Won          bool   `json:"won"`
	BalanceAfter string `json:"balance_after"`
}

func NewTrade(id, symbol, direction, stake, pnl string, won bool, balanceAfter string) Trade {
	return Trade{
		Type:         "trade",
		Time:         now(),
		ID:           id,
		Symbol:       symbol,
		Direction:    direction,
		Stake:        stake,
		PnL:          pnl,
		Won:          won,
		BalanceAfter: balanceAfter,
	}
}

type Crash struct {
	Type    string `json:"type"`
	Time    string `json:"time"`
	By      string `json:"by"`
	Balance string `json:"balance"`
}

func NewCrash(by, balance string) Crash {
	return Crash{Type: "crash", Time: now(), By: by, Balance: balance}
}

// Funds covers both deposits and withdrawals; Type tells them apart.
type Funds struct {
	Type   string `json:"type"`
	Time   string `json:"time"`
	TxID   string `json:"tx_id"`
	Method string `json:"method"`
	Amount string `json:"amount"`
	Fee    string `json:"fee"`
	Net    string `json:"net"`
	Status string `json:"status"`
}

func NewDeposit(txID, method, amount, fee, net string) Funds {
	return Funds{Type: "deposit", Time: now(), TxID: txID, Method: method, Amount: amount, Fee: fee, Net: net, Status: "completed"}
}

func NewWithdrawal(txID, method, amount, fee, net string) Funds {
	return Funds{Type: "withdrawal", Time: now(), TxID: txID, Method: method, Amount: amount, Fee: fee, Net: net, Status: "processing"}
}
