package admin

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type Request struct {
	ID     int             `json:"id"`
	Type   string          `json:"type"`
	User   string          `json:"user"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Time   string          `json:"time"`
}

func SeedRequests() []Request {
	return []Request{
		{101, "Deposit", "Alex Morgan", decimal.NewFromInt(5000), "Bitcoin", "10 mins ago"},
		{102, "Withdrawal", "Sarah Connor", decimal.NewFromInt(1200), "USDT", "1 hour ago"},
		{103, "KYC", "John Doe", decimal.Zero, "ID Verification", "2 hours ago"},
	}
}

type Action string

const (
	Approve Action = "approve"
	Reject  Action = "reject"
)

// Decision records what happened to a resolved request.
type Decision struct {
	Request Request   `json:"request"`
	Action  Action    `json:"action"`
	At      time.Time `json:"at"`
}

// Queue is the pending-request list. Resolving a request removes it.
type Queue struct {
	mu        sync.Mutex
	pending   []Request
	decisions []Decision
	now       func() time.Time
}

func NewQueue(reqs []Request) *Queue {
	return &Queue{pending: reqs, now: time.Now}
}

func (q *Queue) Pending() []Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Request(nil), q.pending...)
}

func (q *Queue) Resolve(id int, action Action) (Decision, error) {
	if action != Approve && action != Reject {
		return Decision{}, fmt.Errorf("%w: action %q", ErrInvalidInput, action)
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, r := range q.pending {
		if r.ID != id {
			continue
		}
		q.pending = append(q.pending[:i], q.pending[i+1:]...)
		d := Decision{Request: r, Action: action, At: q.now()}
		q.decisions = append(q.decisions, d)
		return d, nil
	}
	return Decision{}, fmt.Errorf("request %d: %w", id, ErrNotFound)
}

func (q *Queue) Decisions() []Decision {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Decision(nil), q.decisions...)
}
