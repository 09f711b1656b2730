package admin

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var ErrBroadcastBusy = errors.New("broadcast already in progress")

// Toggles are console-only switches; nothing else reads them.
type Toggles struct {
	Maintenance       bool `json:"maintenance"`
	WithdrawalsPaused bool `json:"withdrawalsPaused"`
	RegistrationsOpen bool `json:"registrationsOpen"`
}

type System struct {
	mu      sync.Mutex
	toggles Toggles
}

func NewSystem() *System {
	return &System{toggles: Toggles{RegistrationsOpen: true}}
}

func (s *System) Toggles() Toggles {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toggles
}

// Toggle flips the named switch and returns the new set.
func (s *System) Toggle(key string) (Toggles, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch key {
	case "maintenance":
		s.toggles.Maintenance = !s.toggles.Maintenance
	case "withdrawalsPaused":
		s.toggles.WithdrawalsPaused = !s.toggles.WithdrawalsPaused
	case "registrationsOpen":
		s.toggles.RegistrationsOpen = !s.toggles.RegistrationsOpen
	default:
		return s.toggles, fmt.Errorf("%w: toggle %q", ErrInvalidInput, key)
	}
	return s.toggles, nil
}

type BroadcastStatus string

const (
	BroadcastIdle    BroadcastStatus = "idle"
	BroadcastSending BroadcastStatus = "sending"
	BroadcastSuccess BroadcastStatus = "success"
)

// Broadcaster walks a message through sending and success before returning
// to idle. Deliver is called with the message when sending completes.
type Broadcaster struct {
	SendingFor time.Duration
	SuccessFor time.Duration
	Deliver    func(msg string)

	mu     sync.Mutex
	status BroadcastStatus
	last   string
	gen    uint64
}

func NewBroadcaster(deliver func(string)) *Broadcaster {
	return &Broadcaster{
		SendingFor: 1500 * time.Millisecond,
		SuccessFor: 3 * time.Second,
		Deliver:    deliver,
		status:     BroadcastIdle,
	}
}

func (b *Broadcaster) Status() BroadcastStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *Broadcaster) Last() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

func (b *Broadcaster) Send(msg string) error {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return fmt.Errorf("%w: empty broadcast", ErrInvalidInput)
	}

	b.mu.Lock()
	if b.status == BroadcastSending {
		b.mu.Unlock()
		return ErrBroadcastBusy
	}
	b.status = BroadcastSending
	b.gen++
	gen := b.gen
	b.mu.Unlock()

	time.AfterFunc(b.SendingFor, func() {
		b.mu.Lock()
		b.status = BroadcastSuccess
		b.last = msg
		b.mu.Unlock()

		if b.Deliver != nil {
			b.Deliver(msg)
		}

		time.AfterFunc(b.SuccessFor, func() {
			b.mu.Lock()
			if b.gen == gen && b.status == BroadcastSuccess {
				b.status = BroadcastIdle
			}
			b.mu.Unlock()
		})
	})
	return nil
}
