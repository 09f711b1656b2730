// Package chat is the support mailbox between traders and the admin. Each
// trader has one session keyed by email with separate unread flags per side.
package chat

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrNotFound     = errors.New("chat session not found")
)

type Sender string

const (
	FromUser  Sender = "user"
	FromAdmin Sender = "admin"
)

type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type Session struct {
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	Messages    []Message `json:"messages"`
	UnreadAdmin bool      `json:"unreadAdmin"`
	UnreadUser  bool      `json:"unreadUser"`
}

func (s Session) clone() Session {
	s.Messages = append([]Message(nil), s.Messages...)
	return s
}

// Mailbox keeps sessions in creation order.
type Mailbox struct {
	mu       sync.Mutex
	sessions []*Session
	now      func() time.Time
}

func NewMailbox() *Mailbox {
	return &Mailbox{now: time.Now}
}

func (m *Mailbox) find(userID string) *Session {
	for _, s := range m.sessions {
		if s.UserID == userID {
			return s
		}
	}
	return nil
}

func (m *Mailbox) newMessage(from Sender, text string) Message {
	return Message{ID: uuid.NewString(), Sender: from, Text: text, Timestamp: m.now()}
}

// UserSend appends a trader's message, opening their session on first
// contact, and flags it unread for the admin.
func (m *Mailbox) UserSend(userID, userName, text string) (Session, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Session{}, ErrEmptyMessage
	}
	if userName == "" {
		userName = "User"
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.find(userID)
	if s == nil {
		s = &Session{UserID: userID, UserName: userName}
		m.sessions = append(m.sessions, s)
	}
	s.Messages = append(s.Messages, m.newMessage(FromUser, text))
	s.UnreadAdmin = true
	return s.clone(), nil
}

// AdminSend replies into an existing session. Replying marks the session
// read for the admin and unread for the trader.
func (m *Mailbox) AdminSend(userID, text string) (Session, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Session{}, ErrEmptyMessage
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.find(userID)
	if s == nil {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	s.Messages = append(s.Messages, m.newMessage(FromAdmin, text))
	s.UnreadUser = true
	s.UnreadAdmin = false
	return s.clone(), nil
}

// UserOpen marks the trader's side read. A trader without a session gets an
// empty one that is not stored.
func (m *Mailbox) UserOpen(userID string) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.find(userID)
	if s == nil {
		return Session{UserID: userID, Messages: []Message{}}
	}
	s.UnreadUser = false
	return s.clone()
}

// Get returns a trader's session without touching unread flags.
func (m *Mailbox) Get(userID string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.find(userID)
	if s == nil {
		return Session{}, false
	}
	return s.clone(), true
}

func (m *Mailbox) Sessions() []Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.clone())
	}
	return out
}

// TotalUnreadAdmin counts sessions waiting on an admin reply.
func (m *Mailbox) TotalUnreadAdmin() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sessions {
		if s.UnreadAdmin {
			n++
		}
	}
	return n
}
