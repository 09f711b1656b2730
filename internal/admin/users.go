// Package admin holds the administrator console state: the mock user
// directory, pending requests, system toggles, broadcasts and the support
// bot's training pairs.
package admin

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

type User struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      string          `json:"role"`
	Status    string          `json:"status"`
	Balance   decimal.Decimal `json:"balance"`
	LastLogin string          `json:"lastLogin"`
}

func SeedUsers() []User {
	d := decimal.RequireFromString
	return []User{
		{1, "Alex Morgan", "alex.morgan@leadoptions.fx", "Trader", "Active", d("250500.00"), "Today, 09:41 AM"},
		{2, "Sarah Connor", "s.connor@sky.net", "Trader", "Suspended", d("12450.00"), "Yesterday, 2:00 PM"},
		{3, "John Doe", "j.doe@example.com", "Trader", "Pending", d("0"), "Never"},
		{4, "Admin User", "admin@leadoptions.fx", "Administrator", "Active", d("0"), "Just now"},
		{5, "Michael Burry", "bigshort@fund.com", "VIP Trader", "Active", d("1500000.00"), "Oct 24, 2023"},
	}
}

// Directory is the in-memory user list the console edits.
type Directory struct {
	mu    sync.RWMutex
	users []User
}

func NewDirectory(users []User) *Directory {
	return &Directory{users: users}
}

// Search matches term against name or email, case-insensitively.
func (d *Directory) Search(term string) []User {
	term = strings.ToLower(strings.TrimSpace(term))
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]User, 0, len(d.users))
	for _, u := range d.users {
		if strings.Contains(strings.ToLower(u.Name), term) || strings.Contains(strings.ToLower(u.Email), term) {
			out = append(out, u)
		}
	}
	return out
}

func (d *Directory) Get(id int) (User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
}

// Update replaces the stored user with the same id.
func (d *Directory) Update(u User) error {
	if strings.TrimSpace(u.Name) == "" || strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}
	if u.Balance.IsNegative() {
		return fmt.Errorf("%w: balance must not be negative", ErrInvalidInput)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.users {
		if d.users[i].ID == u.ID {
			d.users[i] = u
			return nil
		}
	}
	return fmt.Errorf("user %d: %w", u.ID, ErrNotFound)
}

func (d *Directory) Delete(id int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.users {
		if d.users[i].ID == id {
			d.users = append(d.users[:i], d.users[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("user %d: %w", id, ErrNotFound)
}

type AuditType string

const (
	AuditSecurity  AuditType = "security"
	AuditFinancial AuditType = "financial"
	AuditAdmin     AuditType = "admin"
	AuditSystem    AuditType = "system"
)

type AuditLog struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	Details     string    `json:"details"`
	PerformedBy string    `json:"performedBy"`
	Timestamp   string    `json:"timestamp"`
	Type        AuditType `json:"type"`
}

// AuditLogs fabricates the activity log shown for a user.
func AuditLogs(u User) []AuditLog {
	return []AuditLog{
		{"1", "Login Successful", "Logged in from IP 192.168.4.1 (New York, US)", "System", "Today, 09:41 AM", AuditSystem},
		{"2", "Trade Executed", "Opened position EURUSD (Buy) - $500.00", u.Name, "Today, 09:30 AM", AuditFinancial},
		{"3", "Balance Adjustment", "Manual credit added: +$2,500.00 (Bonus)", "Admin User", "Yesterday, 4:15 PM", AuditAdmin},
		{"4", "Role Update", "Role changed to " + u.Role, "Super Admin", "Oct 20, 2023, 2:00 PM", AuditAdmin},
		{"5", "Security Alert", "Failed login attempt detected", "System", "Oct 18, 2023, 11:00 PM", AuditSecurity},
	}
}
