// Package auth is the session shell: two hardcoded accounts, a signup form
// that never persists anything, and per-session view routing.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrNoSession          = errors.New("no such session")
	ErrWrongView          = errors.New("operation not available in this view")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidPage        = errors.New("unknown page")
	ErrSignup             = errors.New("signup rejected")
)

// FormError carries the message the login or signup form displays.
type FormError struct {
	Err error
	Msg string
}

func (e *FormError) Error() string { return e.Msg }
func (e *FormError) Unwrap() error { return e.Err }

// Message returns the form text for err.
func Message(err error) string {
	var fe *FormError
	if errors.As(err, &fe) {
		return fe.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type View string

const (
	ViewLogin     View = "login"
	ViewSignup    View = "signup"
	ViewDashboard View = "dashboard"
	ViewAdmin     View = "admin"
)

type Page string

const (
	PageDashboard Page = "Dashboard"
	PageWallet    Page = "Wallet"
	PageHistory   Page = "History"
	PageProfile   Page = "Profile"
)

var Pages = []Page{PageDashboard, PageWallet, PageHistory, PageProfile}

const (
	AdminEmail = "admin@leadoptions.fx"
	DemoEmail  = "alex.morgan@leadoptions.fx"
)

var allowedDomains = []string{"leadoptions.fx", "leadoptionstrading.com", "leadoptionsfx.com"}

// Session is one browser's state. Email and Role are empty while anonymous.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId,omitempty"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	Role      Role      `json:"role,omitempty"`
	View      View      `json:"view"`
	Page      Page      `json:"page"`
	CreatedAt time.Time `json:"createdAt"`

	lastSeen time.Time
}

func (s Session) SignedIn() bool { return s.Role != "" }

type SignupForm struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	AccountType     Role   `json:"accountType"`
}

// Idle lifetimes before Sweep drops a session.
const (
	AnonymousTTL = 15 * time.Minute
	SignedInTTL  = 12 * time.Hour
)

// Manager owns every session. Listeners hear about sign-ins and sign-outs.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	limiters map[string]*rate.Limiter
	perMin   int
	now      func() time.Time

	OnSignIn  func(Session, bool)
	OnSignOut func(Session)
}

// NewManager throttles failed logins to attemptsPerMin per email.
func NewManager(attemptsPerMin int) *Manager {
	if attemptsPerMin <= 0 {
		attemptsPerMin = 10
	}
	return &Manager{
		sessions: make(map[string]*Session),
		limiters: make(map[string]*rate.Limiter),
		perMin:   attemptsPerMin,
		now:      time.Now,
	}
}

// Start opens an anonymous session on the login view.
func (m *Manager) Start() Session {
	s := &Session{
		Token:     uuid.NewString(),
		View:      ViewLogin,
		Page:      PageDashboard,
		CreatedAt: m.now(),
	}
	s.lastSeen = s.CreatedAt
	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()
	return *s
}

// lookup marks the session as seen. Callers hold m.mu.
func (m *Manager) lookup(token string) (*Session, bool) {
	s, ok := m.sessions[token]
	if ok {
		s.lastSeen = m.now()
	}
	return s, ok
}

func (m *Manager) Get(token string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.lookup(token)
	if !ok {
		return Session{}, ErrNoSession
	}
	return *s, nil
}

func (m *Manager) setView(token string, from, to View) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.lookup(token)
	if !ok {
		return Session{}, ErrNoSession
	}
	if s.View != from {
		return *s, fmt.Errorf("%w: %s", ErrWrongView, s.View)
	}
	s.View = to
	return *s, nil
}

func (m *Manager) SwitchToSignup(token string) (Session, error) {
	return m.setView(token, ViewLogin, ViewSignup)
}

func (m *Manager) SwitchToLogin(token string) (Session, error) {
	return m.setView(token, ViewSignup, ViewLogin)
}

func (m *Manager) limiter(email string) *rate.Limiter {
	l, ok := m.limiters[email]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.perMin)), m.perMin)
		m.limiters[email] = l
	}
	return l
}

// Login checks the two demo accounts. Failures spend a token from the
// email's bucket; an empty bucket rejects before checking credentials.
func (m *Manager) Login(token, email, password string) (Session, error) {
	email = strings.TrimSpace(email)

	var role Role
	switch {
	case email == AdminEmail && password == "admin123":
		role = RoleAdmin
	case email == DemoEmail && password == "password":
		role = RoleUser
	}

	m.mu.Lock()
	s, ok := m.lookup(token)
	if !ok {
		m.mu.Unlock()
		return Session{}, ErrNoSession
	}
	if s.SignedIn() {
		m.mu.Unlock()
		return *s, fmt.Errorf("%w: already signed in", ErrWrongView)
	}
	lim := m.limiter(strings.ToLower(email))
	if lim.TokensAt(m.now()) < 1 {
		m.mu.Unlock()
		slog.Warn("login throttled", "email", email)
		return Session{}, &FormError{Err: ErrTooManyAttempts, Msg: "Too many login attempts. Please wait a minute and try again."}
	}
	if role == "" {
		lim.AllowN(m.now(), 1)
		m.mu.Unlock()
		slog.Info("login failed", "email", email)
		return Session{}, &FormError{Err: ErrInvalidCredentials, Msg: "Invalid credentials. Please try again."}
	}

	s.UserID = uuid.NewString()
	s.Email = email
	s.Role = role
	s.Name = DisplayName(role, email)
	s.View = viewFor(role)
	s.Page = PageDashboard
	out := *s
	m.mu.Unlock()

	slog.Info("login", "email", email, "role", role)
	if m.OnSignIn != nil {
		m.OnSignIn(out, false)
	}
	return out, nil
}

func viewFor(r Role) View {
	if r == RoleAdmin {
		return ViewAdmin
	}
	return ViewDashboard
}

// DisplayName derives the header name: fixed names for the demo accounts,
// otherwise the title-cased dot-separated local part of the email.
func DisplayName(role Role, email string) string {
	if role == RoleAdmin {
		return "Administrator"
	}
	if email == DemoEmail {
		return "Alex Morgan"
	}
	local, _, _ := strings.Cut(email, "@")
	words := strings.Split(local, ".")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// ValidateSignup applies the form rules in order and returns the first
// failure.
func ValidateSignup(f SignupForm) error {
	if f.Password != f.ConfirmPassword {
		return &FormError{Err: ErrSignup, Msg: "Passwords do not match"}
	}
	if utf8.RuneCountInString(f.Password) < 6 {
		return &FormError{Err: ErrSignup, Msg: "Password must be at least 6 characters"}
	}
	parts := strings.Split(f.Email, "@")
	if len(parts) < 2 || parts[1] == "" || !slices.Contains(allowedDomains, strings.ToLower(parts[1])) {
		return &FormError{Err: ErrSignup, Msg: "Please use a valid Lead Options FX email address"}
	}
	switch strings.ToLower(f.Email) {
	case AdminEmail, DemoEmail:
		return &FormError{Err: ErrSignup, Msg: "Email already registered. Please use a different email or login."}
	}
	return nil
}

// Signup signs the session in as the new account. Nothing is stored, so
// the account cannot log in again later.
func (m *Manager) Signup(token string, f SignupForm) (Session, error) {
	if err := ValidateSignup(f); err != nil {
		return Session{}, err
	}
	role := f.AccountType
	if role != RoleAdmin {
		role = RoleUser
	}

	m.mu.Lock()
	s, ok := m.lookup(token)
	if !ok {
		m.mu.Unlock()
		return Session{}, ErrNoSession
	}
	if s.SignedIn() {
		m.mu.Unlock()
		return *s, fmt.Errorf("%w: already signed in", ErrWrongView)
	}
	s.UserID = uuid.NewString()
	s.Email = f.Email
	s.Name = f.FirstName + " " + f.LastName
	s.Role = role
	s.View = viewFor(role)
	s.Page = PageDashboard
	out := *s
	m.mu.Unlock()

	slog.Info("signup", "email", f.Email, "role", role, "user_id", out.UserID)
	if m.OnSignIn != nil {
		m.OnSignIn(out, true)
	}
	return out, nil
}

// Logout returns the session to the login view.
func (m *Manager) Logout(token string) (Session, error) {
	m.mu.Lock()
	s, ok := m.lookup(token)
	if !ok {
		m.mu.Unlock()
		return Session{}, ErrNoSession
	}
	prev := *s
	s.UserID, s.Email, s.Name, s.Role = "", "", "", ""
	s.View = ViewLogin
	s.Page = PageDashboard
	out := *s
	m.mu.Unlock()

	if prev.SignedIn() && m.OnSignOut != nil {
		m.OnSignOut(prev)
	}
	return out, nil
}

// Navigate switches the trader dashboard page.
func (m *Manager) Navigate(token string, p Page) (Session, error) {
	if !slices.Contains(Pages, p) {
		return Session{}, fmt.Errorf("%w: %q", ErrInvalidPage, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.lookup(token)
	if !ok {
		return Session{}, ErrNoSession
	}
	if s.View != ViewDashboard {
		return *s, fmt.Errorf("%w: %s", ErrWrongView, s.View)
	}
	s.Page = p
	return *s, nil
}

// Require returns the session if it is signed in with role.
func (m *Manager) Require(token string, role Role) (Session, error) {
	s, err := m.Get(token)
	if err != nil {
		return Session{}, err
	}
	if s.Role != role {
		return s, ErrForbidden
	}
	return s, nil
}

// TraderActive reports whether any trader session is signed in.
func (m *Manager) TraderActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.Role == RoleUser {
			return true
		}
	}
	return false
}

// Sweep drops sessions idle past their TTL and login limiters that have
// refilled. Expired signed-in sessions are reported through OnSignOut.
// It returns the number of sessions dropped.
func (m *Manager) Sweep() int {
	now := m.now()
	var expired []Session
	dropped := 0

	m.mu.Lock()
	for token, s := range m.sessions {
		ttl := AnonymousTTL
		if s.SignedIn() {
			ttl = SignedInTTL
		}
		if now.Sub(s.lastSeen) < ttl {
			continue
		}
		delete(m.sessions, token)
		dropped++
		if s.SignedIn() {
			expired = append(expired, *s)
		}
	}
	for email, lim := range m.limiters {
		if lim.TokensAt(now) >= float64(m.perMin) {
			delete(m.limiters, email)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		slog.Info("session expired", "email", s.Email, "role", s.Role)
		if m.OnSignOut != nil {
			m.OnSignOut(s)
		}
	}
	return dropped
}

// Run sweeps every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Len reports how many sessions and login limiters are held.
func (m *Manager) Len() (sessions, limiters int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions), len(m.limiters)
}
