package auth

import (
	"errors"
	"testing"
	"time"
)

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantRole Role
		wantView View
		wantName string
		wantErr  error
	}{
		{"admin", "admin@leadoptions.fx", "admin123", RoleAdmin, ViewAdmin, "Administrator", nil},
		{"demo trader", "alex.morgan@leadoptions.fx", "password", RoleUser, ViewDashboard, "Alex Morgan", nil},
		{"padded email", "  alex.morgan@leadoptions.fx ", "password", RoleUser, ViewDashboard, "Alex Morgan", nil},
		{"wrong password", "admin@leadoptions.fx", "password", "", "", "", ErrInvalidCredentials},
		{"unknown user", "eve@leadoptions.fx", "admin123", "", "", "", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(10)
			s := m.Start()
			got, err := m.Login(s.Token, tt.email, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if Message(err) != "Invalid credentials. Please try again." {
					t.Errorf("Message() = %q", Message(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() err = %v", err)
			}
			if got.Role != tt.wantRole || got.View != tt.wantView || got.Name != tt.wantName || got.Page != PageDashboard {
				t.Errorf("Login() = %+v", got)
			}
		})
	}
}

func TestLoginThrottle(t *testing.T) {
	m := NewManager(3)
	s := m.Start()
	for i := 0; i < 3; i++ {
		if _, err := m.Login(s.Token, "alex.morgan@leadoptions.fx", "nope"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d err = %v", i, err)
		}
	}
	if _, err := m.Login(s.Token, "alex.morgan@leadoptions.fx", "password"); !errors.Is(err, ErrTooManyAttempts) {
		t.Errorf("fourth attempt err = %v, want ErrTooManyAttempts", err)
	}
	// other emails have their own bucket
	if _, err := m.Login(s.Token, "admin@leadoptions.fx", "admin123"); err != nil {
		t.Errorf("admin login err = %v", err)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		role  Role
		email string
		want  string
	}{
		{RoleAdmin, "whoever@leadoptions.fx", "Administrator"},
		{RoleUser, "alex.morgan@leadoptions.fx", "Alex Morgan"},
		{RoleUser, "jane.q.public@leadoptionsfx.com", "Jane Q Public"},
		{RoleUser, "trader@leadoptions.fx", "Trader"},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := DisplayName(tt.role, tt.email); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateSignup(t *testing.T) {
	ok := SignupForm{
		FirstName: "Jane", LastName: "Doe", Email: "jane@leadoptionsfx.com",
		Password: "secret1", ConfirmPassword: "secret1", AccountType: RoleUser,
	}
	tests := []struct {
		name    string
		mutate  func(*SignupForm)
		wantMsg string
	}{
		{"valid", func(*SignupForm) {}, ""},
		{"mismatch beats short", func(f *SignupForm) { f.Password = "abc"; f.ConfirmPassword = "abd" }, "Passwords do not match"},
		{"short", func(f *SignupForm) { f.Password = "abc"; f.ConfirmPassword = "abc" }, "Password must be at least 6 characters"},
		{"short multibyte", func(f *SignupForm) { f.Password = "ééé"; f.ConfirmPassword = "ééé" }, "Password must be at least 6 characters"},
		{"foreign domain", func(f *SignupForm) { f.Email = "jane@gmail.com" }, "Please use a valid Lead Options FX email address"},
		{"no domain", func(f *SignupForm) { f.Email = "jane" }, "Please use a valid Lead Options FX email address"},
		{"uppercase domain", func(f *SignupForm) { f.Email = "jane@LeadOptions.FX" }, ""},
		{"taken", func(f *SignupForm) { f.Email = "Alex.Morgan@leadoptions.fx" }, "Email already registered. Please use a different email or login."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ok
			tt.mutate(&f)
			err := ValidateSignup(f)
			if got := Message(err); got != tt.wantMsg {
				t.Errorf("Message() = %q, want %q", got, tt.wantMsg)
			}
			if tt.wantMsg != "" && !errors.Is(err, ErrSignup) {
				t.Errorf("err = %v, want ErrSignup", err)
			}
		})
	}
}

func TestSignupAndLogout(t *testing.T) {
	m := NewManager(10)
	var signIns, signOuts int
	var lastNew bool
	m.OnSignIn = func(_ Session, isNew bool) { signIns++; lastNew = isNew }
	m.OnSignOut = func(Session) { signOuts++ }

	s := m.Start()
	if _, err := m.SwitchToSignup(s.Token); err != nil {
		t.Fatalf("SwitchToSignup() err = %v", err)
	}
	got, err := m.Signup(s.Token, SignupForm{
		FirstName: "Jane", LastName: "Doe", Email: "jane@leadoptions.fx",
		Password: "secret1", ConfirmPassword: "secret1", AccountType: RoleUser,
	})
	if err != nil {
		t.Fatalf("Signup() err = %v", err)
	}
	if got.Name != "Jane Doe" || got.Role != RoleUser || got.View != ViewDashboard || got.UserID == "" {
		t.Errorf("Signup() = %+v", got)
	}
	if signIns != 1 || !lastNew {
		t.Errorf("OnSignIn calls = %d new=%v", signIns, lastNew)
	}
	if !m.TraderActive() {
		t.Error("TraderActive() = false after trader signup")
	}

	got, err = m.Logout(s.Token)
	if err != nil || got.View != ViewLogin || got.SignedIn() {
		t.Errorf("Logout() = %+v, %v", got, err)
	}
	if signOuts != 1 || m.TraderActive() {
		t.Errorf("after logout signOuts=%d active=%v", signOuts, m.TraderActive())
	}

	// no credential store: the new account cannot log back in
	if _, err := m.Login(s.Token, "jane@leadoptions.fx", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("re-login err = %v", err)
	}
}

func TestViewTransitions(t *testing.T) {
	m := NewManager(10)
	s := m.Start()

	if _, err := m.SwitchToLogin(s.Token); !errors.Is(err, ErrWrongView) {
		t.Errorf("SwitchToLogin from login err = %v", err)
	}
	if _, err := m.Navigate(s.Token, PageWallet); !errors.Is(err, ErrWrongView) {
		t.Errorf("Navigate while anonymous err = %v", err)
	}
	if _, err := m.Get("missing"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Get(missing) err = %v", err)
	}

	m.Login(s.Token, DemoEmail, "password")
	got, err := m.Navigate(s.Token, PageHistory)
	if err != nil || got.Page != PageHistory {
		t.Errorf("Navigate(History) = %+v, %v", got, err)
	}
	if _, err := m.Navigate(s.Token, "Settings"); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("Navigate(Settings) err = %v", err)
	}
	if _, err := m.Require(s.Token, RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Errorf("Require(admin) err = %v", err)
	}
	if _, err := m.Login(s.Token, AdminEmail, "admin123"); !errors.Is(err, ErrWrongView) {
		t.Errorf("second login err = %v", err)
	}
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	m := NewManager(3)
	clock := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	var signedOut []string
	m.OnSignOut = func(s Session) { signedOut = append(signedOut, s.Email) }

	anon := m.Start()
	trader := m.Start()
	if _, err := m.Login(trader.Token, DemoEmail, "password"); err != nil {
		t.Fatalf("Login() err = %v", err)
	}
	m.Login(anon.Token, "nobody@leadoptions.fx", "wrong")
	for i := 0; i < 50; i++ {
		m.Start()
	}

	clock = clock.Add(AnonymousTTL)
	if _, err := m.Get(trader.Token); err != nil {
		t.Fatalf("Get() err = %v", err)
	}
	if n := m.Sweep(); n != 51 {
		t.Errorf("Sweep() = %d, want 51 anonymous sessions dropped", n)
	}
	if _, err := m.Get(anon.Token); !errors.Is(err, ErrNoSession) {
		t.Errorf("idle anonymous session survived, err = %v", err)
	}
	if !m.TraderActive() {
		t.Error("recently seen trader session was dropped")
	}
	if sessions, limiters := m.Len(); sessions != 1 || limiters != 0 {
		t.Errorf("Len() = %d sessions, %d limiters, want 1, 0", sessions, limiters)
	}

	clock = clock.Add(SignedInTTL)
	if n := m.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want the trader session dropped", n)
	}
	if m.TraderActive() {
		t.Error("expired trader session still active")
	}
	if len(signedOut) != 1 || signedOut[0] != DemoEmail {
		t.Errorf("OnSignOut calls = %v", signedOut)
	}
}
