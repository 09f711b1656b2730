package profile

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateField(t *testing.T) {
	tests := []struct {
		field string
		value string
		want  string
	}{
		{"firstName", "Al", ""},
		{"firstName", " A ", "First name must be at least 2 characters"},
		{"firstName", "Ø", "First name must be at least 2 characters"},
		{"lastName", "Ng", ""},
		{"lastName", "", "Last name must be at least 2 characters"},
		{"email", "alex.morgan@leadoptions.fx", ""},
		{"email", "alex@localhost", "Please enter a valid email address"},
		{"email", "al ex@x.io", "Please enter a valid email address"},
		{"phone", "+1 (555) 000-0000", ""},
		{"phone", "5550000000", ""},
		{"phone", "555-0000", "Please enter a valid phone number (min 10 digits)"},
		{"phone", "+1 555 CALL NOW", "Please enter a valid phone number (min 10 digits)"},
	}
	for _, tt := range tests {
		t.Run(tt.field+"/"+tt.value, func(t *testing.T) {
			if got := ValidateField(tt.field, tt.value); got != tt.want {
				t.Errorf("ValidateField(%q, %q) = %q, want %q", tt.field, tt.value, got, tt.want)
			}
		})
	}
}

func TestStoreUpdate(t *testing.T) {
	s := NewStore()
	p := s.Get()
	if p.Form != DefaultForm() || !p.TwoFactor || p.Notifications || p.Avatar != DefaultAvatar {
		t.Errorf("defaults = %+v", p)
	}

	f := DefaultForm()
	f.Phone = "+44 20 7946 0958"
	if _, err := s.Update(f); err != nil {
		t.Fatalf("Update() err = %v", err)
	}

	bad := f
	bad.FirstName = "J"
	bad.Email = "nope"
	_, err := s.Update(bad)
	if !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("Update(bad) err = %v", err)
	}
	var fe FieldErrors
	if !errors.As(err, &fe) || len(fe) != 2 || fe["email"] == "" {
		t.Errorf("field errors = %v", fe)
	}
	if s.Get().Form.Phone != "+44 20 7946 0958" {
		t.Error("rejected update overwrote the form")
	}
}

func TestToggles(t *testing.T) {
	s := NewStore()
	if p := s.SetTwoFactor(false); p.TwoFactor {
		t.Error("SetTwoFactor(false) ignored")
	}
	if p := s.SetNotifications(true); !p.Notifications {
		t.Error("SetNotifications(true) ignored")
	}
}

func TestAvatar(t *testing.T) {
	s := NewStore()
	tests := []struct {
		src     string
		wantErr bool
	}{
		{"https://cdn.example.com/me.png", false},
		{"data:image/png;base64,iVBORw0KGgo=", false},
		{"javascript:alert(1)", true},
		{"not a url", true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := s.SetAvatar(tt.src)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetAvatar(%q) err = %v", tt.src, err)
			}
		})
	}

	p, err := s.SetAvatarData("image/jpeg", []byte{0xff, 0xd8, 0xff})
	if err != nil || !strings.HasPrefix(p.Avatar, "data:image/jpeg;base64,") {
		t.Errorf("SetAvatarData() = %q, %v", p.Avatar, err)
	}
	if _, err := s.SetAvatarData("text/plain", []byte("hi")); !errors.Is(err, ErrInvalidAvatar) {
		t.Errorf("text upload err = %v", err)
	}
}
