// Package profile holds the trader's editable personal details, security
// toggles and avatar.
package profile

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

var (
	ErrInvalidProfile = errors.New("invalid profile")
	ErrInvalidAvatar  = errors.New("invalid avatar")
)

const DefaultAvatar = "https://picsum.photos/200/200"

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[\d\s\-()]{10,}$`)
)

type Form struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func DefaultForm() Form {
	return Form{
		FirstName: "Alex",
		LastName:  "Morgan",
		Email:     "alex.morgan@leadoptions.fx",
		Phone:     "+1 (555) 000-0000",
	}
}

// ValidateField returns the message shown under one input, or "".
func ValidateField(name, value string) string {
	switch name {
	case "firstName":
		if utf8.RuneCountInString(strings.TrimSpace(value)) < 2 {
			return "First name must be at least 2 characters"
		}
	case "lastName":
		if utf8.RuneCountInString(strings.TrimSpace(value)) < 2 {
			return "Last name must be at least 2 characters"
		}
	case "email":
		if !emailRe.MatchString(value) {
			return "Please enter a valid email address"
		}
	case "phone":
		if !phoneRe.MatchString(value) {
			return "Please enter a valid phone number (min 10 digits)"
		}
	}
	return ""
}

// FieldErrors maps field name to message for every failing field.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, k := range []string{"firstName", "lastName", "email", "phone"} {
		if msg, ok := fe[k]; ok {
			parts = append(parts, k+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error { return ErrInvalidProfile }

// Validate returns nil or FieldErrors.
func (f Form) Validate() error {
	fe := FieldErrors{}
	for name, v := range map[string]string{
		"firstName": f.FirstName,
		"lastName":  f.LastName,
		"email":     f.Email,
		"phone":     f.Phone,
	} {
		if msg := ValidateField(name, v); msg != "" {
			fe[name] = msg
		}
	}
	if len(fe) > 0 {
		return fe
	}
	return nil
}

type Profile struct {
	Form          Form   `json:"form"`
	TwoFactor     bool   `json:"twoFactor"`
	Notifications bool   `json:"notifications"`
	Avatar        string `json:"avatar"`
}

// Store guards the single profile.
type Store struct {
	mu sync.RWMutex
	p  Profile
}

func NewStore() *Store {
	return &Store{p: Profile{
		Form:      DefaultForm(),
		TwoFactor: true,
		Avatar:    DefaultAvatar,
	}}
}

func (s *Store) Get() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p
}

func (s *Store) Update(f Form) (Profile, error) {
	if err := f.Validate(); err != nil {
		return s.Get(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Form = f
	return s.p, nil
}

func (s *Store) SetTwoFactor(on bool) Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.TwoFactor = on
	return s.p
}

func (s *Store) SetNotifications(on bool) Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Notifications = on
	return s.p
}

// SetAvatar accepts an http(s) URL or a data:image/ URL.
func (s *Store) SetAvatar(src string) (Profile, error) {
	src = strings.TrimSpace(src)
	if !strings.HasPrefix(src, "data:image/") {
		u, err := url.Parse(src)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return s.Get(), fmt.Errorf("%w: %q", ErrInvalidAvatar, src)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Avatar = src
	return s.p, nil
}

// SetAvatarData stores an uploaded image as a data URL.
func (s *Store) SetAvatarData(contentType string, data []byte) (Profile, error) {
	if !strings.HasPrefix(contentType, "image/") || len(data) == 0 {
		return s.Get(), fmt.Errorf("%w: content type %q", ErrInvalidAvatar, contentType)
	}
	return s.SetAvatar("data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data))
}
