package chat

import (
	"errors"
	"testing"
)

func TestConversation(t *testing.T) {
	m := NewMailbox()

	s, err := m.UserSend("alex.morgan@leadoptions.fx", "Alex Morgan", "Hi, my withdrawal is stuck")
	if err != nil {
		t.Fatalf("UserSend() err = %v", err)
	}
	if !s.UnreadAdmin || s.UnreadUser || len(s.Messages) != 1 {
		t.Errorf("after first message = %+v", s)
	}
	if m.TotalUnreadAdmin() != 1 {
		t.Errorf("TotalUnreadAdmin() = %d, want 1", m.TotalUnreadAdmin())
	}

	s, err = m.AdminSend("alex.morgan@leadoptions.fx", "Looking into it")
	if err != nil {
		t.Fatalf("AdminSend() err = %v", err)
	}
	if s.UnreadAdmin || !s.UnreadUser || len(s.Messages) != 2 || s.Messages[1].Sender != FromAdmin {
		t.Errorf("after reply = %+v", s)
	}
	if m.TotalUnreadAdmin() != 0 {
		t.Errorf("TotalUnreadAdmin() = %d after reply, want 0", m.TotalUnreadAdmin())
	}

	s = m.UserOpen("alex.morgan@leadoptions.fx")
	if s.UnreadUser {
		t.Error("UserOpen() left the trader side unread")
	}

	s, _ = m.UserSend("alex.morgan@leadoptions.fx", "ignored", "thanks")
	if len(s.Messages) != 3 || s.UserName != "Alex Morgan" {
		t.Errorf("second user message = %+v", s)
	}
	if s.Messages[0].ID == s.Messages[2].ID {
		t.Error("message ids collide")
	}
}

func TestSessionsKeepCreationOrder(t *testing.T) {
	m := NewMailbox()
	m.UserSend("b@leadoptions.fx", "", "first")
	m.UserSend("a@leadoptions.fx", "A", "second")
	m.UserSend("b@leadoptions.fx", "", "third")

	got := m.Sessions()
	if len(got) != 2 || got[0].UserID != "b@leadoptions.fx" || got[1].UserID != "a@leadoptions.fx" {
		t.Errorf("Sessions() = %+v", got)
	}
	if got[0].UserName != "User" {
		t.Errorf("default name = %q, want User", got[0].UserName)
	}
	if m.TotalUnreadAdmin() != 2 {
		t.Errorf("TotalUnreadAdmin() = %d, want 2", m.TotalUnreadAdmin())
	}
}

func TestRejections(t *testing.T) {
	m := NewMailbox()
	tests := []struct {
		name    string
		send    func() error
		wantErr error
	}{
		{"blank user message", func() error { _, err := m.UserSend("x@y.z", "X", "  \n"); return err }, ErrEmptyMessage},
		{"blank admin message", func() error { _, err := m.AdminSend("x@y.z", ""); return err }, ErrEmptyMessage},
		{"reply to nobody", func() error { _, err := m.AdminSend("ghost@leadoptions.fx", "hello"); return err }, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.send(); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if len(m.Sessions()) != 0 {
		t.Error("rejected sends created a session")
	}
	if s := m.UserOpen("x@y.z"); len(s.Messages) != 0 || len(m.Sessions()) != 0 {
		t.Error("UserOpen() without a session stored one")
	}
}
