package backend

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestInitDisabledWithoutCredentials(t *testing.T) {
	b, err := Init(context.Background(), Options{ProjectID: "townhall-a5aa0"})
	if err != nil {
		t.Fatalf("Init() err = %v", err)
	}
	if b.Enabled() {
		t.Error("Enabled() = true without credentials")
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close() on disabled backend err = %v", err)
	}
}

func TestInitMissingCredentialsFile(t *testing.T) {
	_, err := Init(context.Background(), Options{
		CredentialsFile: filepath.Join(t.TempDir(), "absent.json"),
	})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Init() err = %v, want not-exist", err)
	}
}

func TestNilBackendIsDisabled(t *testing.T) {
	var b *Backend
	if b.Enabled() {
		t.Error("nil backend reports enabled")
	}
}
