// Package backend initialises the hosted backend SDK (auth, document store,
// object storage). The clients are created at start-up and closed on
// shutdown; no feature reads or writes through them.
package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"firebase.google.com/go/storage"
	"google.golang.org/api/option"
)

type Options struct {
	CredentialsFile string
	ProjectID       string
	StorageBucket   string
}

// Backend holds the initialised clients. A zero Backend is disabled.
type Backend struct {
	App       *firebase.App
	Auth      *auth.Client
	Firestore io.Closer
	Storage   *storage.Client
}

func (b *Backend) Enabled() bool {
	return b != nil && b.App != nil
}

// Init returns a disabled Backend when no credentials file is configured.
func Init(ctx context.Context, opts Options) (*Backend, error) {
	if opts.CredentialsFile == "" {
		slog.Info("backend SDK disabled: no credentials file")
		return &Backend{}, nil
	}
	if _, err := os.Stat(opts.CredentialsFile); err != nil {
		return nil, fmt.Errorf("backend credentials: %w", err)
	}

	cfg := &firebase.Config{
		ProjectID:     opts.ProjectID,
		StorageBucket: opts.StorageBucket,
	}
	app, err := firebase.NewApp(ctx, cfg, option.WithCredentialsFile(opts.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("initializing backend app: %w", err)
	}

	b := &Backend{App: app}
	if b.Auth, err = app.Auth(ctx); err != nil {
		return nil, fmt.Errorf("initializing backend auth: %w", err)
	}
	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing backend firestore: %w", err)
	}
	b.Firestore = fs
	if b.Storage, err = app.Storage(ctx); err != nil {
		b.Firestore.Close()
		return nil, fmt.Errorf("initializing backend storage: %w", err)
	}

	slog.Info("backend SDK initialized", "project", opts.ProjectID, "bucket", opts.StorageBucket)
	return b, nil
}

func (b *Backend) Close() error {
	if !b.Enabled() || b.Firestore == nil {
		return nil
	}
	return b.Firestore.Close()
}
