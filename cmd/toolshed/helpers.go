package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Veraticus/toolshed/internal/catalog"
	"github.com/Veraticus/toolshed/internal/cli"
	"github.com/Veraticus/toolshed/internal/common"
	"github.com/Veraticus/toolshed/internal/gateway"
	"github.com/Veraticus/toolshed/internal/model"
	"github.com/Veraticus/toolshed/internal/session"
	"github.com/Veraticus/toolshed/internal/storage"
)

// app is the set of services one command works with.
type app struct {
	client  *gateway.Client
	storage *storage.SQLiteStorage
	session *session.Holder
	store   *catalog.Store
}

var (
	activeMu    sync.Mutex
	activeStore *catalog.Store
)

// syncInFlight tells the interrupt handler whether a change is still being sent.
func syncInFlight() bool {
	activeMu.Lock()
	defer activeMu.Unlock()
	return activeStore != nil && activeStore.Syncing()
}

// openApp wires storage, gateway and session from the loaded settings.
func openApp(ctx context.Context) (*app, error) {
	client, err := gateway.New(settings.API)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, settings.DatabasePath)
	if err != nil {
		return nil, common.NewUserError("Could not open the credential database", err)
	}

	return &app{
		client:  client,
		storage: store,
		session: session.New(ctx, client, store),
	}, nil
}

// Close waits for background sync, then releases storage.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
		activeMu.Lock()
		activeStore = nil
		activeMu.Unlock()
	}
	if err := a.storage.Close(); err != nil {
		common.LogError(context.Background(), err, "Failed to close storage", common.Fields{"path": settings.DatabasePath})
	}
}

// newCatalog creates the catalog store for this command without loading it.
func (a *app) newCatalog(opts ...catalog.Option) *catalog.Store {
	a.store = catalog.New(a.client, a.session, opts...)

	activeMu.Lock()
	activeStore = a.store
	activeMu.Unlock()

	return a.store
}

// loadCatalog bootstraps a catalog store. A failed tool listing is reported
// as a warning and leaves an empty catalog.
func (a *app) loadCatalog(ctx context.Context, out io.Writer, showProgress bool) *catalog.Store {
	var opts []catalog.Option
	if showProgress {
		opts = append(opts, catalog.WithProgress(cli.NewLoadProgress(out)))
	}
	a.newCatalog(opts...)

	if err := a.store.Bootstrap(ctx); err != nil {
		fmt.Fprintln(out, cli.FormatWarning("Could not load the catalog: "+common.UserMessage(err)))
	}
	return a.store
}

// requireAdmin fails unless the session may curate the catalog.
func (a *app) requireAdmin() error {
	identity, signedIn := a.session.Identity()
	switch {
	case !signedIn:
		return common.NewAuthError("Please sign in", common.ErrMissingCredential)
	case !identity.IsPrivileged():
		return common.NewAuthError("This action needs an admin account", common.ErrMissingCredential)
	}
	return nil
}

// settle waits for a background change. A change the server refused is
// returned as an error; the command exits without reporting success.
func settle(ctx context.Context, what string, task *catalog.Task) error {
	if task == nil {
		return nil
	}
	if err := task.Wait(context.WithoutCancel(ctx)); err != nil {
		common.LogDebug(ctx, err, "Background sync failed", common.Fields{"change": what})
		return common.NewUserError(fmt.Sprintf("%s was not saved by the server: %s", what, common.UserMessage(err)), err)
	}
	return nil
}

// whoLabel renders an identity for status lines.
func whoLabel(identity model.Identity) string {
	label := identity.Username
	if identity.Role != "" {
		label += " (" + string(identity.Role) + ")"
	}
	return label
}
