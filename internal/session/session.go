// Package session holds the signed-in identity and its persisted bearer token.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/Veraticus/toolshed/internal/common"
	"github.com/Veraticus/toolshed/internal/model"
	"github.com/Veraticus/toolshed/internal/service"
)

// TokenKey is the storage key of the persisted bearer token.
const TokenKey = "authToken"

// Holder owns the bearer token and the identity derived from it.
// The identity is never stored on its own; it is re-derived whenever the token changes.
type Holder struct {
	auth     service.Authenticator
	store    service.CredentialStore
	token    string
	identity model.Identity
	mu       sync.RWMutex
}

// New restores any persisted token. A missing, unreadable, or undecodable
// token leaves the holder signed out.
func New(ctx context.Context, auth service.Authenticator, store service.CredentialStore) *Holder {
	h := &Holder{auth: auth, store: store, identity: model.Guest}

	token, err := store.GetCredential(ctx, TokenKey)
	switch {
	case errors.Is(err, common.ErrNotFound):
		return h
	case err != nil:
		slog.Warn("Failed to load saved credential", "error", err)
		return h
	}

	identity, ok := ParseIdentity(token)
	if !ok {
		slog.Debug("Discarding undecodable saved credential")
		if err := store.DeleteCredential(ctx, TokenKey); err != nil {
			slog.Warn("Failed to discard saved credential", "error", err)
		}
		return h
	}

	h.token = token
	h.identity = identity
	return h
}

// Login exchanges username and password for a token and signs in.
func (h *Holder) Login(ctx context.Context, username, password string) (model.Identity, error) {
	if err := validateCredentials(username, password); err != nil {
		return model.Identity{}, err
	}

	token, err := h.auth.Login(ctx, strings.TrimSpace(username), password)
	if err != nil {
		return model.Identity{}, authFailure("Invalid credentials", err)
	}
	return h.adopt(ctx, token)
}

// Signup registers a new account and signs in with it.
func (h *Holder) Signup(ctx context.Context, username, password string, role model.Role) (model.Identity, error) {
	if err := validateCredentials(username, password); err != nil {
		return model.Identity{}, err
	}
	if role == "" {
		role = model.RoleUser
	}
	if role != model.RoleUser && role != model.RoleAdmin {
		return model.Identity{}, common.NewValidationError("Role must be user or admin", "Role", "is invalid")
	}

	token, err := h.auth.Signup(ctx, strings.TrimSpace(username), password, role)
	if err != nil {
		return model.Identity{}, authFailure("Signup failed", err)
	}
	return h.adopt(ctx, token)
}

// Logout clears the token and identity. Storage failures are logged, never returned.
func (h *Holder) Logout(ctx context.Context) {
	h.mu.Lock()
	h.token = ""
	h.identity = model.Guest
	h.mu.Unlock()

	if err := h.store.DeleteCredential(ctx, TokenKey); err != nil {
		slog.Warn("Failed to remove saved credential", "error", err)
	}
}

// Identity returns the signed-in identity; ok is false for a guest session.
func (h *Holder) Identity() (model.Identity, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.identity, h.token != ""
}

// Token returns the bearer token, or "" when signed out.
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// IsPrivileged reports whether the session may moderate and edit the catalog.
func (h *Holder) IsPrivileged() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token != "" && h.identity.IsPrivileged()
}

func (h *Holder) adopt(ctx context.Context, token string) (model.Identity, error) {
	if strings.TrimSpace(token) == "" {
		return model.Identity{}, common.NewAuthError("Sign in failed: the server returned no token", common.ErrNoToken)
	}

	identity, ok := ParseIdentity(token)
	if !ok {
		return model.Identity{}, common.NewAuthError("Sign in failed: the server returned an unreadable token", common.ErrInvalidToken)
	}

	h.mu.Lock()
	h.token = token
	h.identity = identity
	h.mu.Unlock()

	if err := h.store.SaveCredential(ctx, TokenKey, token); err != nil {
		slog.Warn("Failed to save credential; the session will not survive a restart", "error", err)
	}

	slog.Debug("Signed in", "username", identity.Username, "role", identity.Role)
	return identity, nil
}

func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return common.NewValidationError("Please enter your username", "Username", "is required")
	}
	if password == "" {
		return common.NewValidationError("Please enter your password", "Password", "is required")
	}
	return nil
}

// authFailure turns a rejected credential exchange into an AuthError.
// Transport and server faults pass through so the caller can tell them apart.
func authFailure(message string, err error) error {
	var remoteErr *common.RemoteError
	if errors.As(err, &remoteErr) && remoteErr.Status < http.StatusInternalServerError {
		if remoteErr.Body != "" {
			message = message + ": " + remoteErr.Body
		}
		return common.NewAuthError(message, err)
	}
	return err
}
