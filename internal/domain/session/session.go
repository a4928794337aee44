// Package session owns the engine's session token state machine.
//
// The token has exactly two states, ABSENT and PRESENT. It becomes PRESENT
// only through a successful credential exchange and falls back to ABSENT on
// logout or when the remote service rejects it.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/okian/reten/internal/adapters/persistence"
	"github.com/okian/reten/pkg/logger"
)

// Authenticator exchanges credentials for an opaque token with the remote
// auth service.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Option applies a configuration option to the Guard.
type Option func(*Guard)

// WithLogger sets a custom logger for the guard.
func WithLogger(l logger.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// Guard gates engine operations on token presence.
type Guard struct {
	mu    sync.RWMutex
	token string

	auth   Authenticator
	kv     persistence.KV
	logger logger.Logger
}

// NewGuard creates a guard that authenticates through auth and persists
// session state through kv.
func NewGuard(auth Authenticator, kv persistence.KV, opts ...Option) *Guard {
	g := &Guard{auth: auth, kv: kv}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logger.Get().Named("session")
	}
	return g
}

// state is the serialized form of the session entry.
type state struct {
	Token string `json:"token"`
}

// Restore loads a previously persisted token, if any. Called once on start.
func (g *Guard) Restore(ctx context.Context) error {
	raw, ok, err := g.kv.Load(ctx, persistence.KeySession)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if !ok {
		return nil
	}
	var s state
	if err := json.Unmarshal(raw, &s); err != nil {
		// Corrupt entry; start unauthenticated rather than failing the boot.
		g.logger.Warn(ctx, "discarding unreadable session entry", logger.Error(err))
		return nil
	}
	g.mu.Lock()
	g.token = s.Token
	g.mu.Unlock()
	if s.Token != "" {
		g.logger.Info(ctx, "session restored")
	}
	return nil
}

// Authorize performs the credential exchange and transitions to PRESENT.
func (g *Guard) Authorize(ctx context.Context, username, password string) (string, error) {
	token, err := g.auth.Login(ctx, username, password)
	if err != nil {
		return "", fmt.Errorf("credential exchange failed: %w", err)
	}
	g.mu.Lock()
	g.token = token
	g.mu.Unlock()
	g.persist(ctx)
	g.logger.Info(ctx, "session established", logger.String("username", username))
	return token, nil
}

// Invalidate transitions to ABSENT. Called on logout and on authorization
// failures bubbled up from the orchestrator.
func (g *Guard) Invalidate(ctx context.Context) {
	g.mu.Lock()
	had := g.token != ""
	g.token = ""
	g.mu.Unlock()
	g.persist(ctx)
	if had {
		g.logger.Info(ctx, "session invalidated")
	}
}

// IsAuthorized reports whether a token is PRESENT.
func (g *Guard) IsAuthorized() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token != ""
}

// Token returns the current token, or empty when ABSENT.
func (g *Guard) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

func (g *Guard) persist(ctx context.Context) {
	g.mu.RLock()
	raw, err := json.Marshal(state{Token: g.token})
	g.mu.RUnlock()
	if err == nil {
		err = g.kv.Store(ctx, persistence.KeySession, raw)
	}
	if err != nil {
		// Persistence is best effort for session state; the in-memory
		// machine stays authoritative.
		g.logger.Warn(ctx, "persisting session state failed", logger.Error(err))
	}
}
