package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// PromptOutcome is the result of a silent identity-provider prompt.
type PromptOutcome int

const (
	// PromptCredentialReturned means the provider already delivered a
	// credential through the sign-in callback.
	PromptCredentialReturned PromptOutcome = iota
	// PromptDismissed means the user closed the prompt without signing in.
	PromptDismissed
	// PromptSkipped means the prompt could not be shown at all.
	PromptSkipped
)

// Prompter drives the identity provider's sign-in surfaces. The credential
// itself always arrives through Manager.UpdateToken, invoked by the
// provider's callback.
type Prompter interface {
	// PromptSilent triggers the provider's one-tap prompt and reports how
	// it was resolved.
	PromptSilent(ctx context.Context) PromptOutcome
	// ShowSignIn renders the interactive sign-in affordance.
	ShowSignIn()
	// HideSignIn removes the affordance once a valid session exists.
	HideSignIn()
}

// Connectivity reports whether the network is reachable. Sign-in prompts
// cannot succeed offline, so EnsureValidSession fails fast without one.
type Connectivity interface {
	Online() bool
}

// TokenStore persists the last-known raw token across restarts.
type TokenStore interface {
	SaveToken(token string) error
	LoadToken() (string, bool, error)
	DeleteToken() error
}

// Manager owns the single shared session. All mutation goes through
// UpdateToken and Logout; readers always observe a fully-applied session.
// The mutex is never held across a network call or a wait.
type Manager struct {
	store    TokenStore
	prompter Prompter
	online   Connectivity
	logger   *slog.Logger
	now      func() time.Time

	mu            sync.Mutex
	session       *Session
	prompting     bool
	promptSkipped bool          // the current prompt round could not be shown
	notify        chan struct{} // closed and replaced on every broadcast
}

// NewManager creates a session manager. The stored token, if any, is adopted
// lazily on the first EnsureValidSession call.
func NewManager(store TokenStore, prompter Prompter, online Connectivity, logger *slog.Logger) *Manager {
	return &Manager{
		store:    store,
		prompter: prompter,
		online:   online,
		logger:   logger,
		now:      time.Now,
		notify:   make(chan struct{}),
	}
}

// IsValid reports whether a token is present and unexpired.
func (m *Manager) IsValid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Valid(m.now())
}

// CurrentToken returns the raw token of the current session, if one exists.
// The token may already be expired; callers needing a live one use
// EnsureValidSession.
func (m *Manager) CurrentToken() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return "", false
	}
	return m.session.Raw, true
}

// UpdateToken adopts a freshly issued raw token: parses its expiry, persists
// it, and wakes every waiter. A malformed token is absorbed as "no session"
// and never surfaces as an error.
func (m *Manager) UpdateToken(raw string) {
	parsed, ok := Parse(raw)
	if !ok {
		m.logger.Warn("discarding token without parseable expiry")
	} else {
		if err := m.store.SaveToken(raw); err != nil {
			// Losing durability only costs a re-prompt on next start.
			m.logger.Warn("cannot persist token", "error", err)
		}
		m.logger.Info("session updated", "expires", parsed.Expiry)
	}

	m.mu.Lock()
	m.session = parsed
	close(m.notify)
	m.notify = make(chan struct{})
	m.mu.Unlock()

	if ok {
		m.prompter.HideSignIn()
	}
}

// Logout discards the current session and the stored token.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.session = nil
	close(m.notify)
	m.notify = make(chan struct{})
	m.mu.Unlock()

	if err := m.store.DeleteToken(); err != nil {
		m.logger.Warn("cannot clear stored token", "error", err)
	}
}

// EnsureValidSession returns a valid session, driving the sign-in flow when
// necessary. It suspends while the interactive affordance is shown, woken by
// UpdateToken. It returns nil when offline or when sign-in was abandoned;
// "not logged in" is an expected outcome, not an error.
func (m *Manager) EnsureValidSession(ctx context.Context) *Session {
	if s := m.validSession(); s != nil {
		return s
	}

	// A dialog cannot succeed without a network.
	if !m.online.Online() {
		m.logger.Debug("offline, skipping sign-in")
		return nil
	}

	// A previous run may have left a still-valid token behind.
	if s := m.adoptStoredToken(); s != nil {
		return s
	}

	// Only one sign-in flow at a time; latecomers go straight to waiting.
	m.mu.Lock()
	alreadyPrompting := m.prompting
	if !alreadyPrompting {
		m.prompting = true
		m.promptSkipped = false
	}
	m.mu.Unlock()

	if !alreadyPrompting {
		defer func() {
			m.mu.Lock()
			m.prompting = false
			m.mu.Unlock()
		}()

		switch m.prompter.PromptSilent(ctx) {
		case PromptCredentialReturned:
			if s := m.validSession(); s != nil {
				return s
			}
		case PromptSkipped:
			// No prompt surface exists in this environment, so nothing
			// can deliver a credential. Fail fast and release any
			// callers already waiting on this round.
			m.mu.Lock()
			m.promptSkipped = true
			close(m.notify)
			m.notify = make(chan struct{})
			m.mu.Unlock()
			return nil
		}
		m.prompter.ShowSignIn()
	}

	return m.waitForToken(ctx)
}

// validSession returns a copy of the current session if it is valid.
func (m *Manager) validSession() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session.Valid(m.now()) {
		s := *m.session
		return &s
	}
	return nil
}

// adoptStoredToken promotes a durably stored token into the live session if
// it is still valid.
func (m *Manager) adoptStoredToken() *Session {
	raw, ok, err := m.store.LoadToken()
	if err != nil {
		m.logger.Warn("cannot read stored token", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	parsed, ok := Parse(raw)
	if !ok || !parsed.Valid(m.now()) {
		return nil
	}

	m.mu.Lock()
	m.session = parsed
	close(m.notify)
	m.notify = make(chan struct{})
	m.mu.Unlock()

	m.logger.Info("adopted stored session", "expires", parsed.Expiry)
	s := *parsed
	return &s
}

// waitForToken blocks until UpdateToken delivers a valid session, the prompt
// round reports it could not be shown, or the context ends. Every broadcast
// wakes all waiters exactly once.
func (m *Manager) waitForToken(ctx context.Context) *Session {
	for {
		m.mu.Lock()
		if m.session.Valid(m.now()) {
			s := *m.session
			m.mu.Unlock()
			return &s
		}
		if m.promptSkipped {
			m.mu.Unlock()
			return nil
		}
		wake := m.notify
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil
		case <-wake:
		}
	}
}
