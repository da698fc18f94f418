package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cutout/internal/shared"
	"golang.org/x/oauth2"
)

// Session holds the bearer token used for uploads.
//
// The token is read from the [TokenStore] once by [Session.Load], reused across uploads and replaced by each
// successful [Session.Authenticate]. Nothing here expires it.
type Session struct {
	mu     sync.Mutex
	token  *oauth2.Token
	auth   Authenticator
	store  TokenStore
	creds  CredentialSource
	logger *log.Logger
}

// NewSession creates a session. A nil store keeps the token in memory only.
func NewSession(auth Authenticator, store TokenStore, creds CredentialSource, logger *log.Logger) *Session {
	if store == nil {
		store = NewMemoryTokenStore("")
	}
	if creds == nil {
		creds = StaticCredentials{}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Session{auth: auth, store: store, creds: creds, logger: logger}
}

// Load reads a previously stored token. An empty store is not an error.
func (s *Session) Load() error {
	raw, err := s.store.LoadToken()
	if errors.Is(err, shared.ErrNoToken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if raw != "" {
		s.token = &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	}
	return nil
}

// Token returns the cached token or nil.
func (s *Session) Token() *oauth2.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// HasToken reports whether a token is cached.
func (s *Session) HasToken() bool {
	return s.Token() != nil
}

// Authenticate acquires a new token and stores it, replacing any cached one.
//
// Failures are logged and returned wrapped in [shared.ErrAuthFailed]; no retry is attempted.
func (s *Session) Authenticate(ctx context.Context) (*oauth2.Token, error) {
	if s.auth == nil {
		return nil, fmt.Errorf("%w: no authenticator configured", shared.ErrAuthFailed)
	}

	creds, err := s.creds.Credentials(ctx)
	if err != nil {
		s.logger.Error("failed to read credentials", "err", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	token, err := s.auth.Authenticate(ctx, creds)
	if err != nil {
		s.logger.Error("authentication failed", "err", err)
		if !errors.Is(err, shared.ErrAuthFailed) {
			err = fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
		}
		return nil, err
	}

	if err := s.store.SaveToken(token.AccessToken); err != nil {
		s.logger.Warn("failed to persist token", "err", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.logger.Debug("token acquired", "user", creds.Username)
	return token, nil
}

// Clear forgets the cached token and removes it from the store.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()

	if err := s.store.ClearToken(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
