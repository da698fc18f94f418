package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/cutout/internal/repositories"
	"github.com/desertthunder/cutout/internal/services"
	"github.com/desertthunder/cutout/internal/shared"
	"github.com/urfave/cli/v3"
)

// tokenStatus is the JSON shape of `auth status`.
type tokenStatus struct {
	Cached    bool       `json:"cached"`
	Opaque    bool       `json:"opaque,omitempty"`
	Subject   string     `json:"subject,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// AuthLogin requests a fresh token from the token endpoint and caches it.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if !r.config.Auth.Enabled {
		return r.writePlain("Authentication is disabled (auth.enabled = false); nothing to do\n")
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	store, err := r.tokenStore(false)
	if err != nil {
		return err
	}
	session := r.session(r.client(), store)

	r.logger.Info("requesting token", "server", r.config.Server.BaseURL, "user", r.config.Credentials.Username)
	if _, err := session.Authenticate(ctx); err != nil {
		return err
	}

	r.logger.Info("authentication successful")
	return r.writePlain("✓ Authenticated as %s\n", r.config.Credentials.Username)
}

// AuthStatus prints whether a token is cached along with its unverified claims.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	repo := repositories.NewTokenRepository(db)

	status := tokenStatus{}
	raw, err := repo.LoadToken()
	switch {
	case errors.Is(err, shared.ErrNoToken):
	case err != nil:
		return err
	default:
		status = describeToken(raw, time.Now())
		if updated, err := repo.UpdatedAt(); err == nil {
			status.UpdatedAt = &updated
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	if !status.Cached {
		r.writePlain("✗ No token cached\n")
		return r.writePlain("Run 'cutout auth login' or start an upload to request one\n")
	}

	r.writePlain("✓ Token cached\n")
	if status.UpdatedAt != nil {
		r.writePlain("Stored:  %s\n", status.UpdatedAt.Local().Format(time.RFC1123))
	}
	if status.Opaque {
		return r.writePlain("Claims:  opaque token\n")
	}
	if status.Subject != "" {
		r.writePlain("Subject: %s\n", status.Subject)
	}
	if status.IssuedAt != nil {
		r.writePlain("Issued:  %s\n", status.IssuedAt.Local().Format(time.RFC1123))
	}
	if status.ExpiresAt != nil {
		state := "valid"
		if status.Expired {
			state = "expired"
		}
		r.writePlain("Expires: %s (%s)\n", status.ExpiresAt.Local().Format(time.RFC1123), state)
	}
	return nil
}

// AuthLogout removes the cached token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	store, err := r.tokenStore(false)
	if err != nil {
		return err
	}
	if err := store.ClearToken(); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}

	r.logger.Info("token cleared")
	return r.writePlain("✓ Logged out\n")
}

func describeToken(raw string, now time.Time) tokenStatus {
	info := services.InspectToken(raw)
	status := tokenStatus{Cached: true, Opaque: info.Opaque, Subject: info.Subject, Expired: info.Expired(now)}
	if !info.IssuedAt.IsZero() {
		status.IssuedAt = &info.IssuedAt
	}
	if !info.ExpiresAt.IsZero() {
		status.ExpiresAt = &info.ExpiresAt
	}
	return status
}
