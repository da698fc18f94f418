// package services defines the collaborators of the upload flow and an HTTP client implementing them
package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/cutout/internal/models"
	"golang.org/x/oauth2"
)

// Credentials are sent to the token endpoint.
type Credentials struct {
	Username string
	Password string
}

// CredentialSource supplies credentials when a token has to be acquired.
type CredentialSource interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// StaticCredentials is a [CredentialSource] returning fixed values, typically from config.
type StaticCredentials Credentials

func (s StaticCredentials) Credentials(context.Context) (Credentials, error) {
	return Credentials(s), nil
}

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (*oauth2.Token, error)
}

// Remover uploads an image and returns the background-removal outcome.
//
// progress may be nil.
type Remover interface {
	RemoveBackground(ctx context.Context, file models.SelectedFile, token *oauth2.Token, progress ProgressFunc) Outcome
}

// TokenStore persists the raw access token between runs.
type TokenStore interface {
	// LoadToken returns [shared.ErrNoToken] when nothing is stored.
	LoadToken() (string, error)
	SaveToken(token string) error
	ClearToken() error
}

// ProgressFunc receives upload progress as a rounded percentage in [0, 100].
type ProgressFunc func(percent int)

// OutcomeKind discriminates [Outcome].
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeAuthExpired
	OutcomeRejected
	OutcomeTransportError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeAuthExpired:
		return "auth expired"
	case OutcomeRejected:
		return "rejected"
	case OutcomeTransportError:
		return "transport error"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of one upload.
//
// Image is set for [OutcomeSuccess], StatusCode for every kind that reached the server,
// and Err for [OutcomeTransportError].
type Outcome struct {
	Kind       OutcomeKind
	Image      *models.ResultImage
	StatusCode int
	Message    string
	Err        error
}
