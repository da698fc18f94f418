package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestInspectToken(t *testing.T) {
	t.Run("JWT Claims", func(t *testing.T) {
		exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "user",
			"exp": exp.Unix(),
			"iat": exp.Add(-time.Hour).Unix(),
		}).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}

		info := InspectToken(raw)
		if info.Opaque {
			t.Fatal("expected JWT to be parsed")
		}
		if info.Subject != "user" {
			t.Errorf("expected subject user, got %q", info.Subject)
		}
		if !info.ExpiresAt.Equal(exp) {
			t.Errorf("expected expiry %v, got %v", exp, info.ExpiresAt)
		}
		if info.Expired(exp.Add(-time.Minute)) {
			t.Error("token should not be expired before exp")
		}
		if !info.Expired(exp.Add(time.Minute)) {
			t.Error("token should be expired after exp")
		}
	})

	t.Run("Opaque Token", func(t *testing.T) {
		info := InspectToken("test-token")
		if !info.Opaque {
			t.Error("expected opaque token")
		}
		if info.Expired(time.Now()) {
			t.Error("opaque token never reports expired")
		}
	})
}
