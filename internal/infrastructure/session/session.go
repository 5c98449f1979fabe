package session

import (
	"context"
	"fmt"
	"time"

	"fieldos-dispatch/internal/infrastructure/config"
	"fieldos-dispatch/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Session is the authenticated FieldOS API session injected into every client
// repository. It wraps an oauth2 token source so a static bearer token and a
// password-grant login behave the same to callers.
type Session struct {
	source oauth2.TokenSource
	logger logger.Logger
}

// NewSession builds a session from config. A static FIELDOS_API_TOKEN takes
// precedence; otherwise the session logs in with the resource-owner password
// grant and refreshes itself through the token source.
func NewSession(ctx context.Context, cfg *config.Config, log logger.Logger) (*Session, error) {
	if cfg.FieldOSToken != "" {
		if exp, ok := TokenExpiry(cfg.FieldOSToken); ok {
			if time.Now().After(exp) {
				log.Warn("Configured API token is already expired", "expiry", exp.Format(time.RFC3339))
			} else {
				log.Info("Using configured API token", "expiry", exp.Format(time.RFC3339))
			}
		}
		return &Session{
			source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.FieldOSToken}),
			logger: log,
		}, nil
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.FieldOSClientID,
		ClientSecret: cfg.FieldOSClientSec,
		Endpoint: oauth2.Endpoint{
			TokenURL: cfg.FieldOSBaseURL + "/oauth/token",
		},
	}

	token, err := oauthConfig.PasswordCredentialsToken(ctx, cfg.FieldOSUsername, cfg.FieldOSPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to log in to FieldOS: %w", err)
	}

	log.Info("Logged in to FieldOS", "expiry", token.Expiry.Format(time.RFC3339))

	return &Session{
		// ReuseTokenSource refreshes transparently when the token expires
		source: oauth2.ReuseTokenSource(token, oauthConfig.TokenSource(ctx, token)),
		logger: log,
	}, nil
}

// NewStaticSession wraps a fixed bearer token, used in tests
func NewStaticSession(token string) *Session {
	return &Session{
		source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		logger: logger.NewNop(),
	}
}

// BearerToken returns the current access token, refreshing it if needed
func (s *Session) BearerToken() (string, error) {
	token, err := s.source.Token()
	if err != nil {
		return "", fmt.Errorf("failed to obtain access token: %w", err)
	}
	return token.AccessToken, nil
}

// TokenExpiry extracts the expiry claim from a JWT bearer token without
// verifying the signature. Returns false for opaque (non-JWT) tokens.
func TokenExpiry(raw string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
