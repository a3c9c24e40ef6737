// Package auth validates bearer tokens on the HTTP surface against a JWKS
// endpoint. When auth is disabled the middleware is a pass-through and the
// viewer id falls back to the identity adapter.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/Srinath10X/foundersTribe-sub002/internal/config"
)

const (
	jwksRefreshInterval = 5 * time.Minute
	// UserIDKey is the gin context key carrying the authenticated viewer id.
	UserIDKey = "user_id"
)

// Validator validates JWTs via a JWKS endpoint.
type Validator struct {
	cfg  *config.Config
	log  zerolog.Logger
	jwks atomic.Pointer[keyfunc.JWKS]
}

// NewValidator initialises JWKS fetching when auth is enabled.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	v := &Validator{
		cfg: cfg,
		log: log.With().Str("component", "auth").Logger(),
	}
	if !cfg.AuthEnabled {
		return v, nil
	}

	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   jwksRefreshInterval,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			v.log.Error().Err(err).Msg("jwks refresh failed")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	v.jwks.Store(jwks)
	return v, nil
}

// Middleware enforces bearer auth when enabled and stores the subject as the
// viewer id.
func (v *Validator) Middleware() gin.HandlerFunc {
	if v == nil || !v.cfg.AuthEnabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		subject, err := v.validate(raw)
		if err != nil {
			v.log.Debug().Err(err).Msg("token validation failed")
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(UserIDKey, subject)
		c.Next()
	}
}

func (v *Validator) validate(raw string) (string, error) {
	jwks := v.jwks.Load()
	if jwks == nil {
		return "", errors.New("jwks not initialised")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	token, err := parser.ParseWithClaims(raw, jwt.MapClaims{}, jwks.Keyfunc)
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	if iss, _ := claims["iss"].(string); iss != v.cfg.AuthIssuer {
		return "", fmt.Errorf("issuer mismatch %q", iss)
	}
	if !audienceMatches(claims["aud"], v.cfg.AuthAudience) {
		return "", errors.New("audience mismatch")
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return "", errors.New("missing subject")
	}
	return subject, nil
}

func audienceMatches(raw any, want string) bool {
	switch val := raw.(type) {
	case string:
		return val == want
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

// UserID returns the authenticated viewer id from the request context, or "".
func UserID(c *gin.Context) string {
	if id, exists := c.Get(UserIDKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
	})
}
