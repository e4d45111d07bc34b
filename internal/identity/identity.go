// Package identity issues and verifies the local session tokens the API
// uses. Tokens are HS256 JWTs signed with a per-install secret kept in
// the data directory; there is no account system, just a stable user id
// per installation.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mindwell-app/mindwell/internal/domain"
)

const secretFile = "session.key"

// tokenTTL bounds how long a minted session stays valid.
const tokenTTL = 30 * 24 * time.Hour

// LoadOrCreateSecret returns the install's signing secret, generating
// one on first run. The file is chmod 0600 like a private key.
func LoadOrCreateSecret(dir string) ([]byte, error) {
	path := filepath.Join(dir, secretFile)
	if raw, err := os.ReadFile(path); err == nil {
		secret, err := hex.DecodeString(strings.TrimSpace(string(raw)))
		if err != nil {
			return nil, fmt.Errorf("parse session key: %w", err)
		}
		return secret, nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(secret)+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("write session key: %w", err)
	}
	return secret, nil
}

// Signer mints and verifies session tokens.
type Signer struct {
	secret []byte
}

func NewSigner(secret []byte) *Signer {
	return &Signer{secret: secret}
}

// Mint issues a session token for a user id.
func (s *Signer) Mint(userID string, now time.Time) (string, error) {
	if userID == "" {
		return "", domain.ErrEmptyUserID
	}
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		Issuer:    "mindwell",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks a token and returns its user id.
func (s *Signer) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer("mindwell"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBadToken, err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", domain.ErrBadToken
	}
	return claims.Subject, nil
}

// ─── HTTP Middleware ────────────────────────────────────────────────────────

type ctxKey struct{}

// Middleware authenticates requests with a Bearer token and stores the
// user id on the request context.
func (s *Signer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			writeUnauthorized(w, "missing bearer token")
			return
		}
		userID, err := s.Verify(token)
		if err != nil {
			writeUnauthorized(w, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, userID)))
	})
}

// writeUnauthorized rejects with the same error envelope the API's
// routes use. The api package imports this one, so the writer lives
// here.
func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "error",
		},
	})
}

// CurrentUser returns the authenticated user id, or ErrNoUser when the
// request skipped the middleware.
func CurrentUser(ctx context.Context) (string, error) {
	userID, _ := ctx.Value(ctxKey{}).(string)
	if userID == "" {
		return "", domain.ErrNoUser
	}
	return userID, nil
}
