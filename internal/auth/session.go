// Package auth signs and verifies the session cookie that carries the
// caller's identity.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/revxrent/storefront/internal/domain"
)

// ErrInvalidToken means the token failed signature or expiry checks.
var ErrInvalidToken = errors.New("auth: invalid session token")

// SessionCodec encodes a principal into a signed, expiring token.
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionCodec builds a codec from the shared secret.
func NewSessionCodec(secret string, ttl time.Duration) (*SessionCodec, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionCodec{secret: []byte(secret), ttl: ttl}, nil
}

type sessionClaims struct {
	UserID    string `json:"uid"`
	IsAdmin   bool   `json:"adm"`
	ExpiresAt int64  `json:"exp"`
}

// Encode produces a token of the form base64(claims).base64(hmac).
func (c *SessionCodec) Encode(p domain.Principal) (string, error) {
	claims := sessionClaims{
		UserID:    p.UserID,
		IsAdmin:   p.IsAdmin,
		ExpiresAt: time.Now().Add(c.ttl).Unix(),
	}
	body, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to encode session claims: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(body)
	return encoded + "." + c.sign(encoded), nil
}

// Decode verifies the token and returns the principal it carries.
func (c *SessionCodec) Decode(token string) (domain.Principal, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok {
		return domain.Principal{}, ErrInvalidToken
	}
	if !hmac.Equal([]byte(sig), []byte(c.sign(encoded))) {
		return domain.Principal{}, ErrInvalidToken
	}

	body, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return domain.Principal{}, ErrInvalidToken
	}
	var claims sessionClaims
	if err := json.Unmarshal(body, &claims); err != nil {
		return domain.Principal{}, ErrInvalidToken
	}
	if claims.UserID == "" || time.Now().Unix() >= claims.ExpiresAt {
		return domain.Principal{}, ErrInvalidToken
	}

	return domain.Principal{UserID: claims.UserID, IsAdmin: claims.IsAdmin}, nil
}

func (c *SessionCodec) sign(encoded string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
