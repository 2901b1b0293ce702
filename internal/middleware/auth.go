// Package middleware provides request middleware plus the access token helpers
// shared by HTTP and websocket authentication.
package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenIssuer   = "talenta-api"
	TokenAudience = "talenta-client"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// AccessClaims is the decoded form of a verified access token.
type AccessClaims struct {
	UserID    uint
	Username  string
	JTI       string
	ExpiresAt time.Time
}

type accessClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 access tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a token helper. ttl defaults to seven days.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for userID. The jti is random so each token can be revoked on its own.
func (t *Tokens) Issue(userID uint, username string) (string, AccessClaims, error) {
	if len(t.secret) == 0 {
		return "", AccessClaims{}, fmt.Errorf("JWT secret not configured")
	}

	now := t.now()
	out := AccessClaims{
		UserID:    userID,
		Username:  username,
		JTI:       uuid.NewString(),
		ExpiresAt: now.Add(t.ttl),
	}
	claims := accessClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(out.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        out.JTI,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", AccessClaims{}, err
	}
	return signed, out, nil
}

// Parse verifies signature, issuer, audience and expiry.
func (t *Tokens) Parse(tokenString string) (*AccessClaims, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}

	out := &AccessClaims{
		UserID:   uint(userID),
		Username: claims.Username,
		JTI:      claims.ID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// BlacklistKey is the Redis key marking a revoked jti.
func BlacklistKey(jti string) string {
	return "blacklist:" + jti
}
