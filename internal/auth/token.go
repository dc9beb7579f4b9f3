package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a bearer token is malformed, expired or
// signed with another key.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the payload of a manager token.
type Claims struct {
	Email      string `json:"email"`
	TeamID     string `json:"teamId,omitempty"`
	SuperAdmin bool   `json:"superAdmin"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies manager tokens with a shared HMAC secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for u and its expiry time.
func (ti *TokenIssuer) Issue(u *User) (string, time.Time, error) {
	now := ti.now()
	exp := now.Add(ti.ttl)

	claims := Claims{
		Email:      u.Email,
		SuperAdmin: u.IsSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	if u.TeamID != nil {
		claims.TeamID = u.TeamID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies a signed token and returns the Identity it carries.
func (ti *TokenIssuer) Parse(raw string) (*Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return ti.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(ti.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	identity := &Identity{
		UserID:       userID,
		Email:        claims.Email,
		IsSuperAdmin: claims.SuperAdmin,
	}
	if claims.TeamID != "" {
		teamID, err := uuid.Parse(claims.TeamID)
		if err != nil {
			return nil, ErrInvalidToken
		}
		identity.TeamID = &teamID
	}

	return identity, nil
}
