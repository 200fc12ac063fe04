package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"imovel-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of an access token. The subject is the user id.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// TokenManager issues and validates HS256 access tokens. Tokens are
// stateless; the denylist only remembers the ids of tokens revoked on logout.
type TokenManager struct {
	secret   []byte
	ttl      time.Duration
	denylist *Denylist
	now      func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration, denylist *Denylist) *TokenManager {
	if denylist == nil {
		denylist = NewDenylist()
	}
	return &TokenManager{
		secret:   []byte(secret),
		ttl:      ttl,
		denylist: denylist,
		now:      time.Now,
	}
}

func (m *TokenManager) Issue(user *models.User) (string, error) {
	now := m.now()
	claims := Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingCredential
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrCredentialExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject %q", ErrInvalidCredential, claims.Subject)
	}
	if m.denylist.Contains(claims.ID) {
		return nil, ErrCredentialRevoked
	}
	return claims, nil
}

// Revoke rejects the token until it would have expired anyway.
func (m *TokenManager) Revoke(claims *Claims) {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	m.denylist.Add(claims.ID, claims.ExpiresAt.Time)
}
