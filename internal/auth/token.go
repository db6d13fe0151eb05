package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/senyabanana/container-rental/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "container-rental"

// Claims - содержимое токена доступа.
type Claims struct {
	CustomerID string `json:"customer_id,omitempty"`
	Roles      []Role `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет токены HS256.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager создаёт новый экземпляр TokenManager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue выпускает токен для вызывающего.
func (m *TokenManager) Issue(principal Principal) (string, error) {
	now := time.Now()
	claims := Claims{
		Roles: principal.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.Subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}
	if principal.CustomerID != uuid.Nil {
		claims.CustomerID = principal.CustomerID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Resolve проверяет подпись и срок токена и возвращает вызывающего.
func (m *TokenManager) Resolve(_ context.Context, token string) (Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, models.Unauthenticatedf("missing access token")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, models.Unauthenticatedf("access token has expired")
		}
		return Principal{}, models.Unauthenticatedf("invalid access token")
	}

	principal := Principal{Subject: claims.Subject, Roles: claims.Roles}
	if claims.CustomerID != "" {
		customerID, err := uuid.Parse(claims.CustomerID)
		if err != nil {
			return Principal{}, models.Unauthenticatedf("invalid customer id in access token")
		}
		principal.CustomerID = customerID
	}
	if principal.Subject == "" {
		return Principal{}, models.Unauthenticatedf("access token has no subject")
	}
	return principal, nil
}
