package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// TokenKind separates short-lived access tokens from refresh tokens
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenKind = errors.New("wrong token kind")
	ErrTokenRevoked   = errors.New("token has been revoked")
)

// Claims is the payload of a storefront token. Subject mirrors UserID.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64     `json:"uid"`
	Name   string    `json:"name,omitempty"`
	Role   string    `json:"role,omitempty"`
	Kind   TokenKind `json:"kind"`
}

// IssuedAtTime returns the issue time, zero when absent
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// RemainingTTL is how long the token stays valid, never negative
func (c *Claims) RemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}

// Session is the account a token pair is issued for
type Session struct {
	UserID int64
	Name   string
	Role   string
}

// TokenPair is an access token with the refresh token that renews it
type TokenPair struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
}

type tokenSpec struct {
	secret []byte
	ttl    time.Duration
}

// JWTService signs and verifies HS256 tokens. Access and refresh tokens use
// separate secrets when a refresh secret is configured.
type JWTService struct {
	issuer string
	specs  map[TokenKind]tokenSpec
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &JWTService{
		issuer: cfg.Issuer,
		specs: map[TokenKind]tokenSpec{
			KindAccess:  {secret: []byte(cfg.Secret), ttl: cfg.AccessTokenExpiration},
			KindRefresh: {secret: []byte(refreshSecret), ttl: cfg.RefreshTokenExpiration},
		},
	}
}

// Issue signs a fresh access and refresh token for the session
func (s *JWTService) Issue(sess Session) (*TokenPair, error) {
	now := time.Now()

	access, accessExp, err := s.sign(KindAccess, now, Claims{UserID: sess.UserID, Name: sess.Name, Role: sess.Role})
	if err != nil {
		return nil, err
	}
	// Role is re-read from the user on refresh.
	refresh, refreshExp, err := s.sign(KindRefresh, now, Claims{UserID: sess.UserID})
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  accessExp,
		RefreshTokenExpiresAt: refreshExp,
	}, nil
}

func (s *JWTService) sign(kind TokenKind, now time.Time, claims Claims) (string, time.Time, error) {
	spec := s.specs[kind]
	exp := now.Add(spec.ttl)
	claims.Kind = kind
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   strconv.FormatInt(claims.UserID, 10),
		Audience:  jwt.ClaimStrings{s.issuer},
		ExpiresAt: jwt.NewNumericDate(exp),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString(spec.secret)
	return signed, exp, err
}

// Parse verifies a token of the given kind and returns its claims
func (s *JWTService) Parse(raw string, kind TokenKind) (*Claims, error) {
	spec, ok := s.specs[kind]
	if !ok {
		return nil, ErrWrongTokenKind
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return spec.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	}

	if claims.Kind != kind {
		return nil, ErrWrongTokenKind
	}
	if claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshTTL is the lifetime of refresh tokens. A password change revokes
// tokens issued within this window.
func (s *JWTService) RefreshTTL() time.Duration {
	return s.specs[KindRefresh].ttl
}
