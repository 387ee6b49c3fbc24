// Package auth issues and verifies the platform's HS256 access and refresh tokens.
package auth

import (
	"errors"
	"time"

	"go-recruiting-platform/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AudienceAccess  = "access"
	AudienceRefresh = "refresh"

	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour

	issuer = "recruiting-platform"
)

// Claims is the signed payload of both token kinds.
type Claims struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

var _ domain.TokenService = (*TokenService)(nil)

type Option func(*TokenService)

// WithClock overrides the time source used for issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(cfg Config, opts ...Option) (*TokenService, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("auth: access and refresh secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("auth: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}

	s := &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *TokenService) Issue(identity domain.Identity) (domain.TokenPair, error) {
	access, err := s.sign(identity, AudienceAccess, s.accessSecret, s.accessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.sign(identity, AudienceRefresh, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) VerifyAccess(token string) (domain.Identity, bool) {
	return s.verify(token, AudienceAccess, s.accessSecret)
}

func (s *TokenService) VerifyRefresh(token string) (domain.Identity, bool) {
	return s.verify(token, AudienceRefresh, s.refreshSecret)
}

func (s *TokenService) sign(identity domain.Identity, audience string, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: identity.UserID,
		Email:  identity.Email,
		Role:   identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   identity.UserID,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *TokenService) verify(token, audience string, secret []byte) (domain.Identity, bool) {
	if token == "" {
		return domain.Identity{}, false
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return domain.Identity{}, false
	}
	if claims.UserID == "" || claims.UserID != claims.Subject || !claims.Role.Valid() {
		return domain.Identity{}, false
	}
	return domain.Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, true
}
