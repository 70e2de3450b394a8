package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the fallback validity period for editor tokens.
const DefaultTokenTTL = 8 * time.Hour

// JWTConfig bundles the configuration required to build a JWTService.
type JWTConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
	Clock    func() time.Time
}

// Claims are the custom claims embedded in issued editor tokens.
type Claims struct {
	UserID      string `json:"uid"`
	DisplayName string `json:"name,omitempty"`
	Editor      bool   `json:"editor,omitempty"`
	jwt.RegisteredClaims
}

// TokenInput holds the parameters used when issuing a new editor token.
type TokenInput struct {
	UserID      string
	DisplayName string
	Editor      bool
	Audience    []string
}

// JWTService issues and validates the bearer tokens that guard the editor API.
type JWTService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService constructs a JWTService from the supplied configuration.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt: secret must be provided")
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &JWTService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    now,
	}, nil
}

// IssueToken signs a token carrying the supplied identity claims.
func (s *JWTService) IssueToken(input TokenInput) (string, error) {
	if input.UserID == "" {
		return "", errors.New("jwt: user id is required")
	}

	now := s.now()

	claims := &Claims{
		UserID:      input.UserID,
		DisplayName: input.DisplayName,
		Editor:      input.Editor,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   input.UserID,
			Issuer:    s.issuer,
			Audience:  input.Audience,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates a signed token, returning its claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("jwt: token string is empty")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt: parse token: %w", err)
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, errors.New("jwt: invalid issuer")
	}

	if claims.UserID == "" {
		return nil, errors.New("jwt: missing user id claim")
	}

	return &claims, nil
}
