package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSubject    = errors.New("token has no subject")
)

// Claims are the fields read from tokens minted by the auth provider. The user
// id is taken from sub, then user_id, then email.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() string {
	for _, id := range []string{c.Subject, c.UserID, c.Email} {
		if id = strings.TrimSpace(id); id != "" {
			return id
		}
	}
	return ""
}

type JWTService interface {
	GenerateToken(userID string, ttl time.Duration) (string, error)
	ValidateToken(token string) (*Claims, error)
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

type jwtService struct {
	secret []byte
	config JWTConfig
	now    func() time.Time
}

// NewJWTService verifies HS256 tokens signed with the shared secret.
func NewJWTService(config JWTConfig) JWTService {
	return &jwtService{secret: []byte(config.Secret), config: config, now: time.Now}
}

func (s *jwtService) GenerateToken(userID string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if s.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.config.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *jwtService) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	if s.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.config.Audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Identity() == "" {
		return nil, ErrNoSubject
	}
	return claims, nil
}
