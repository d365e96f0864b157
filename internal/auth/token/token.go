package token

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dgrijalva/jwt-go"
)

var (
	ErrInvalidToken = errors.New("invalid_token")
	ErrTokenExpired = errors.New("token_expired")
)

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// Issuer signs and parses HS256 bearer tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Sign issues a token for the given user.
func (i *Issuer) Sign(userID snowflake.ID, role string, now time.Time) (string, error) {
	if len(i.secret) == 0 {
		return "", errors.New("token signing secret is not configured")
	}
	claims := Claims{
		UserID: userID.String(),
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(i.ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse validates a token and returns the user id and role it carries.
func (i *Issuer) Parse(raw string) (snowflake.ID, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, "", ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil {
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return 0, "", ErrTokenExpired
		}
		return 0, "", ErrInvalidToken
	}
	if !parsed.Valid {
		return 0, "", ErrInvalidToken
	}

	userID, err := snowflake.ParseString(claims.UserID)
	if err != nil || userID == 0 {
		return 0, "", ErrInvalidToken
	}
	return userID, claims.Role, nil
}
