package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"

	"crowdfund-ledger/internal/models"
)

// ErrInvalidToken is returned for any token that cannot be trusted
var ErrInvalidToken = errors.New("invalid token")

const issuer = "crowdfund-ledger"

// Claims carries the principal in a signed bearer token
type Claims struct {
	Role models.UserRole `json:"role"`
	jwt.StandardClaims
}

// TokenIssuer issues and verifies HS256 bearer tokens
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a token issuer
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for user and returns it with its expiry
func (i *TokenIssuer) Issue(user *models.User) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)

	claims := Claims{
		Role: user.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies a token and returns the principal it carries
func (i *TokenIssuer) Parse(raw string) (models.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return models.Principal{}, ErrInvalidToken
	}
	if !claims.VerifyIssuer(issuer, true) {
		return models.Principal{}, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return models.Principal{}, ErrInvalidToken
	}
	role, err := models.ParseRole(string(claims.Role))
	if err != nil {
		return models.Principal{}, ErrInvalidToken
	}

	return models.Principal{UserID: userID, Role: role}, nil
}
