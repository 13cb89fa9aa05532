package app

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"changehub/backend/internal/model"
)

// TokenManager issues and verifies the signed, time-limited identity
// tokens handed out at login. Verification is stateless; there is no
// refresh or revocation, an expired token means re-login.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// Identity is the verified subject extracted from a token.
type Identity struct {
	UserID   string
	Username string
	Role     model.UserRole
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *TokenManager) Issue(user model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"iat":      now.Unix(),
		"exp":      now.Add(m.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *TokenManager) Verify(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid {
		return Identity{}, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("invalid claims")
	}
	if _, err := claims.GetExpirationTime(); err != nil {
		return Identity{}, err
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, errors.New("invalid token subject")
	}
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)

	return Identity{UserID: sub, Username: username, Role: model.UserRole(role)}, nil
}
