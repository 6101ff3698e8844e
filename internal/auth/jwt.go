package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed payload. It carries only the user id; no expiry is embedded,
// so a token stays valid until the secret rotates.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// Issue signs {id: userID}. For a fixed secret the output is deterministic.
func (m *Manager) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("empty user id")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: userID})
	return token.SignedString(m.secret)
}

// Verify returns the user id bound to tokenStr. Every failure collapses to ErrInvalidToken.
func (m *Manager) Verify(tokenStr string) (string, error) {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

func (m *Manager) parse(tokenStr string) (claims *Claims, err error) {
	defer func() {
		// jwt parsing of hostile input must never take the request down
		if r := recover(); r != nil {
			claims, err = nil, ErrInvalidToken
		}
	}()

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HMAC
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
