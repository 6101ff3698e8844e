package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/storefront/internal/security"
	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
)

// Role is fixed when the account is created.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSeller:
		return true
	default:
		return false
	}
}

func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) IsSeller() bool { return u.Role == RoleSeller }

type SignUpRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=80"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// New hashes the password and builds a user ready to be stored.
func New(req SignUpRequest, role Role) (User, error) {
	if !role.IsValid() {
		return User{}, ErrInvalidRole
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return User{}, err
	}

	return User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        NormalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

type EmailFinder interface {
	GetByEmail(ctx context.Context, email string) (User, error)
}

// VerifyCredentials keeps unknown email (ErrNotFound) and wrong password
// (ErrInvalidCredentials) distinct; callers decide how much of that to reveal.
func VerifyCredentials(ctx context.Context, users EmailFinder, email, password string) (User, error) {
	u, err := users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return User{}, err
	}

	err = security.CheckPassword(u.PasswordHash, password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	return u, nil
}
