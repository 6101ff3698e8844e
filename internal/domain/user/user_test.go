package user_test

import (
	"context"
	"testing"

	"github.com/geocoder89/storefront/internal/domain/user"
	"github.com/stretchr/testify/require"
)

type fakeFinder struct {
	users map[string]user.User
}

func (f fakeFinder) GetByEmail(_ context.Context, email string) (user.User, error) {
	u, ok := f.users[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func TestParseRole(t *testing.T) {
	r, err := user.ParseRole(" Seller ")
	require.NoError(t, err)
	require.Equal(t, user.RoleSeller, r)

	_, err = user.ParseRole("admin")
	require.ErrorIs(t, err, user.ErrInvalidRole)
}

func TestNewHashesPasswordAndNormalizesEmail(t *testing.T) {
	u, err := user.New(user.SignUpRequest{Name: " Sam ", Email: " Sam@Example.COM ", Password: "password123"}, user.RoleBuyer)
	require.NoError(t, err)

	require.NotEmpty(t, u.ID)
	require.Equal(t, "Sam", u.Name)
	require.Equal(t, "sam@example.com", u.Email)
	require.NotEqual(t, "password123", u.PasswordHash)
	require.Equal(t, user.RoleBuyer, u.Role)
	require.False(t, u.IsSeller())
}

func TestNewRejectsUnknownRole(t *testing.T) {
	_, err := user.New(user.SignUpRequest{Name: "Sam", Email: "s@x.io", Password: "password123"}, user.Role("admin"))
	require.ErrorIs(t, err, user.ErrInvalidRole)
}

func TestVerifyCredentials(t *testing.T) {
	u, err := user.New(user.SignUpRequest{Name: "Sam", Email: "sam@example.com", Password: "password123"}, user.RoleSeller)
	require.NoError(t, err)

	finder := fakeFinder{users: map[string]user.User{u.Email: u}}
	ctx := context.Background()

	got, err := user.VerifyCredentials(ctx, finder, "SAM@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = user.VerifyCredentials(ctx, finder, "sam@example.com", "wrong-password")
	require.ErrorIs(t, err, user.ErrInvalidCredentials)

	_, err = user.VerifyCredentials(ctx, finder, "nobody@example.com", "password123")
	require.ErrorIs(t, err, user.ErrNotFound)
}
