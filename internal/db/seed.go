package db

import (
	"context"
	"errors"

	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/domain/user"
)

type SellerStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

// EnsureSeller creates the configured seller account once. It is a no-op when seeding is
// not configured or the email is already registered.
func EnsureSeller(ctx context.Context, users SellerStore, cfg config.Config) (created bool, err error) {
	if cfg.SeedSellerEmail == "" || cfg.SeedSellerPassword == "" {
		return false, nil
	}

	existing, err := users.GetByEmail(ctx, user.NormalizeEmail(cfg.SeedSellerEmail))
	if err == nil {
		if !existing.IsSeller() {
			return false, errors.New("seed email belongs to a buyer account")
		}
		return false, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	u, err := user.New(user.SignUpRequest{
		Name:     cfg.SeedSellerName,
		Email:    cfg.SeedSellerEmail,
		Password: cfg.SeedSellerPassword,
	}, user.RoleSeller)
	if err != nil {
		return false, err
	}

	_, err = users.Create(ctx, u)
	if errors.Is(err, user.ErrEmailTaken) {
		// lost a race with another seeder
		return false, nil
	}
	return err == nil, err
}
