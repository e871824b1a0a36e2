package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/sidelinehq/sideline/internal/tenancy/domain"
	"github.com/sidelinehq/sideline/internal/tenancy/store"
	"github.com/sidelinehq/sideline/pkg/cryptox"
	"github.com/sidelinehq/sideline/pkg/idx"
	"github.com/sidelinehq/sideline/pkg/slogx"
)

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
)

type BootstrapService struct {
	Store store.Store
	Token string // Pre-configured bootstrap token
}

// IsBootstrapped reports whether any user exists yet.
func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates the first platform administrator. It only works on an
// empty system and requires the pre-configured token.
func (s *BootstrapService) Bootstrap(
	ctx context.Context,
	token string,
	email, password, firstName, lastName string,
) (domain.User, error) {
	l := slogx.FromContext(ctx)

	// 1. Check if already bootstrapped
	if bootstrapped, _ := s.IsBootstrapped(ctx); bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return domain.User{}, ErrBootstrapAlready
	}

	// 2. Validate provided token
	if s.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return domain.User{}, ErrBootstrapUnauthorized
	}

	// 3. Hash password
	passHash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return domain.User{}, err
	}

	// 4. Create the platform admin
	admin := domain.User{
		ID:            idx.New().String(),
		Email:         normalizeEmail(email),
		FirstName:     firstName,
		LastName:      lastName,
		PasswordHash:  passHash,
		PlatformAdmin: true,
	}
	if err := s.Store.Users().CreateUser(ctx, admin); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrBootstrapAlready
		}
		l.Error("failed to create platform admin", slog.Any("error", err))
		return domain.User{}, err
	}

	l.Info("successfully bootstrapped system", slog.String("admin_user_id", admin.ID))
	return admin, nil
}
