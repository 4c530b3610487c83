package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/lempar/academia/internal/app/models"
	"github.com/lempar/academia/internal/app/services"
	"github.com/lempar/academia/internal/config"
	"github.com/lempar/academia/internal/pkg/apperrors"
	"github.com/lempar/academia/internal/pkg/auth"
	"github.com/rs/zerolog"
)

// CreateDefaultData creates the default admin account if its username is
// not taken yet. It reports whether an account was created.
func CreateDefaultData(ctx context.Context, accounts services.AccountStore, cfg *config.Config, lgr zerolog.Logger) (bool, error) {
	admin := cfg.Admin
	if admin.Username == "" || admin.Password == "" {
		lgr.Info().Msg("No default admin configured, skipping seed")
		return false, nil
	}

	lgr.Info().Str("username", admin.Username).Msg("Checking/Creating default admin account...")

	exists, err := accounts.UsernameExists(ctx, admin.Username)
	if err != nil {
		return false, fmt.Errorf("error checking default admin: %w", err)
	}
	if exists {
		lgr.Info().Str("username", admin.Username).Msg("Default admin already exists")
		return false, nil
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return false, fmt.Errorf("error hashing default admin password: %w", err)
	}

	account := &models.Account{
		RUT:          admin.RUT,
		Username:     admin.Username,
		Email:        admin.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := accounts.Create(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateKey) {
			lgr.Warn().Err(err).Str("username", admin.Username).Msg("Default admin conflicts with an existing account, skipping")
			return false, nil
		}
		return false, fmt.Errorf("error creating default admin: %w", err)
	}

	if admin.Password == config.DefaultAdminPassword {
		lgr.Warn().Str("username", admin.Username).Msg("Default admin created with the default password; change it")
	} else {
		lgr.Info().Str("username", admin.Username).Int64("accountID", account.ID).Msg("Default admin created")
	}
	return true, nil
}
