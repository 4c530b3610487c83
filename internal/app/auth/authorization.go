package auth

import (
	"github.com/lempar/academia/internal/app/models"
	"github.com/lempar/academia/internal/pkg/apperrors"
)

// RequireSession fails with ErrLoginRequired for anonymous callers
func RequireSession(account *models.Account) error {
	if account == nil {
		return apperrors.ErrLoginRequired
	}
	return nil
}

// RequireAdmin fails with ErrLoginRequired for anonymous callers and with
// ErrAdminRequired for any role other than admin
func RequireAdmin(account *models.Account) error {
	if err := RequireSession(account); err != nil {
		return err
	}
	if !account.IsAdmin() {
		return apperrors.ErrAdminRequired
	}
	return nil
}
