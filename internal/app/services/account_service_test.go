package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lempar/academia/internal/app/models"
	"github.com/lempar/academia/internal/app/models/dto"
	"github.com/lempar/academia/internal/pkg/apperrors"
	"github.com/lempar/academia/internal/pkg/auth"
	"github.com/lempar/academia/internal/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createAccountRequest(username string, role models.RoleType) dto.CreateAccountRequest {
	return dto.CreateAccountRequest{
		RUT:      "1.234.567-" + username[:1],
		Username: username,
		Email:    username + "@lempar.com",
		Password: "secreto1",
		Role:     role,
	}
}

func TestCreateAccountWithRole(t *testing.T) {
	accounts := testutil.NewAccountStore()
	svc := NewAccountService(accounts)

	// no roster check for admin-created accounts
	created, err := svc.CreateAccount(context.Background(), createAccountRequest("profe", models.RoleAdmin))
	require.NoError(t, err)
	assert.True(t, created.IsAdmin())
	assert.True(t, auth.CheckPassword(created.PasswordHash, "secreto1"))
}

func TestCreateAccountDuplicates(t *testing.T) {
	accounts := testutil.NewAccountStore()
	svc := NewAccountService(accounts)
	_, err := svc.CreateAccount(context.Background(), createAccountRequest("profe", models.RoleViewer))
	require.NoError(t, err)

	req := createAccountRequest("profe", models.RoleViewer)
	req.RUT = "9.999.999-9"
	_, err = svc.CreateAccount(context.Background(), req)
	assert.Equal(t, apperrors.ErrUsernameExists, err)

	req.Username = "otro"
	_, err = svc.CreateAccount(context.Background(), req)
	assert.Equal(t, apperrors.ErrEmailExists, err)

	req.Email = "otro@lempar.com"
	req.RUT = "1.234.567-p"
	_, err = svc.CreateAccount(context.Background(), req)
	assert.Equal(t, apperrors.ErrAccountRUTExists, err)
}

func TestCreateAccountRejectsUnknownRole(t *testing.T) {
	svc := NewAccountService(testutil.NewAccountStore())

	_, err := svc.CreateAccount(context.Background(), createAccountRequest("root", models.RoleType("root")))
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestDeleteAccountSelfDeletion(t *testing.T) {
	accounts := testutil.NewAccountStore()
	svc := NewAccountService(accounts)
	admin := seedAccount(t, accounts, "admin", "admin123", models.RoleAdmin)

	_, err := svc.DeleteAccount(context.Background(), admin.ID, admin.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSelfDeletion))

	_, err = accounts.GetByID(context.Background(), admin.ID)
	assert.NoError(t, err)
}

func TestDeleteAccount(t *testing.T) {
	accounts := testutil.NewAccountStore()
	svc := NewAccountService(accounts)
	admin := seedAccount(t, accounts, "admin", "admin123", models.RoleAdmin)
	viewer := seedAccount(t, accounts, "ana", "secreto1", models.RoleViewer)

	deleted, err := svc.DeleteAccount(context.Background(), admin.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", deleted.Username)

	_, err = svc.DeleteAccount(context.Background(), admin.ID, viewer.ID)
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))

	list, err := svc.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, admin.ID, list[0].ID)
}

func TestGetAccount(t *testing.T) {
	accounts := testutil.NewAccountStore()
	svc := NewAccountService(accounts)
	admin := seedAccount(t, accounts, "admin", "admin123", models.RoleAdmin)

	got, err := svc.GetAccount(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)

	_, err = svc.GetAccount(context.Background(), 0)
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}
