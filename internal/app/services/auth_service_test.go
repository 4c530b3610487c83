package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lempar/academia/internal/app/models"
	"github.com/lempar/academia/internal/app/models/dto"
	"github.com/lempar/academia/internal/pkg/apperrors"
	"github.com/lempar/academia/internal/pkg/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*AuthService, *testutil.AccountStore, *testutil.StudentStore) {
	t.Helper()
	accounts := testutil.NewAccountStore()
	students := testutil.NewStudentStore()
	return NewAuthService(accounts, students, zerolog.Nop()), accounts, students
}

func registerRequest(rut string) dto.RegisterRequest {
	return dto.RegisterRequest{
		RUT:             rut,
		Username:        "ana",
		Email:           "ana@lempar.com",
		Password:        "secreto1",
		ConfirmPassword: "secreto1",
	}
}

func TestRegisterCreatesViewer(t *testing.T) {
	svc, accounts, students := newAuthFixture(t)
	seedStudent(t, students, "12.345.678-9", "")

	account, err := svc.Register(context.Background(), registerRequest("12.345.678-9"))
	require.NoError(t, err)

	assert.Equal(t, models.RoleViewer, account.Role)
	assert.True(t, account.IsActive)
	assert.NotEqual(t, "secreto1", account.PasswordHash)

	stored, err := accounts.GetByUsername(context.Background(), "ana")
	require.NoError(t, err)
	assert.Equal(t, account.ID, stored.ID)
}

func TestRegisterUnknownRUT(t *testing.T) {
	svc, accounts, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), registerRequest("99.999.999-9"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	assert.Equal(t, apperrors.ErrRUTNotInRoster, err)

	list, err := accounts.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	svc, _, students := newAuthFixture(t)
	seedStudent(t, students, "12.345.678-9", "")

	req := registerRequest("12.345.678-9")
	req.ConfirmPassword = "otra-cosa"
	_, err := svc.Register(context.Background(), req)
	assert.Equal(t, apperrors.ErrPasswordMismatch, err)
}

func TestRegisterDuplicatesInOrder(t *testing.T) {
	svc, accounts, students := newAuthFixture(t)
	seedStudent(t, students, "12.345.678-9", "")
	seedStudent(t, students, "11.111.111-1", "")

	_, err := svc.Register(context.Background(), registerRequest("12.345.678-9"))
	require.NoError(t, err)

	// same RUT wins over the username clash
	_, err = svc.Register(context.Background(), registerRequest("12.345.678-9"))
	assert.Equal(t, apperrors.ErrRegisteredRUTExists, err)

	req := registerRequest("11.111.111-1")
	_, err = svc.Register(context.Background(), req)
	assert.Equal(t, apperrors.ErrUsernameTaken, err)

	req.Username = "otra"
	_, err = svc.Register(context.Background(), req)
	assert.Equal(t, apperrors.ErrEmailExists, err)

	list, err := accounts.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLogin(t *testing.T) {
	svc, accounts, _ := newAuthFixture(t)
	admin := seedAccount(t, accounts, "admin", "admin123", models.RoleAdmin)

	got, err := svc.Login(context.Background(), dto.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)
	assert.True(t, got.IsAdmin())
}

func TestLoginFailuresLookAlike(t *testing.T) {
	svc, accounts, _ := newAuthFixture(t)
	viewer := seedAccount(t, accounts, "ana", "secreto1", models.RoleViewer)
	seedAccount(t, accounts, "luis", "secreto2", models.RoleViewer)
	accounts.SetActive(viewer.ID, false)

	cases := []dto.LoginRequest{
		{Username: "nadie", Password: "secreto1"},
		{Username: "luis", Password: "incorrecta"},
		{Username: "ana", Password: "secreto1"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		require.Error(t, err, req.Username)
		assert.Equal(t, apperrors.ErrBadCredentials, err, req.Username)
		assert.Equal(t, "Usuario o contraseña incorrectos.", apperrors.Message(err, ""))
	}
}
