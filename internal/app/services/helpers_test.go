package services

import (
	"context"
	"testing"
	"time"

	"github.com/lempar/academia/internal/app/models"
	"github.com/lempar/academia/internal/app/models/dto"
	"github.com/lempar/academia/internal/pkg/auth"
	"github.com/lempar/academia/internal/pkg/testutil"
	"github.com/stretchr/testify/require"
)

var (
	_ StudentStore = (*testutil.StudentStore)(nil)
	_ AccountStore = (*testutil.AccountStore)(nil)
)

var fixedNow = time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)

func studentInput(rut string) dto.StudentInput {
	return dto.StudentInput{
		RUT:       rut,
		FirstName: "Ana",
		LastName:  "Pérez",
		BirthDate: time.Date(1995, time.May, 15, 0, 0, 0, 0, time.UTC),
		Belt:      "Azul",
		Level:     2,
	}
}

func newStudentService(students *testutil.StudentStore, pictures *testutil.PictureStore) *studentServiceImpl {
	svc := NewStudentService(students, pictures).(*studentServiceImpl)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func seedStudent(t *testing.T, store *testutil.StudentStore, rut string, photo string) *models.Student {
	t.Helper()
	s := &models.Student{
		RUT:       rut,
		FirstName: "Luis",
		LastName:  "Soto",
		BirthDate: time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
		Belt:      "Blanco",
	}
	if photo != "" {
		s.Photo = &photo
	}
	require.NoError(t, store.Create(context.Background(), s))
	return s
}

func seedAccount(t *testing.T, store *testutil.AccountStore, username, password string, role models.RoleType) *models.Account {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	a := &models.Account{
		RUT:          username + "-rut",
		Username:     username,
		Email:        username + "@lempar.com",
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, store.Create(context.Background(), a))
	return a
}
