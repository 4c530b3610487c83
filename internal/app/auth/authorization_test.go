package auth

import (
	"errors"
	"testing"

	"github.com/lempar/academia/internal/app/models"
	"github.com/lempar/academia/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestRequireAdmin(t *testing.T) {
	admin := &models.Account{ID: 1, Role: models.RoleAdmin}
	viewer := &models.Account{ID: 2, Role: models.RoleViewer}

	assert.NoError(t, RequireAdmin(admin))
	assert.True(t, errors.Is(RequireAdmin(viewer), apperrors.ErrPermissionDenied))
	assert.True(t, errors.Is(RequireAdmin(nil), apperrors.ErrNotAuthenticated))
}

func TestRequireSession(t *testing.T) {
	assert.NoError(t, RequireSession(&models.Account{Role: models.RoleViewer}))
	assert.Equal(t, apperrors.ErrLoginRequired, RequireSession(nil))
}
