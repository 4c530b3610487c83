package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/lempar/academia/internal/app/auth"
	"github.com/lempar/academia/internal/app/models"
	"github.com/lempar/academia/internal/app/models/dto"
	"github.com/lempar/academia/internal/pkg/apperrors"
	"github.com/lempar/academia/internal/pkg/logger"
)

// AccountLoader resolves the account stored in a session
type AccountLoader interface {
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	accounts AccountLoader
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(accounts AccountLoader) *AuthMiddleware {
	return &AuthMiddleware{
		accounts: accounts,
	}
}

// LoadSession resolves the session's account and stores it on the request.
// Vanished or deactivated accounts are logged out.
func (m *AuthMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		id, ok := session.Get(SessionAccountKey).(int64)
		if !ok {
			c.Next()
			return
		}

		account, err := m.accounts.GetAccount(c.Request.Context(), id)
		switch {
		case err == nil && account.IsActive:
			c.Set(currentAccountKey, account)
		case err == nil || errors.Is(err, apperrors.ErrResourceNotFound):
			logger.Info().Int64("accountID", id).Msg("Dropping session of missing or inactive account")
			session.Delete(SessionAccountKey)
			if err := session.Save(); err != nil {
				logger.Error().Err(err).Msg("Failed to save session")
			}
		default:
			logger.Error().Err(err).Int64("accountID", id).Msg("Failed to load session account")
		}

		c.Next()
	}
}

// LoginRequired redirects anonymous callers to the login page, remembering
// where they were headed
func (m *AuthMiddleware) LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.RequireSession(CurrentAccount(c)); err != nil {
			AddFlash(c, FlashInfo, apperrors.Message(err, "Por favor inicia sesión."))
			c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired lets only admin accounts through. Everyone else is sent
// home with a warning and never reaches the handler.
func (m *AuthMiddleware) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		account := CurrentAccount(c)
		if err := auth.RequireAdmin(account); err != nil {
			ev := logger.Warn().Str("path", c.Request.URL.Path)
			if account != nil {
				ev = ev.Int64("accountID", account.ID)
			}
			ev.Msg("Admin route denied")

			AddFlash(c, FlashWarning, apperrors.ErrAdminRequired.Message)
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// APIAuth rejects anonymous API callers with a JSON 401
func (m *AuthMiddleware) APIAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentAccount(c) == nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Autenticación requerida")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}
