package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/lempar/academia/internal/app/models"
	"github.com/lempar/academia/internal/config"
	"github.com/lempar/academia/internal/pkg/logger"
)

const (
	// SessionAccountKey holds the logged-in account ID in the session
	SessionAccountKey = "account_id"

	currentAccountKey = "currentAccount"
)

// Flash categories, rendered in this order
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashError   = "error"
)

var flashCategories = []string{FlashSuccess, FlashInfo, FlashWarning, FlashError}

// Flash is a one-shot notice shown on the next rendered page
type Flash struct {
	Category string
	Message  string
}

// NewSessionStore builds the signed cookie store from configuration
func NewSessionStore(cfg *config.Config) sessions.Store {
	store := cookie.NewStore([]byte(cfg.Session.SecretKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// Sessions installs the session middleware under the configured cookie name
func Sessions(cfg *config.Config, store sessions.Store) gin.HandlerFunc {
	return sessions.Sessions(cfg.Session.Name, store)
}

// AddFlash queues a notice for the next rendered page
func AddFlash(c *gin.Context, category, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, category)
	if err := session.Save(); err != nil {
		logger.Error().Err(err).Msg("Failed to save flash message")
	}
}

// Flashes drains every queued notice
func Flashes(c *gin.Context) []Flash {
	session := sessions.Default(c)
	var out []Flash
	for _, category := range flashCategories {
		for _, raw := range session.Flashes(category) {
			if msg, ok := raw.(string); ok {
				out = append(out, Flash{Category: category, Message: msg})
			}
		}
	}
	if len(out) > 0 {
		if err := session.Save(); err != nil {
			logger.Error().Err(err).Msg("Failed to save session after reading flashes")
		}
	}
	return out
}

// StartSession makes account the authenticated principal of the session
func StartSession(c *gin.Context, account *models.Account) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(SessionAccountKey, account.ID)
	c.Set(currentAccountKey, account)
	return session.Save()
}

// EndSession drops every value of the session
func EndSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	c.Set(currentAccountKey, nil)
	return session.Save()
}

// CurrentAccount returns the account loaded for this request, or nil
func CurrentAccount(c *gin.Context) *models.Account {
	v, ok := c.Get(currentAccountKey)
	if !ok {
		return nil
	}
	account, _ := v.(*models.Account)
	return account
}
