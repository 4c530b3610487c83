package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lempar/academia/internal/app/models"
	"github.com/lempar/academia/internal/app/models/dto"
	"github.com/lempar/academia/internal/app/services"
	"github.com/lempar/academia/internal/middleware"
	"github.com/lempar/academia/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// AccountController handles the admin account pages
type AccountController struct {
	accountService services.AccountService
	logger         zerolog.Logger
}

// NewAccountController creates a new AccountController
func NewAccountController(accountService services.AccountService, logger zerolog.Logger) *AccountController {
	return &AccountController{
		accountService: accountService,
		logger:         logger,
	}
}

// ListAccounts shows every portal account
func (c *AccountController) ListAccounts(ctx *gin.Context) {
	accounts, err := c.accountService.ListAccounts(ctx.Request.Context())
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to list accounts")
		renderFailure(ctx, "usuarios.html", gin.H{"Title": "Usuarios"}, err)
		return
	}
	render(ctx, http.StatusOK, "usuarios.html", gin.H{
		"Title":    "Usuarios",
		"Accounts": accounts,
	})
}

// NewAccount shows the empty account form
func (c *AccountController) NewAccount(ctx *gin.Context) {
	render(ctx, http.StatusOK, "crear_usuario.html", gin.H{
		"Title": "Nuevo usuario",
		"Form":  dto.CreateAccountRequest{Role: models.RoleViewer},
	})
}

// CreateAccount handles the account form
func (c *AccountController) CreateAccount(ctx *gin.Context) {
	var req dto.CreateAccountRequest
	data := gin.H{"Title": "Nuevo usuario", "Form": &req}
	if err := middleware.BindForm(ctx, &req); err != nil {
		renderFailure(ctx, "crear_usuario.html", data, err)
		return
	}

	account, err := c.accountService.CreateAccount(ctx.Request.Context(), req)
	if err != nil {
		c.logger.Warn().Err(err).Str("username", req.Username).Msg("Failed to create account")
		renderFailure(ctx, "crear_usuario.html", data, err)
		return
	}

	c.logger.Info().
		Int64("accountID", account.ID).
		Str("role", string(account.Role)).
		Int64("by", middleware.CurrentAccount(ctx).ID).
		Msg("Account created")
	redirectWithFlash(ctx, "/usuarios", middleware.FlashSuccess, fmt.Sprintf("Usuario %s creado exitosamente.", account.Username))
}

// DeleteAccount removes an account. Admins cannot remove themselves.
func (c *AccountController) DeleteAccount(ctx *gin.Context) {
	actor := middleware.CurrentAccount(ctx)

	id, err := parseID(ctx, "id")
	if err != nil {
		redirectWithFlash(ctx, "/usuarios", middleware.FlashError, apperrors.Message(apperrors.ErrAccountNotFound, ""))
		return
	}

	account, err := c.accountService.DeleteAccount(ctx.Request.Context(), actor.ID, id)
	if err != nil {
		c.logger.Warn().Err(err).Int64("accountID", id).Int64("by", actor.ID).Msg("Failed to delete account")
		redirectWithFlash(ctx, "/usuarios", middleware.FlashError, middleware.UserMessage(err))
		return
	}

	redirectWithFlash(ctx, "/usuarios", middleware.FlashSuccess, fmt.Sprintf("Usuario %s eliminado exitosamente.", account.Username))
}
