package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lempar/academia/internal/app/models/dto"
	"github.com/lempar/academia/internal/app/services"
	"github.com/lempar/academia/internal/middleware"
	"github.com/rs/zerolog"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// LoginPage shows the login form. Authenticated callers go home.
func (c *AuthController) LoginPage(ctx *gin.Context) {
	if middleware.CurrentAccount(ctx) != nil {
		ctx.Redirect(http.StatusFound, "/")
		return
	}
	render(ctx, http.StatusOK, "login.html", gin.H{
		"Title": "Iniciar sesión",
		"Form":  dto.LoginRequest{},
		"Next":  ctx.Query("next"),
	})
}

// Login handles user login
func (c *AuthController) Login(ctx *gin.Context) {
	if middleware.CurrentAccount(ctx) != nil {
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	next := ctx.DefaultPostForm("next", ctx.Query("next"))

	var req dto.LoginRequest
	data := gin.H{"Title": "Iniciar sesión", "Form": &req, "Next": next}
	if err := middleware.BindForm(ctx, &req); err != nil {
		c.logger.Debug().Err(err).Msg("Invalid login form")
		renderFailure(ctx, "login.html", data, err)
		return
	}

	account, err := c.authService.Login(ctx.Request.Context(), req)
	if err != nil {
		c.logger.Warn().Str("username", req.Username).Msg("Login failed")
		renderFailure(ctx, "login.html", data, err)
		return
	}

	if err := middleware.StartSession(ctx, account); err != nil {
		c.logger.Error().Err(err).Int64("accountID", account.ID).Msg("Failed to start session")
		renderFailure(ctx, "login.html", data, err)
		return
	}

	c.logger.Info().Int64("accountID", account.ID).Str("username", account.Username).Msg("User logged in")
	redirectWithFlash(ctx, safeNext(next), middleware.FlashSuccess, fmt.Sprintf("Bienvenido, %s!", account.Username))
}

// Logout ends the session unconditionally
func (c *AuthController) Logout(ctx *gin.Context) {
	if account := middleware.CurrentAccount(ctx); account != nil {
		c.logger.Info().Int64("accountID", account.ID).Msg("User logged out")
	}
	if err := middleware.EndSession(ctx); err != nil {
		c.logger.Error().Err(err).Msg("Failed to clear session")
	}
	redirectWithFlash(ctx, "/login", middleware.FlashInfo, "Has cerrado sesión exitosamente.")
}

// RegisterPage shows the self-registration form
func (c *AuthController) RegisterPage(ctx *gin.Context) {
	if middleware.CurrentAccount(ctx) != nil {
		ctx.Redirect(http.StatusFound, "/")
		return
	}
	render(ctx, http.StatusOK, "registro.html", gin.H{
		"Title": "Registro",
		"Form":  dto.RegisterRequest{},
	})
}

// Register handles user registration. The new account is logged in right away.
func (c *AuthController) Register(ctx *gin.Context) {
	if middleware.CurrentAccount(ctx) != nil {
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	var req dto.RegisterRequest
	data := gin.H{"Title": "Registro", "Form": &req}
	if err := middleware.BindForm(ctx, &req); err != nil {
		c.logger.Debug().Err(err).Msg("Invalid registration form")
		renderFailure(ctx, "registro.html", data, err)
		return
	}

	account, err := c.authService.Register(ctx.Request.Context(), req)
	if err != nil {
		c.logger.Warn().Err(err).Str("rut", req.RUT).Str("username", req.Username).Msg("Registration rejected")
		renderFailure(ctx, "registro.html", data, err)
		return
	}

	if err := middleware.StartSession(ctx, account); err != nil {
		c.logger.Error().Err(err).Int64("accountID", account.ID).Msg("Failed to start session")
		redirectWithFlash(ctx, "/login", middleware.FlashInfo, "Registro exitoso. Inicia sesión para continuar.")
		return
	}

	redirectWithFlash(ctx, "/", middleware.FlashSuccess, fmt.Sprintf("Registro exitoso. Bienvenido, %s!", account.Username))
}
