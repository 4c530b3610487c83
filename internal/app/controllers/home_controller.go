package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lempar/academia/internal/app/models/dto"
	"github.com/lempar/academia/internal/middleware"
	"github.com/lempar/academia/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// Pinger reports whether the database answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// HomeController serves the landing page and the liveness check
type HomeController struct {
	db     Pinger
	logger zerolog.Logger
}

// NewHomeController creates a new HomeController
func NewHomeController(db Pinger, logger zerolog.Logger) *HomeController {
	return &HomeController{
		db:     db,
		logger: logger,
	}
}

// Home renders the landing page
func (c *HomeController) Home(ctx *gin.Context) {
	render(ctx, http.StatusOK, "home.html", gin.H{"Title": "Inicio"})
}

// Health reports liveness including a database ping
func (c *HomeController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{
		Status:    "OK",
		Database:  "up",
		Timestamp: time.Now().UTC(),
	}
	status := http.StatusOK
	if err := c.db.Ping(pingCtx); err != nil {
		c.logger.Error().Err(err).Msg("Database ping failed")
		resp.Status = "DEGRADED"
		resp.Database = "down"
		status = http.StatusServiceUnavailable
	}
	ctx.JSON(status, resp)
}

// NotFound answers unknown routes, in JSON under /api
func (c *HomeController) NotFound(ctx *gin.Context) {
	if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
		middleware.HandleAPIError(ctx, apperrors.NewResourceNotFoundError("Recurso no encontrado"))
		return
	}
	renderNotFound(ctx, "La página solicitada no existe.")
}
