// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lempar/academia/internal/middleware"
	"github.com/lempar/academia/internal/pkg/apperrors"
	"github.com/lempar/academia/internal/pkg/logger"
)

// render writes page with the session's account and pending flashes merged
// into data
func render(ctx *gin.Context, status int, page string, data gin.H) {
	renderNotice(ctx, status, page, data, nil)
}

// renderNotice renders page with an extra notice that was never stored in
// the session
func renderNotice(ctx *gin.Context, status int, page string, data gin.H, notice *middleware.Flash) {
	if data == nil {
		data = gin.H{}
	}
	flashes := middleware.Flashes(ctx)
	if notice != nil {
		flashes = append(flashes, *notice)
	}
	data["CurrentAccount"] = middleware.CurrentAccount(ctx)
	data["Flashes"] = flashes
	ctx.HTML(status, page, data)
}

// renderFailure re-renders page after err, choosing status and notice from
// the error
func renderFailure(ctx *gin.Context, page string, data gin.H, err error) {
	status := middleware.StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", ctx.Request.URL.Path).Msg("Request failed")
	}
	renderNotice(ctx, status, page, data, &middleware.Flash{
		Category: middleware.FlashError,
		Message:  middleware.UserMessage(err),
	})
}

// renderNotFound renders the error page with a 404
func renderNotFound(ctx *gin.Context, message string) {
	render(ctx, http.StatusNotFound, "error.html", gin.H{
		"Title":   "No encontrado",
		"Message": message,
	})
}

// redirectWithFlash queues a notice and redirects with a 302
func redirectWithFlash(ctx *gin.Context, location, category, message string) {
	middleware.AddFlash(ctx, category, message)
	ctx.Redirect(http.StatusFound, location)
}

// parseID reads a positive numeric path parameter
func parseID(ctx *gin.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ErrResourceNotFound
	}
	return id, nil
}

// safeNext returns next when it is a path on this site, "/" otherwise
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
