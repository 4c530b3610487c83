package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lempar/academia/internal/app/models/dto"
	"github.com/lempar/academia/internal/pkg/apperrors"
	"github.com/lempar/academia/internal/pkg/logger"
)

// StatusFor maps an application error onto its HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrSelfDeletion):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrInvalidCredentials), errors.Is(err, apperrors.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(err error) dto.ErrorCode {
	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return dto.ErrorCodeResourceNotFound
	case errors.Is(err, apperrors.ErrDuplicateKey):
		return dto.ErrorCodeResourceAlreadyExists
	case errors.Is(err, apperrors.ErrValidationFailed):
		return dto.ErrorCodeValidationFailed
	case errors.Is(err, apperrors.ErrSelfDeletion):
		return dto.ErrorCodeConflict
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return dto.ErrorCodeInvalidCredentials
	case errors.Is(err, apperrors.ErrNotAuthenticated):
		return dto.ErrorCodeUnauthorized
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return dto.ErrorCodeForbidden
	case errors.Is(err, apperrors.ErrStorage):
		return dto.ErrorCodeStorageError
	default:
		return dto.ErrorCodeInternalServer
	}
}

// UserMessage returns the notice shown for err. Unexpected errors never
// leak their text.
func UserMessage(err error) string {
	if StatusFor(err) == http.StatusInternalServerError && !errors.Is(err, apperrors.ErrStorage) {
		return "Ocurrió un error inesperado. Intenta nuevamente."
	}
	return apperrors.Message(err, "Ocurrió un error inesperado. Intenta nuevamente.")
}

// HandleAPIError writes err as a JSON error envelope
func HandleAPIError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}

	detail := dto.NewErrorDetail(codeFor(err), UserMessage(err))
	if status < http.StatusInternalServerError {
		detail.WithSeverity(dto.ErrorSeverityWarning)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}
