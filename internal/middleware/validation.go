package middleware

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/lempar/academia/internal/pkg/apperrors"
	"github.com/lempar/academia/internal/pkg/validation"
)

// RegisterValidators installs the custom rules on gin's validator engine
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return validation.RegisterRules(v)
}

// BindForm binds and validates a submitted form into obj. Failures come
// back as validation errors carrying a Spanish notice.
func BindForm(c *gin.Context, obj interface{}) error {
	err := c.ShouldBind(obj)
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.NewValidationError(
			fmt.Sprintf("El archivo es demasiado grande. El máximo es %d MB.", tooLarge.Limit/(1024*1024)))
	}

	return &apperrors.CustomError{
		Err:     apperrors.ErrValidationFailed,
		Message: validation.Summary(err),
		Cause:   err,
	}
}

// FormFile returns the optional uploaded file of field name. A missing
// file, or a body that is not multipart, yields nil.
func FormFile(c *gin.Context, name string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(name)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("El archivo es demasiado grande. El máximo es %d MB.", tooLarge.Limit/(1024*1024)))
		}
		return nil, apperrors.NewValidationError("No se pudo leer el archivo subido.")
	}
	if fh.Filename == "" {
		return nil, nil
	}
	return fh, nil
}
