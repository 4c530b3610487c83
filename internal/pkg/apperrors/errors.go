package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrDuplicateKey     = errors.New("duplicate key")

	// Authentication errors
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Authorization errors
	ErrPermissionDenied = errors.New("insufficient role")
	ErrSelfDeletion     = errors.New("an account cannot delete itself")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")

	// Picture store errors
	ErrStorage = errors.New("storage failure")
)

// Student errors
var (
	ErrStudentNotFound       = NewResourceNotFoundError("Alumno no encontrado")
	ErrStudentRUTExists      = NewDuplicateKeyError("Ya existe un alumno con este RUT")
	ErrStudentRUTUsedByOther = NewDuplicateKeyError("Ya existe otro alumno con este RUT")
)

// Account errors
var (
	ErrAccountNotFound     = NewResourceNotFoundError("Usuario no encontrado")
	ErrAccountRUTExists    = NewDuplicateKeyError("El RUT ya está registrado.")
	ErrRegisteredRUTExists = NewDuplicateKeyError("Ya existe un usuario registrado con este RUT.")
	ErrUsernameExists      = NewDuplicateKeyError("El nombre de usuario ya existe.")
	ErrUsernameTaken       = NewDuplicateKeyError("El nombre de usuario ya está en uso.")
	ErrEmailExists         = NewDuplicateKeyError("El email ya está registrado.")
	ErrRUTNotInRoster      = NewValidationError("El RUT ingresado no corresponde a ningún alumno registrado. Contacta al administrador.")
	ErrPasswordMismatch    = NewValidationError("Las contraseñas deben coincidir")
	ErrBadCredentials      = NewCustomError(ErrInvalidCredentials, "Usuario o contraseña incorrectos.")
	ErrCannotDeleteSelf    = NewCustomError(ErrSelfDeletion, "No puedes eliminar tu propia cuenta.")
	ErrLoginRequired       = NewCustomError(ErrNotAuthenticated, "Por favor inicia sesión para acceder a esta página.")
	ErrAdminRequired       = NewCustomError(ErrPermissionDenied, "Acceso denegado. Se requieren permisos de administrador.")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewDuplicateKeyError creates a new custom error for unique-key conflicts with a message
func NewDuplicateKeyError(message string) error {
	return &CustomError{
		Err:     ErrDuplicateKey,
		Message: message,
	}
}

// NewValidationError creates a new custom error for invalid input with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewStorageError wraps a picture store failure
func NewStorageError(message string, cause error) error {
	return &CustomError{
		Err:     ErrStorage,
		Message: message,
		Cause:   cause,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// Message returns the user-facing message carried by err, or fallback.
func Message(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Cause   error
}

// Error implements error interface
func (e *CustomError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "unknown error"
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap implements the multi-error form of errors.Unwrap so both the
// sentinel and the underlying cause stay reachable.
func (e *CustomError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}
