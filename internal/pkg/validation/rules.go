package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// RUTPattern is the dotted Chilean national ID, e.g. 12.345.678-9
	RUTPattern = `^[0-9]{1,2}\.[0-9]{3}\.[0-9]{3}-[0-9kK]$`

	// RUTMaxLength matches the column width
	RUTMaxLength = 12
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	RUT *regexp.Regexp
}{
	RUT: regexp.MustCompile(RUTPattern),
}

// ValidRUT reports whether s is a formatted RUT
func ValidRUT(s string) bool {
	return len(s) <= RUTMaxLength && CompiledPatterns.RUT.MatchString(s)
}

// labels maps form field names onto the Spanish labels shown to users
var labels = map[string]string{
	"rut":              "RUT",
	"nombre":           "Nombre",
	"apellido":         "Apellido",
	"fecha_nacimiento": "Fecha de nacimiento",
	"cinturon":         "Cinturón",
	"nivel":            "Nivel",
	"username":         "Usuario",
	"email":            "Email",
	"password":         "Contraseña",
	"confirm_password": "Confirmar contraseña",
	"role":             "Rol",
}

// RegisterRules installs the custom "rut" tag and makes field errors report
// the form name of a field instead of its Go name.
func RegisterRules(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return v.RegisterValidation("rut", func(fl validator.FieldLevel) bool {
		return ValidRUT(fl.Field().String())
	})
}

// FieldMessage is one failed rule rendered for humans
type FieldMessage struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Describe converts validator errors into Spanish messages. Errors that are
// not validation errors yield a single generic message.
func Describe(err error) []FieldMessage {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldMessage{{Message: "Los datos enviados no son válidos."}}
	}

	out := make([]FieldMessage, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldMessage{Field: fe.Field(), Message: describeField(fe)})
	}
	return out
}

// Summary joins the messages of Describe into a single notice
func Summary(err error) string {
	msgs := Describe(err)
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, m.Message)
	}
	return strings.Join(parts, " ")
}

func describeField(fe validator.FieldError) string {
	label, ok := labels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	isText := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("El campo %s es obligatorio.", label)
	case "min":
		if isText {
			return fmt.Sprintf("%s debe tener al menos %s caracteres.", label, fe.Param())
		}
		return fmt.Sprintf("%s debe ser mayor o igual a %s.", label, fe.Param())
	case "max":
		if isText {
			return fmt.Sprintf("%s debe tener como máximo %s caracteres.", label, fe.Param())
		}
		return fmt.Sprintf("%s debe ser menor o igual a %s.", label, fe.Param())
	case "email":
		return fmt.Sprintf("%s debe ser un email válido.", label)
	case "rut":
		return fmt.Sprintf("%s debe tener el formato 12.345.678-9.", label)
	case "oneof":
		return fmt.Sprintf("%s no es una opción válida.", label)
	case "datetime":
		return fmt.Sprintf("%s debe ser una fecha válida (AAAA-MM-DD).", label)
	case "eqfield":
		return "Las contraseñas deben coincidir"
	default:
		return fmt.Sprintf("%s no es válido.", label)
	}
}
