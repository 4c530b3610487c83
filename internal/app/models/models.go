package models

// RoleType defines the account role
type RoleType string

const (
	RoleAdmin  RoleType = "admin"
	RoleViewer RoleType = "visualizador"
)

// Valid reports whether r is a known role
func (r RoleType) Valid() bool {
	return r == RoleAdmin || r == RoleViewer
}

// Label is the display name used by the views
func (r RoleType) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrador"
	case RoleViewer:
		return "Visualizador"
	default:
		return string(r)
	}
}

// Date and timestamp layouts used in forms, views and JSON
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

const (
	MinLevel = 0
	MaxLevel = 4
)
