package models

import (
	"time"
)

// Account defines a portal login based on the 'usuarios' table. RUT is a
// soft reference to a student; there is no foreign key.
type Account struct {
	ID           int64     `db:"id"`
	RUT          string    `db:"rut"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         RoleType  `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	IsActive     bool      `db:"is_active"`
}

// IsAdmin reports whether the account holds the admin role
func (a *Account) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// IsViewer reports whether the account holds the read-only role
func (a *Account) IsViewer() bool {
	return a != nil && a.Role == RoleViewer
}
