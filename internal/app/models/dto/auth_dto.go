package dto

import "github.com/lempar/academia/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `form:"username" binding:"required,min=3,max=80"`
	Password string `form:"password" binding:"required"`
}

// RegisterRequest represents the public self-registration form. The
// password confirmation is compared by the service.
type RegisterRequest struct {
	RUT             string `form:"rut" binding:"required,min=9,max=12,rut"`
	Username        string `form:"username" binding:"required,min=3,max=80"`
	Email           string `form:"email" binding:"required,email,max=120"`
	Password        string `form:"password" binding:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" binding:"required"`
}

// CreateAccountRequest represents the admin account form
type CreateAccountRequest struct {
	RUT      string          `form:"rut" binding:"required,min=9,max=12,rut"`
	Username string          `form:"username" binding:"required,min=3,max=80"`
	Email    string          `form:"email" binding:"required,email,max=120"`
	Password string          `form:"password" binding:"required,min=6"`
	Role     models.RoleType `form:"role" binding:"required,oneof=admin visualizador"`
}
