package services

import (
	"context"

	"github.com/lempar/academia/internal/app/models"
)

// Services defined in this package:
// - AuthService: self-registration and login
// - AccountService: admin management of portal accounts
// - StudentService: the roster (CRUD, photos and XLSX export)

// StudentStore is the persistence the roster needs. Implemented by
// repositories.StudentRepository.
type StudentStore interface {
	Create(ctx context.Context, s *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	List(ctx context.Context) ([]*models.Student, error)
	RUTExists(ctx context.Context, rut string, excludeID int64) (bool, error)
	// Update locks the row and persists whatever mutate leaves in it.
	// rutTaken runs inside the same transaction and ignores the row itself.
	Update(ctx context.Context, id int64, mutate func(ctx context.Context, s *models.Student, rutTaken models.RUTLookup) error) (*models.Student, error)
	Delete(ctx context.Context, id int64) (*models.Student, error)
}

// AccountStore is the persistence for portal accounts. Implemented by
// repositories.AccountRepository.
type AccountStore interface {
	Create(ctx context.Context, a *models.Account) error
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	RUTExists(ctx context.Context, rut string) (bool, error)
	Delete(ctx context.Context, id int64) error
}
