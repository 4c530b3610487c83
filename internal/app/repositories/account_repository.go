package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lempar/academia/internal/app/models"
	"github.com/lempar/academia/internal/pkg/apperrors"
	"github.com/lempar/academia/internal/pkg/dberrors"
	"github.com/lempar/academia/internal/pkg/logger"
)

const accountTable = "usuarios"

var accountColumns = []string{
	"id", "rut", "username", "email", "password_hash", "role", "created_at", "is_active",
}

// AccountRepository handles account database operations
type AccountRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{
		db: db,
		sb: newStatementBuilder(),
	}
}

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.RUT, &a.Username, &a.Email, &a.PasswordHash,
		&a.Role, &a.CreatedAt, &a.IsActive)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// duplicateAccountError maps the violated unique constraint onto its notice
func duplicateAccountError(err error) error {
	switch dberrors.ViolatedConstraint(err) {
	case "usuarios_username_key":
		return apperrors.ErrUsernameExists
	case "usuarios_email_key":
		return apperrors.ErrEmailExists
	default:
		return apperrors.ErrAccountRUTExists
	}
}

// Create inserts an account and fills in its ID and creation time
func (r *AccountRepository) Create(ctx context.Context, a *models.Account) error {
	a.CreatedAt = time.Now().UTC()

	sql, args, err := r.sb.Insert(accountTable).
		Columns("rut", "username", "email", "password_hash", "role", "created_at", "is_active").
		Values(a.RUT, a.Username, a.Email, a.PasswordHash, string(a.Role), a.CreatedAt, a.IsActive).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create account SQL")
		return fmt.Errorf("failed to build create account query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return duplicateAccountError(err)
		}
		logger.Error().Err(err).Str("username", a.Username).Msg("Error executing create account query")
		return fmt.Errorf("error creating account: %w", err)
	}

	return nil
}

func (r *AccountRepository) getOne(ctx context.Context, pred squirrel.Sqlizer) (*models.Account, error) {
	sql, args, err := r.sb.Select(accountColumns...).
		From(accountTable).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get account SQL")
		return nil, fmt.Errorf("failed to build get account query: %w", err)
	}

	a, err := scanAccount(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrAccountNotFound
		}
		logger.Error().Err(err).Msg("Error scanning account row")
		return nil, fmt.Errorf("error getting account: %w", err)
	}
	return a, nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByUsername retrieves an account by its login name
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

// List retrieves all accounts in creation order
func (r *AccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	sql, args, err := r.sb.Select(accountColumns...).
		From(accountTable).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list accounts SQL")
		return nil, fmt.Errorf("failed to build list accounts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list accounts query")
		return nil, fmt.Errorf("error querying accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning account row during list")
			return nil, fmt.Errorf("error scanning account row: %w", err)
		}
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating account rows")
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	return accounts, nil
}

// UsernameExists reports whether any account uses username
func (r *AccountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return exists(ctx, r.db, r.sb, accountTable, squirrel.Eq{"username": username})
}

// EmailExists reports whether any account uses email
func (r *AccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.db, r.sb, accountTable, squirrel.Eq{"email": email})
}

// RUTExists reports whether any account is linked to rut
func (r *AccountRepository) RUTExists(ctx context.Context, rut string) (bool, error) {
	return exists(ctx, r.db, r.sb, accountTable, squirrel.Eq{"rut": rut})
}

// Delete removes an account by ID
func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete(accountTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete account SQL")
		return fmt.Errorf("failed to build delete account query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("accountID", id).Msg("Error executing delete account query")
		return fmt.Errorf("error deleting account: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}
