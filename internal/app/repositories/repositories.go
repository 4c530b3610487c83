package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	StudentRepository *StudentRepository
	AccountRepository *AccountRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		StudentRepository: NewStudentRepository(db),
		AccountRepository: NewAccountRepository(db),
	}
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// rowScanner is satisfied by pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func newStatementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func existsQuery(sb squirrel.StatementBuilderType, table string, pred squirrel.Sqlizer) (string, []interface{}, error) {
	return sb.Select("1").
		From(table).
		Where(pred).
		Limit(1).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
}

// exists runs SELECT EXISTS(SELECT 1 FROM table WHERE pred)
func exists(ctx context.Context, q querier, sb squirrel.StatementBuilderType, table string, pred squirrel.Sqlizer) (bool, error) {
	sql, args, err := existsQuery(sb, table, pred)
	if err != nil {
		return false, fmt.Errorf("failed to build exists query on %s: %w", table, err)
	}

	var found bool
	if err := q.QueryRow(ctx, sql, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("error checking %s: %w", table, err)
	}
	return found, nil
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
