package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lempar/academia/internal/app/models"
	"github.com/lempar/academia/internal/db"
	"github.com/lempar/academia/internal/pkg/apperrors"
	"github.com/lempar/academia/internal/pkg/dberrors"
	"github.com/lempar/academia/internal/pkg/logger"
)

const studentTable = "alumnos"

var studentColumns = []string{
	"id", "rut", "nombre", "apellido", "fecha_nacimiento",
	"cinturon", "nivel", "foto", "fecha_registro",
}

// StudentRepository handles student database operations
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: newStatementBuilder(),
	}
}

func scanStudent(row rowScanner) (*models.Student, error) {
	s := &models.Student{}
	err := row.Scan(&s.ID, &s.RUT, &s.FirstName, &s.LastName, &s.BirthDate,
		&s.Belt, &s.Level, &s.Photo, &s.RegisteredAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a student and fills in its ID and registration time
func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	s.RegisteredAt = time.Now().UTC()

	sql, args, err := r.sb.Insert(studentTable).
		Columns("rut", "nombre", "apellido", "fecha_nacimiento", "cinturon", "nivel", "foto", "fecha_registro").
		Values(s.RUT, s.FirstName, s.LastName, s.BirthDate, s.Belt, s.Level, s.Photo, s.RegisteredAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID); err != nil {
		if dup := duplicateStudentError(err, apperrors.ErrStudentRUTExists); dup != nil {
			return dup
		}
		logger.Error().Err(err).Str("rut", s.RUT).Msg("Error executing create student query")
		return fmt.Errorf("error creating student: %w", err)
	}

	return nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return r.getByID(ctx, r.db, id, false)
}

func (r *StudentRepository) getByID(ctx context.Context, q querier, id int64, forUpdate bool) (*models.Student, error) {
	qb := r.sb.Select(studentColumns...).
		From(studentTable).
		Where(squirrel.Eq{"id": id})
	if forUpdate {
		qb = qb.Suffix("FOR UPDATE")
	}

	sql, args, err := qb.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get student by ID SQL")
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	s, err := scanStudent(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error scanning student row")
		return nil, fmt.Errorf("error getting student by ID: %w", err)
	}
	return s, nil
}

// List retrieves all students ordered by surname then name
func (r *StudentRepository) List(ctx context.Context) ([]*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).
		From(studentTable).
		OrderBy("apellido ASC", "nombre ASC", "id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list students SQL")
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning student row during list")
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, s)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating student rows")
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}

	return students, nil
}

// RUTExists reports whether a student other than excludeID holds rut.
// Pass 0 to check every student.
func (r *StudentRepository) RUTExists(ctx context.Context, rut string, excludeID int64) (bool, error) {
	return exists(ctx, r.db, r.sb, studentTable, rutPredicate(rut, excludeID))
}

func rutPredicate(rut string, excludeID int64) squirrel.And {
	pred := squirrel.And{squirrel.Eq{"rut": rut}}
	if excludeID != 0 {
		pred = append(pred, squirrel.NotEq{"id": excludeID})
	}
	return pred
}

// duplicateStudentError returns conflict when err is a unique violation on
// alumnos, nil otherwise.
func duplicateStudentError(err, conflict error) error {
	if dberrors.IsUniqueViolation(err) {
		return conflict
	}
	return nil
}

// Update locks the row, lets mutate change it and writes it back in one
// transaction. An error from mutate rolls everything back.
func (r *StudentRepository) Update(ctx context.Context, id int64, mutate func(ctx context.Context, s *models.Student, rutTaken models.RUTLookup) error) (*models.Student, error) {
	var updated *models.Student

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		current, err := r.getByID(ctx, tx, id, true)
		if err != nil {
			return err
		}

		rutTaken := func(ctx context.Context, rut string) (bool, error) {
			return exists(ctx, tx, r.sb, studentTable, rutPredicate(rut, id))
		}
		if err := mutate(ctx, current, rutTaken); err != nil {
			return err
		}

		sql, args, err := r.sb.Update(studentTable).
			SetMap(map[string]interface{}{
				"rut":              current.RUT,
				"nombre":           current.FirstName,
				"apellido":         current.LastName,
				"fecha_nacimiento": current.BirthDate,
				"cinturon":         current.Belt,
				"nivel":            current.Level,
				"foto":             current.Photo,
			}).
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update student query: %w", err)
		}

		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			if dup := duplicateStudentError(err, apperrors.ErrStudentRUTUsedByOther); dup != nil {
				return dup
			}
			logger.Error().Err(err).Int64("studentID", id).Msg("Error executing update student query")
			return fmt.Errorf("error updating student: %w", err)
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a student and returns the deleted row
func (r *StudentRepository) Delete(ctx context.Context, id int64) (*models.Student, error) {
	sql, args, err := r.sb.Delete(studentTable).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(studentColumns)).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete student SQL")
		return nil, fmt.Errorf("failed to build delete student query: %w", err)
	}

	s, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error executing delete student query")
		return nil, fmt.Errorf("error deleting student: %w", err)
	}
	return s, nil
}
