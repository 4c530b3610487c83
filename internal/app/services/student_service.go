package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/lempar/academia/internal/app/models"
	"github.com/lempar/academia/internal/app/models/dto"
	"github.com/lempar/academia/internal/pkg/apperrors"
	"github.com/lempar/academia/internal/pkg/filestorage"
	"github.com/lempar/academia/internal/pkg/logger"
	"github.com/lempar/academia/internal/pkg/validation"
)

// StudentService defines the roster operations
type StudentService interface {
	CreateStudent(ctx context.Context, in dto.StudentInput, photo *multipart.FileHeader) (*models.Student, error)
	UpdateStudent(ctx context.Context, id int64, in dto.StudentInput, photo *multipart.FileHeader) (*models.Student, error)
	DeleteStudent(ctx context.Context, id int64) error
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	ListStudents(ctx context.Context) ([]*models.Student, error)
	ExportStudents(ctx context.Context, w io.Writer) error
}

// studentServiceImpl implements the StudentService interface
type studentServiceImpl struct {
	students StudentStore
	pictures filestorage.PictureStore
	now      func() time.Time
}

// NewStudentService creates a new student service instance
func NewStudentService(students StudentStore, pictures filestorage.PictureStore) StudentService {
	return &studentServiceImpl{
		students: students,
		pictures: pictures,
		now:      time.Now,
	}
}

// validateStudent validates student data before database operations
func (s *studentServiceImpl) validateStudent(in dto.StudentInput) error {
	if in.RUT == "" || len(in.RUT) > validation.RUTMaxLength {
		return apperrors.NewValidationError("El RUT es obligatorio y tiene como máximo 12 caracteres.")
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return apperrors.NewValidationError("Nombre y apellido son obligatorios.")
	}
	if strings.TrimSpace(in.Belt) == "" {
		return apperrors.NewValidationError("El cinturón es obligatorio.")
	}
	if in.Level < models.MinLevel || in.Level > models.MaxLevel {
		return apperrors.NewValidationError(
			fmt.Sprintf("El nivel debe estar entre %d y %d.", models.MinLevel, models.MaxLevel))
	}
	if in.BirthDate.IsZero() {
		return apperrors.NewValidationError("La fecha de nacimiento es obligatoria.")
	}
	today := s.now()
	y, m, d := today.Date()
	if in.BirthDate.After(time.Date(y, m, d, 0, 0, 0, 0, in.BirthDate.Location())) {
		return apperrors.NewValidationError("La fecha de nacimiento no puede estar en el futuro.")
	}
	return nil
}

func applyInput(st *models.Student, in dto.StudentInput) {
	st.RUT = in.RUT
	st.FirstName = in.FirstName
	st.LastName = in.LastName
	st.BirthDate = in.BirthDate
	st.Belt = in.Belt
	st.Level = in.Level
}

// discardPicture removes a picture that never got committed
func (s *studentServiceImpl) discardPicture(filename string) {
	if filename == "" {
		return
	}
	if err := s.pictures.DeletePicture(filename); err != nil {
		logger.Warn().Err(err).Str("photo", filename).Msg("Failed to discard uncommitted photo")
	}
}

// CreateStudent stores the optional photo and inserts the student. A failed
// insert removes the stored photo again.
func (s *studentServiceImpl) CreateStudent(ctx context.Context, in dto.StudentInput, photo *multipart.FileHeader) (*models.Student, error) {
	if err := s.validateStudent(in); err != nil {
		return nil, err
	}

	taken, err := s.students.RUTExists(ctx, in.RUT, 0)
	if err != nil {
		return nil, fmt.Errorf("error checking student RUT: %w", err)
	}
	if taken {
		return nil, apperrors.ErrStudentRUTExists
	}

	filename, err := s.pictures.SavePicture(photo)
	if err != nil {
		return nil, err
	}

	student := &models.Student{}
	applyInput(student, in)
	if filename != "" {
		student.Photo = &filename
	}

	if err := s.students.Create(ctx, student); err != nil {
		s.discardPicture(filename)
		if errors.Is(err, apperrors.ErrDuplicateKey) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating student: %w", err)
	}

	logger.Info().Int64("studentID", student.ID).Str("rut", student.RUT).Msg("Student created")
	return student, nil
}

// UpdateStudent rewrites a student under a row lock. A new photo is stored
// before the transaction; the replaced photo is removed only after commit,
// and the new one is removed if the transaction fails.
func (s *studentServiceImpl) UpdateStudent(ctx context.Context, id int64, in dto.StudentInput, photo *multipart.FileHeader) (*models.Student, error) {
	if err := s.validateStudent(in); err != nil {
		return nil, err
	}

	newPhoto, err := s.pictures.SavePicture(photo)
	if err != nil {
		return nil, err
	}

	var oldPhoto string
	updated, err := s.students.Update(ctx, id, func(ctx context.Context, current *models.Student, rutTaken models.RUTLookup) error {
		if current.RUT != in.RUT {
			taken, err := rutTaken(ctx, in.RUT)
			if err != nil {
				return fmt.Errorf("error checking student RUT: %w", err)
			}
			if taken {
				return apperrors.ErrStudentRUTUsedByOther
			}
		}

		applyInput(current, in)
		if newPhoto != "" {
			oldPhoto = current.PhotoName()
			current.Photo = &newPhoto
		}
		return nil
	})
	if err != nil {
		s.discardPicture(newPhoto)
		if errors.Is(err, apperrors.ErrStudentNotFound) || errors.Is(err, apperrors.ErrDuplicateKey) {
			return nil, err
		}
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error updating student: %w", err)
	}

	if oldPhoto != "" && oldPhoto != newPhoto {
		if err := s.pictures.DeletePicture(oldPhoto); err != nil {
			logger.Warn().Err(err).Int64("studentID", id).Str("photo", oldPhoto).Msg("Failed to delete replaced photo")
		}
	}

	logger.Info().Int64("studentID", id).Msg("Student updated")
	return updated, nil
}

// DeleteStudent removes the record and then its photo. A photo that cannot
// be removed is logged and does not fail the deletion.
func (s *studentServiceImpl) DeleteStudent(ctx context.Context, id int64) error {
	student, err := s.students.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.ErrStudentNotFound
		}
		return fmt.Errorf("error deleting student: %w", err)
	}

	if student.HasPhoto() {
		if err := s.pictures.DeletePicture(student.PhotoName()); err != nil {
			logger.Warn().Err(err).Int64("studentID", id).Str("photo", student.PhotoName()).Msg("Student deleted but photo removal failed")
		}
	}

	logger.Info().Int64("studentID", id).Str("rut", student.RUT).Msg("Student deleted")
	return nil
}

// GetStudent retrieves a student by ID
func (s *studentServiceImpl) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	if id <= 0 {
		return nil, apperrors.ErrStudentNotFound
	}

	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return student, nil
}

// ListStudents returns the roster ordered by surname and name
func (s *studentServiceImpl) ListStudents(ctx context.Context) ([]*models.Student, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving students: %w", err)
	}
	return students, nil
}
