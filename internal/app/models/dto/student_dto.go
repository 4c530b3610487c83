package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/lempar/academia/internal/app/models"
	"github.com/lempar/academia/internal/pkg/apperrors"
)

// StudentForm is the create/edit student form as submitted
type StudentForm struct {
	RUT       string `form:"rut" binding:"required,min=9,max=12,rut"`
	FirstName string `form:"nombre" binding:"required,max=100"`
	LastName  string `form:"apellido" binding:"required,max=100"`
	BirthDate string `form:"fecha_nacimiento" binding:"required,datetime=2006-01-02"`
	Belt      string `form:"cinturon" binding:"required,max=50"`
	Level     *int   `form:"nivel" binding:"required,min=0,max=4"`
}

// StudentInput is a parsed student form handed to the roster service
type StudentInput struct {
	RUT       string
	FirstName string
	LastName  string
	BirthDate time.Time
	Belt      string
	Level     int
}

// Input parses the form into a StudentInput
func (f *StudentForm) Input() (StudentInput, error) {
	birth, err := time.Parse(models.DateLayout, strings.TrimSpace(f.BirthDate))
	if err != nil {
		return StudentInput{}, apperrors.NewValidationError("Fecha de nacimiento inválida, usa el formato AAAA-MM-DD.")
	}
	in := StudentInput{
		RUT:       f.RUT,
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		BirthDate: birth,
		Belt:      strings.TrimSpace(f.Belt),
	}
	if f.Level != nil {
		in.Level = *f.Level
	}
	return in, nil
}

// LevelValue renders the level for a form field
func (f StudentForm) LevelValue() string {
	if f.Level == nil {
		return ""
	}
	return strconv.Itoa(*f.Level)
}

// NewStudentForm pre-fills the edit form from a stored student
func NewStudentForm(s *models.Student) StudentForm {
	level := s.Level
	return StudentForm{
		RUT:       s.RUT,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		BirthDate: s.BirthDate.Format(models.DateLayout),
		Belt:      s.Belt,
		Level:     &level,
	}
}

// StudentResponse is the JSON representation of a student
type StudentResponse struct {
	ID           int64   `json:"id"`
	RUT          string  `json:"rut"`
	FirstName    string  `json:"nombre"`
	LastName     string  `json:"apellido"`
	BirthDate    string  `json:"fecha_nacimiento"`
	Belt         string  `json:"cinturon"`
	Level        int     `json:"nivel"`
	BeltLabel    string  `json:"cinturon_completo"`
	Photo        *string `json:"foto"`
	Age          int     `json:"edad"`
	RegisteredAt string  `json:"fecha_registro"`
}

// NewStudentResponse renders s with its age evaluated on today
func NewStudentResponse(s *models.Student, today time.Time) StudentResponse {
	var photo *string
	if s.HasPhoto() {
		name := s.PhotoName()
		photo = &name
	}
	return StudentResponse{
		ID:           s.ID,
		RUT:          s.RUT,
		FirstName:    s.FirstName,
		LastName:     s.LastName,
		BirthDate:    s.BirthDate.Format(models.DateLayout),
		Belt:         s.Belt,
		Level:        s.Level,
		BeltLabel:    s.BeltLabel(),
		Photo:        photo,
		Age:          s.AgeAt(today),
		RegisteredAt: s.RegisteredAt.Format(models.TimestampLayout),
	}
}

// NewStudentResponses renders a list of students
func NewStudentResponses(students []*models.Student, today time.Time) []StudentResponse {
	out := make([]StudentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, NewStudentResponse(s, today))
	}
	return out
}
