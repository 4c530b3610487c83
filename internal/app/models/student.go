package models

import (
	"context"
	"fmt"
	"time"
)

// Student defines the student model based on the 'alumnos' table
type Student struct {
	ID        int64     `db:"id"`
	RUT       string    `db:"rut"`
	FirstName string    `db:"nombre"`
	LastName  string    `db:"apellido"`
	BirthDate time.Time `db:"fecha_nacimiento"`
	Belt      string    `db:"cinturon"`
	// Level is the stripe count on the belt, 0..4
	Level        int       `db:"nivel"`
	Photo        *string   `db:"foto"`
	RegisteredAt time.Time `db:"fecha_registro"`
}

// RUTLookup reports whether another student already holds rut. Update hands
// one bound to its own transaction to the mutate callback.
type RUTLookup func(ctx context.Context, rut string) (bool, error)

// FullName returns "nombre apellido"
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// HasPhoto reports whether a stored photo is attached
func (s *Student) HasPhoto() bool {
	return s.Photo != nil && *s.Photo != ""
}

// PhotoName returns the stored photo filename or ""
func (s *Student) PhotoName() string {
	if s.Photo == nil {
		return ""
	}
	return *s.Photo
}

// AgeAt returns completed years between the birth date and today.
// Only the calendar date of today is considered.
func (s *Student) AgeAt(today time.Time) int {
	age := today.Year() - s.BirthDate.Year()
	if today.Month() < s.BirthDate.Month() ||
		(today.Month() == s.BirthDate.Month() && today.Day() < s.BirthDate.Day()) {
		age--
	}
	return age
}

// Age is AgeAt evaluated against the local current date
func (s *Student) Age() int {
	return s.AgeAt(time.Now())
}

// BeltLabel combines belt and stripe level, e.g. "Azul - 2 rayitas"
func (s *Student) BeltLabel() string {
	switch s.Level {
	case 0:
		return s.Belt + " - Sin rayitas"
	case 1:
		return s.Belt + " - 1 rayita"
	default:
		return fmt.Sprintf("%s - %d rayitas", s.Belt, s.Level)
	}
}
