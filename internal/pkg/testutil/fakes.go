package testutil

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"github.com/lempar/academia/internal/app/models"
	"github.com/lempar/academia/internal/pkg/apperrors"
)

// StudentStore is an in-memory student repository
type StudentStore struct {
	mu       sync.Mutex
	nextID   int64
	rows     map[int64]models.Student
	updating bool
}

// NewStudentStore returns an empty StudentStore
func NewStudentStore() *StudentStore {
	return &StudentStore{rows: make(map[int64]models.Student)}
}

func (f *StudentStore) rutTaken(rut string, excludeID int64) bool {
	for id, s := range f.rows {
		if id != excludeID && s.RUT == rut {
			return true
		}
	}
	return false
}

// Create inserts a copy of s
func (f *StudentStore) Create(_ context.Context, s *models.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.rutTaken(s.RUT, 0) {
		return apperrors.ErrStudentRUTExists
	}
	f.nextID++
	s.ID = f.nextID
	s.RegisteredAt = time.Now().UTC().Truncate(time.Second)
	f.rows[s.ID] = *s
	return nil
}

// GetByID returns a copy of the stored student
func (f *StudentStore) GetByID(_ context.Context, id int64) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return &s, nil
}

// List returns the students ordered by surname, name and id
func (f *StudentStore) List(_ context.Context) ([]*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*models.Student, 0, len(f.rows))
	for _, s := range f.rows {
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ErrOutsideTransaction is returned by RUTExists when it is called while an
// Update is in flight. Checks made there must use the lookup Update passes in.
var ErrOutsideTransaction = errors.New("testutil: RUTExists called outside the update transaction")

// RUTExists reports whether another student holds rut
func (f *StudentStore) RUTExists(_ context.Context, rut string, excludeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updating {
		return false, ErrOutsideTransaction
	}
	return f.rutTaken(rut, excludeID), nil
}

// Update applies mutate to a copy and stores it only when mutate succeeds
func (f *StudentStore) Update(ctx context.Context, id int64, mutate func(ctx context.Context, s *models.Student, rutTaken models.RUTLookup) error) (*models.Student, error) {
	current, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	f.setUpdating(true)
	defer f.setUpdating(false)

	lookup := func(_ context.Context, rut string) (bool, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.rutTaken(rut, id), nil
	}
	if err := mutate(ctx, current, lookup); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rutTaken(current.RUT, id) {
		return nil, apperrors.ErrStudentRUTUsedByOther
	}
	f.rows[id] = *current
	return current, nil
}

func (f *StudentStore) setUpdating(v bool) {
	f.mu.Lock()
	f.updating = v
	f.mu.Unlock()
}

// Delete removes and returns the stored student
func (f *StudentStore) Delete(_ context.Context, id int64) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	delete(f.rows, id)
	return &s, nil
}

// Len returns the number of stored students
func (f *StudentStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// AccountStore is an in-memory account repository
type AccountStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.Account
}

// NewAccountStore returns an empty AccountStore
func NewAccountStore() *AccountStore {
	return &AccountStore{rows: make(map[int64]models.Account)}
}

func (f *AccountStore) find(match func(models.Account) bool) (models.Account, bool) {
	for _, a := range f.rows {
		if match(a) {
			return a, true
		}
	}
	return models.Account{}, false
}

// Create inserts a copy of a, enforcing the unique columns
func (f *AccountStore) Create(_ context.Context, a *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.find(func(x models.Account) bool { return x.Username == a.Username }); ok {
		return apperrors.ErrUsernameExists
	}
	if _, ok := f.find(func(x models.Account) bool { return x.Email == a.Email }); ok {
		return apperrors.ErrEmailExists
	}
	if _, ok := f.find(func(x models.Account) bool { return x.RUT == a.RUT }); ok {
		return apperrors.ErrAccountRUTExists
	}
	f.nextID++
	a.ID = f.nextID
	a.CreatedAt = time.Now().UTC()
	f.rows[a.ID] = *a
	return nil
}

// GetByID returns a copy of the stored account
func (f *AccountStore) GetByID(_ context.Context, id int64) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	return &a, nil
}

// GetByUsername returns a copy of the account with that username
func (f *AccountStore) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.find(func(x models.Account) bool { return x.Username == username })
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	return &a, nil
}

// List returns the accounts in id order
func (f *AccountStore) List(_ context.Context) ([]*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*models.Account, 0, len(f.rows))
	for _, a := range f.rows {
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *AccountStore) exists(match func(models.Account) bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.find(match)
	return ok, nil
}

// UsernameExists reports whether username is taken
func (f *AccountStore) UsernameExists(_ context.Context, username string) (bool, error) {
	return f.exists(func(a models.Account) bool { return a.Username == username })
}

// EmailExists reports whether email is taken
func (f *AccountStore) EmailExists(_ context.Context, email string) (bool, error) {
	return f.exists(func(a models.Account) bool { return a.Email == email })
}

// RUTExists reports whether rut is linked to an account
func (f *AccountStore) RUTExists(_ context.Context, rut string) (bool, error) {
	return f.exists(func(a models.Account) bool { return a.RUT == rut })
}

// Delete removes an account
func (f *AccountStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.rows[id]; !ok {
		return apperrors.ErrAccountNotFound
	}
	delete(f.rows, id)
	return nil
}

// SetActive toggles is_active on a stored account
func (f *AccountStore) SetActive(id int64, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.rows[id]; ok {
		a.IsActive = active
		f.rows[id] = a
	}
}

// PictureStore records picture operations without touching the filesystem
type PictureStore struct {
	mu        sync.Mutex
	counter   int
	Saved     []string
	Deleted   []string
	SaveErr   error
	DeleteErr error
}

// SavePicture returns a deterministic name for non-empty uploads
func (f *PictureStore) SavePicture(fh *multipart.FileHeader) (string, error) {
	if fh == nil || fh.Filename == "" {
		return "", nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SaveErr != nil {
		return "", f.SaveErr
	}
	f.counter++
	name := fmt.Sprintf("foto%d.png", f.counter)
	f.Saved = append(f.Saved, name)
	return name, nil
}

// DeletePicture records the call, even when DeleteErr is set
func (f *PictureStore) DeletePicture(filename string) error {
	if filename == "" {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, filename)
	return f.DeleteErr
}

// Calls returns copies of the saved and deleted names
func (f *PictureStore) Calls() (saved, deleted []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Saved...), append([]string(nil), f.Deleted...)
}
