package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lempar/academia/internal/app/models"
	"github.com/lempar/academia/internal/app/models/dto"
	"github.com/lempar/academia/internal/pkg/apperrors"
	"github.com/lempar/academia/internal/pkg/auth"
	"github.com/rs/zerolog"
)

// AuthService handles authentication operations
type AuthService struct {
	accounts AccountStore
	students StudentStore
	logger   zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(accounts AccountStore, students StudentStore, logger zerolog.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		students: students,
		logger:   logger,
	}
}

// Register creates a visualizador account for a student already on the
// roster. Checks run in order: password confirmation, roster membership,
// then RUT, username and email uniqueness.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*models.Account, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if req.Password != req.ConfirmPassword {
		return nil, apperrors.ErrPasswordMismatch
	}

	onRoster, err := s.students.RUTExists(ctx, req.RUT, 0)
	if err != nil {
		return nil, fmt.Errorf("error checking roster: %w", err)
	}
	if !onRoster {
		s.logger.Info().Str("rut", req.RUT).Msg("Registration rejected: RUT not on roster")
		return nil, apperrors.ErrRUTNotInRoster
	}

	if err := checkAccountUniqueness(ctx,
		uniquenessCheck{s.accounts.RUTExists, req.RUT, apperrors.ErrRegisteredRUTExists},
		uniquenessCheck{s.accounts.UsernameExists, req.Username, apperrors.ErrUsernameTaken},
		uniquenessCheck{s.accounts.EmailExists, req.Email, apperrors.ErrEmailExists},
	); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	account := &models.Account{
		RUT:          req.RUT,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleViewer,
		IsActive:     true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateKey) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	s.logger.Info().Int64("accountID", account.ID).Str("username", account.Username).Msg("Account registered")
	return account, nil
}

// Login verifies credentials. Unknown usernames, wrong passwords and
// inactive accounts all yield ErrBadCredentials.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*models.Account, error) {
	account, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			auth.BurnPasswordCheck(req.Password)
			s.logger.Info().Str("username", req.Username).Msg("Login failed: unknown username")
			return nil, apperrors.ErrBadCredentials
		}
		return nil, fmt.Errorf("error loading account: %w", err)
	}

	if !auth.CheckPassword(account.PasswordHash, req.Password) {
		s.logger.Info().Int64("accountID", account.ID).Msg("Login failed: wrong password")
		return nil, apperrors.ErrBadCredentials
	}

	if !account.IsActive {
		s.logger.Info().Int64("accountID", account.ID).Msg("Login failed: inactive account")
		return nil, apperrors.ErrBadCredentials
	}

	s.logger.Info().Int64("accountID", account.ID).Str("role", string(account.Role)).Msg("Login succeeded")
	return account, nil
}

type uniquenessCheck struct {
	exists func(ctx context.Context, value string) (bool, error)
	value  string
	err    error
}

// checkAccountUniqueness runs the checks in order and returns the first
// conflict. The unique constraints remain the final word on races.
func checkAccountUniqueness(ctx context.Context, checks ...uniquenessCheck) error {
	for _, c := range checks {
		taken, err := c.exists(ctx, c.value)
		if err != nil {
			return fmt.Errorf("error checking account uniqueness: %w", err)
		}
		if taken {
			return c.err
		}
	}
	return nil
}
