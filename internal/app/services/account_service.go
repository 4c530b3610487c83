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
	"github.com/lempar/academia/internal/pkg/logger"
)

// AccountService defines the admin operations on portal accounts
type AccountService interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*models.Account, error)
	DeleteAccount(ctx context.Context, actorID, id int64) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
}

// accountServiceImpl implements the AccountService interface
type accountServiceImpl struct {
	accounts AccountStore
}

// NewAccountService creates a new account service instance
func NewAccountService(accounts AccountStore) AccountService {
	return &accountServiceImpl{
		accounts: accounts,
	}
}

// CreateAccount creates an account with a caller-selected role. Unlike
// registration the RUT does not need to be on the roster.
func (s *accountServiceImpl) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*models.Account, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if !req.Role.Valid() {
		return nil, apperrors.NewValidationError("Rol inválido.")
	}

	if err := checkAccountUniqueness(ctx,
		uniquenessCheck{s.accounts.UsernameExists, req.Username, apperrors.ErrUsernameExists},
		uniquenessCheck{s.accounts.EmailExists, req.Email, apperrors.ErrEmailExists},
		uniquenessCheck{s.accounts.RUTExists, req.RUT, apperrors.ErrAccountRUTExists},
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
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateKey) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	logger.Info().Int64("accountID", account.ID).Str("role", string(account.Role)).Msg("Account created by admin")
	return account, nil
}

// DeleteAccount removes an account. An admin can never delete itself.
func (s *accountServiceImpl) DeleteAccount(ctx context.Context, actorID, id int64) (*models.Account, error) {
	if id == actorID {
		return nil, apperrors.ErrCannotDeleteSelf
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("error retrieving account: %w", err)
	}

	if err := s.accounts.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("error deleting account: %w", err)
	}

	logger.Info().Int64("accountID", id).Int64("actorID", actorID).Msg("Account deleted")
	return account, nil
}

// ListAccounts returns every account
func (s *accountServiceImpl) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving accounts: %w", err)
	}
	return accounts, nil
}

// GetAccount retrieves an account by ID
func (s *accountServiceImpl) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	if id <= 0 {
		return nil, apperrors.ErrAccountNotFound
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("error retrieving account: %w", err)
	}
	return account, nil
}
