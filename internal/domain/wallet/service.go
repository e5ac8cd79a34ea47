package wallet

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Balances captures the two wallet mutations the marketplace performs:
// crediting a buyer (approved top-up, refund) and debiting a buyer
// (wallet purchase). Other domains depend on this interface.
type Balances interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
	Credit(ctx context.Context, userID uuid.UUID, amount int64, kind EntryKind, referenceID string) error
	Debit(ctx context.Context, userID uuid.UUID, amount int64, kind EntryKind, referenceID string) error
}

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetBalance(ctx, userID)
}

// HasBalance reports whether the user can cover amount. Callers that go
// on to spend must still rely on Debit, which checks under the row lock.
func (s *Service) HasBalance(ctx context.Context, userID uuid.UUID, amount int64) (bool, error) {
	if amount <= 0 {
		return false, ErrInvalidAmount
	}
	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

func (s *Service) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListEntries(ctx, userID, limit, offset)
}

func (s *Service) Credit(ctx context.Context, userID uuid.UUID, amount int64, kind EntryKind, referenceID string) error {
	if amount <= 0 || referenceID == "" {
		return ErrInvalidAmount
	}
	if err := s.repo.Credit(ctx, userID, amount, kind, referenceID); err != nil {
		return err
	}
	log.Info().Str("user_id", userID.String()).Int64("amount", amount).Str("kind", string(kind)).Str("reference_id", referenceID).Msg("wallet credit applied")
	return nil
}

func (s *Service) Debit(ctx context.Context, userID uuid.UUID, amount int64, kind EntryKind, referenceID string) error {
	if amount <= 0 || referenceID == "" {
		return ErrInvalidAmount
	}
	if err := s.repo.Debit(ctx, userID, amount, kind, referenceID); err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return ErrInsufficientBalance
		}
		return err
	}
	log.Info().Str("user_id", userID.String()).Int64("amount", amount).Str("kind", string(kind)).Str("reference_id", referenceID).Msg("wallet debit applied")
	return nil
}
