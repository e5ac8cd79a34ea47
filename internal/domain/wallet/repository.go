package wallet

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) EnsureWallet(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_wallets (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

func (r *Repository) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	if err := r.EnsureWallet(ctx, userID); err != nil {
		return 0, err
	}

	var balance int64
	err := r.db.GetContext(ctx, &balance, `SELECT balance FROM user_wallets WHERE user_id = $1`, userID)
	return balance, err
}

func (r *Repository) ListEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, error) {
	entries := []*Entry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, user_id, amount, kind, reference_id, created_at
		FROM wallet_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return entries, err
}

func (r *Repository) beginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// lockWallet creates the wallet row if missing and takes a row lock on
// it so concurrent movements on the same wallet serialize.
func (r *Repository) lockWallet(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (int64, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_wallets (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return 0, err
	}

	var balance int64
	err := tx.GetContext(ctx, &balance, `SELECT balance FROM user_wallets WHERE user_id = $1 FOR UPDATE`, userID)
	return balance, err
}

func (r *Repository) getEntryAmountByRef(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, kind EntryKind, referenceID string) (int64, bool, error) {
	if referenceID == "" {
		return 0, false, nil
	}

	var amount int64
	err := tx.GetContext(ctx, &amount, `
		SELECT amount
		FROM wallet_entries
		WHERE user_id = $1 AND kind = $2 AND reference_id = $3
		LIMIT 1
	`, userID, string(kind), referenceID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return amount, true, nil
}

func (r *Repository) updateBalance(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, balance int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE user_wallets SET balance = $1, updated_at = now() WHERE user_id = $2`, balance, userID)
	return err
}

func (r *Repository) insertEntry(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64, kind EntryKind, referenceID string) error {
	var ref interface{}
	if referenceID == "" {
		ref = nil
	} else {
		ref = referenceID
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_entries (user_id, amount, kind, reference_id)
		VALUES ($1, $2, $3, $4)
	`, userID, amount, string(kind), ref)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

// apply moves amount on the wallet inside a transaction. When a
// referenceID is given the movement is idempotent: replaying the same
// (kind, reference, amount) is a no-op, replaying with a different
// amount is a conflict.
func (r *Repository) apply(ctx context.Context, userID uuid.UUID, amount int64, kind EntryKind, referenceID string) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	balance, err := r.lockWallet(ctx, tx, userID)
	if err != nil {
		return err
	}

	existingAmount, exists, err := r.getEntryAmountByRef(ctx, tx, userID, kind, referenceID)
	if err != nil {
		return err
	}
	if exists {
		if existingAmount != amount {
			return ErrReferenceConflict
		}
		return nil
	}

	nextBalance := balance + amount
	if nextBalance < 0 {
		return ErrInsufficientBalance
	}

	if err := r.updateBalance(ctx, tx, userID, nextBalance); err != nil {
		return err
	}

	if err := r.insertEntry(ctx, tx, userID, amount, kind, referenceID); err != nil {
		if errors.Is(err, ErrDuplicateReference) {
			existingAmount, exists, checkErr := r.getEntryAmountByRef(ctx, tx, userID, kind, referenceID)
			if checkErr != nil {
				return checkErr
			}
			if !exists || existingAmount != amount {
				return ErrReferenceConflict
			}
			return nil
		}
		return err
	}

	return tx.Commit()
}

func (r *Repository) Credit(ctx context.Context, userID uuid.UUID, amount int64, kind EntryKind, referenceID string) error {
	return r.apply(ctx, userID, amount, kind, referenceID)
}

func (r *Repository) Debit(ctx context.Context, userID uuid.UUID, amount int64, kind EntryKind, referenceID string) error {
	return r.apply(ctx, userID, -amount, kind, referenceID)
}
