package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines transaction data access
type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	// Delete removes a transaction that never became payable, e.g. when
	// the gateway refused to create a payment link.
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	GetByOrderCode(ctx context.Context, orderCode int64) (*Transaction, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]*Transaction, error)
	// ListPendingTopUps returns manual top-ups awaiting admin review,
	// oldest first.
	ListPendingTopUps(ctx context.Context) ([]*Transaction, error)
	// NextOrderCode reserves a gateway order code.
	NextOrderCode(ctx context.Context) (int64, error)
	SetPaymentLink(ctx context.Context, id uuid.UUID, linkID, checkoutURL, qrCode string) error
	// MarkVerified moves a transaction pending -> verified.
	MarkVerified(ctx context.Context, id uuid.UUID) (bool, error)
	// Complete moves a transaction from the given status to completed,
	// recording who approved it when approvedBy is set.
	Complete(ctx context.Context, id uuid.UUID, from Status, approvedBy uuid.NullUUID) (bool, error)
	// Reject moves a transaction from the given status to rejected.
	Reject(ctx context.Context, id uuid.UUID, from Status, reason string, rejectedBy uuid.NullUUID) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates transaction repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const transactionColumns = `id, type, status, buyer_id, seller_id, listing_id, amount, commission, total,
	payment_method, order_code, payment_link_id, checkout_url, qr_code, rejection_reason,
	approved_by, approved_at, created_at, updated_at`

func (r *repository) Create(ctx context.Context, t *Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, type, status, buyer_id, seller_id, listing_id, amount, commission, total, payment_method, order_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
	`, t.ID, t.Type, t.Status, t.BuyerID, t.SellerID, t.ListingID, t.Amount, t.Commission, t.Total, t.PaymentMethod, t.OrderCode)
	if err != nil {
		return fmt.Errorf("transaction repository create: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("transaction repository delete: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	var t Transaction
	err := r.db.GetContext(ctx, &t, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("transaction repository get: %w", err)
	}
	return &t, nil
}

func (r *repository) GetByOrderCode(ctx context.Context, orderCode int64) (*Transaction, error) {
	var t Transaction
	err := r.db.GetContext(ctx, &t, `SELECT `+transactionColumns+` FROM transactions WHERE order_code = $1`, orderCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("transaction repository get by order code: %w", err)
	}
	return &t, nil
}

func (r *repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]*Transaction, error) {
	var txns []*Transaction
	err := r.db.SelectContext(ctx, &txns, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE buyer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, buyerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("transaction repository list by buyer: %w", err)
	}
	return txns, nil
}

func (r *repository) ListPendingTopUps(ctx context.Context) ([]*Transaction, error) {
	var txns []*Transaction
	err := r.db.SelectContext(ctx, &txns, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE type = 'topup' AND payment_method = 'manual' AND status = 'pending'
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("transaction repository list pending topups: %w", err)
	}
	return txns, nil
}

func (r *repository) NextOrderCode(ctx context.Context) (int64, error) {
	var code int64
	err := r.db.GetContext(ctx, &code, `SELECT nextval('transaction_order_code_seq')`)
	if err != nil {
		return 0, fmt.Errorf("transaction repository next order code: %w", err)
	}
	return code, nil
}

func (r *repository) SetPaymentLink(ctx context.Context, id uuid.UUID, linkID, checkoutURL, qrCode string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET payment_link_id = $2, checkout_url = $3, qr_code = $4, updated_at = now()
		WHERE id = $1
	`, id, linkID, checkoutURL, qrCode)
	if err != nil {
		return fmt.Errorf("transaction repository set payment link: %w", err)
	}
	return nil
}

// State transitions rely on the WHERE status guard: a concurrent
// transition loses the race and reports no rows affected.

func (r *repository) MarkVerified(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET status = 'verified', updated_at = now()
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return false, fmt.Errorf("transaction repository mark verified: %w", err)
	}
	aff, _ := res.RowsAffected()
	return aff == 1, nil
}

func (r *repository) Complete(ctx context.Context, id uuid.UUID, from Status, approvedBy uuid.NullUUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET status = 'completed', approved_by = $3, approved_at = now(), updated_at = now()
		WHERE id = $1 AND status = $2
	`, id, from, approvedBy)
	if err != nil {
		return false, fmt.Errorf("transaction repository complete: %w", err)
	}
	aff, _ := res.RowsAffected()
	return aff == 1, nil
}

func (r *repository) Reject(ctx context.Context, id uuid.UUID, from Status, reason string, rejectedBy uuid.NullUUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET status = 'rejected', rejection_reason = $3, approved_by = $4, approved_at = now(), updated_at = now()
		WHERE id = $1 AND status = $2
	`, id, from, reason, rejectedBy)
	if err != nil {
		return false, fmt.Errorf("transaction repository reject: %w", err)
	}
	aff, _ := res.RowsAffected()
	return aff == 1, nil
}
