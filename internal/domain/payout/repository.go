package payout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines payout data access
type Repository interface {
	Create(ctx context.Context, p *Payout) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payout, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*Payout, error)
	ListByStatus(ctx context.Context, status Status) ([]*Payout, error)
	// MarkPaid moves a payout needs_payment -> paid, recording the
	// admin who sent the transfer.
	MarkPaid(ctx context.Context, id, adminID uuid.UUID) (bool, error)
	// MarkReceived moves a payout paid -> received.
	MarkReceived(ctx context.Context, id uuid.UUID) (bool, error)

	// SumSoldBySeller totals the listing prices this seller has sold.
	SumSoldBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error)
	// SumReceivedBySeller totals payouts the seller confirmed receiving.
	SumReceivedBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error)
	// SumInvoicedBySeller totals all payouts ever created for the
	// seller, regardless of status.
	SumInvoicedBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error)
	// ListSellersWithSold returns every seller with at least one sold
	// listing.
	ListSellersWithSold(ctx context.Context) ([]uuid.UUID, error)
	// ExistsForPeriod reports whether the seller already has a payout
	// for the settlement period.
	ExistsForPeriod(ctx context.Context, sellerID uuid.UUID, month, year int) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates payout repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const payoutColumns = `id, seller_id, amount, status, period_month, period_year, paid_by, paid_at, received_at, created_at`

func (r *repository) Create(ctx context.Context, p *Payout) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payouts (id, seller_id, amount, status, period_month, period_year, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
	`, p.ID, p.SellerID, p.Amount, p.Status, p.PeriodMonth, p.PeriodYear)
	if err != nil {
		return fmt.Errorf("payout repository create: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Payout, error) {
	var p Payout
	err := r.db.GetContext(ctx, &p, `SELECT `+payoutColumns+` FROM payouts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("payout repository get: %w", err)
	}
	return &p, nil
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*Payout, error) {
	var payouts []*Payout
	err := r.db.SelectContext(ctx, &payouts, `
		SELECT `+payoutColumns+` FROM payouts
		WHERE seller_id = $1
		ORDER BY period_year DESC, period_month DESC
	`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("payout repository list by seller: %w", err)
	}
	return payouts, nil
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]*Payout, error) {
	var payouts []*Payout
	err := r.db.SelectContext(ctx, &payouts, `
		SELECT `+payoutColumns+` FROM payouts
		WHERE status = $1
		ORDER BY created_at ASC
	`, status)
	if err != nil {
		return nil, fmt.Errorf("payout repository list by status: %w", err)
	}
	return payouts, nil
}

func (r *repository) MarkPaid(ctx context.Context, id, adminID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payouts SET status = 'paid', paid_by = $2, paid_at = now()
		WHERE id = $1 AND status = 'needs_payment'
	`, id, adminID)
	if err != nil {
		return false, fmt.Errorf("payout repository mark paid: %w", err)
	}
	aff, _ := res.RowsAffected()
	return aff == 1, nil
}

func (r *repository) MarkReceived(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payouts SET status = 'received', received_at = now()
		WHERE id = $1 AND status = 'paid'
	`, id)
	if err != nil {
		return false, fmt.Errorf("payout repository mark received: %w", err)
	}
	aff, _ := res.RowsAffected()
	return aff == 1, nil
}

func (r *repository) SumSoldBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(price), 0) FROM listings
		WHERE seller_id = $1 AND status = 'sold'
	`, sellerID)
	if err != nil {
		return 0, fmt.Errorf("payout repository sum sold: %w", err)
	}
	return sum, nil
}

func (r *repository) SumReceivedBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(amount), 0) FROM payouts
		WHERE seller_id = $1 AND status = 'received'
	`, sellerID)
	if err != nil {
		return 0, fmt.Errorf("payout repository sum received: %w", err)
	}
	return sum, nil
}

func (r *repository) SumInvoicedBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(amount), 0) FROM payouts
		WHERE seller_id = $1
	`, sellerID)
	if err != nil {
		return 0, fmt.Errorf("payout repository sum invoiced: %w", err)
	}
	return sum, nil
}

func (r *repository) ListSellersWithSold(ctx context.Context) ([]uuid.UUID, error) {
	var sellers []uuid.UUID
	err := r.db.SelectContext(ctx, &sellers, `
		SELECT DISTINCT seller_id FROM listings WHERE status = 'sold'
	`)
	if err != nil {
		return nil, fmt.Errorf("payout repository list sellers: %w", err)
	}
	return sellers, nil
}

func (r *repository) ExistsForPeriod(ctx context.Context, sellerID uuid.UUID, month, year int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM payouts
			WHERE seller_id = $1 AND period_month = $2 AND period_year = $3
		)
	`, sellerID, month, year)
	if err != nil {
		return false, fmt.Errorf("payout repository exists for period: %w", err)
	}
	return exists, nil
}
