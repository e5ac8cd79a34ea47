package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines listing data access
type Repository interface {
	Create(ctx context.Context, l *Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	// ListPending returns the admin review queue, oldest first (FIFO).
	ListPending(ctx context.Context) ([]*Listing, error)
	ListApproved(ctx context.Context, limit, offset int) ([]*Listing, error)
	CountApproved(ctx context.Context) (int, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*Listing, error)
	// Approve sets status approved iff currently pending.
	Approve(ctx context.Context, id uuid.UUID) (bool, error)
	// Reject sets status rejected with a reason iff currently pending.
	Reject(ctx context.Context, id uuid.UUID, reason string) (bool, error)
	// MarkSold sets status sold with sold_at iff currently approved.
	MarkSold(ctx context.Context, id uuid.UUID) (bool, error)

	AddScreenshot(ctx context.Context, s *Screenshot) error
	ListScreenshots(ctx context.Context, listingID uuid.UUID) ([]*Screenshot, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates listing repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const listingColumns = `id, seller_id, rank_label, price, description, status, rejection_reason, created_at, sold_at`

func (r *repository) Create(ctx context.Context, l *Listing) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO listings (id, seller_id, rank_label, price, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
	`, l.ID, l.SellerID, l.RankLabel, l.Price, l.Description, l.Status)
	if err != nil {
		return fmt.Errorf("listing repository create: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	var l Listing
	err := r.db.GetContext(ctx, &l, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing repository get: %w", err)
	}
	return &l, nil
}

func (r *repository) ListPending(ctx context.Context) ([]*Listing, error) {
	var listings []*Listing
	// FIFO review queue: oldest submissions reviewed first
	err := r.db.SelectContext(ctx, &listings, `
		SELECT `+listingColumns+` FROM listings
		WHERE status = 'pending'
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing repository list pending: %w", err)
	}
	return listings, nil
}

func (r *repository) ListApproved(ctx context.Context, limit, offset int) ([]*Listing, error) {
	var listings []*Listing
	err := r.db.SelectContext(ctx, &listings, `
		SELECT `+listingColumns+` FROM listings
		WHERE status = 'approved'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing repository list approved: %w", err)
	}
	return listings, nil
}

func (r *repository) CountApproved(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM listings WHERE status = 'approved'`)
	if err != nil {
		return 0, fmt.Errorf("listing repository count approved: %w", err)
	}
	return count, nil
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*Listing, error) {
	var listings []*Listing
	err := r.db.SelectContext(ctx, &listings, `
		SELECT `+listingColumns+` FROM listings
		WHERE seller_id = $1
		ORDER BY created_at DESC
	`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("listing repository list by seller: %w", err)
	}
	return listings, nil
}

// Approve relies on the WHERE status guard for atomicity: a concurrent
// transition loses the race and reports no rows affected.
func (r *repository) Approve(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE listings SET status = 'approved'
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return false, fmt.Errorf("listing repository approve: %w", err)
	}
	aff, _ := res.RowsAffected()
	return aff == 1, nil
}

func (r *repository) Reject(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE listings SET status = 'rejected', rejection_reason = $2
		WHERE id = $1 AND status = 'pending'
	`, id, reason)
	if err != nil {
		return false, fmt.Errorf("listing repository reject: %w", err)
	}
	aff, _ := res.RowsAffected()
	return aff == 1, nil
}

func (r *repository) MarkSold(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE listings SET status = 'sold', sold_at = now()
		WHERE id = $1 AND status = 'approved'
	`, id)
	if err != nil {
		return false, fmt.Errorf("listing repository mark sold: %w", err)
	}
	aff, _ := res.RowsAffected()
	return aff == 1, nil
}

func (r *repository) AddScreenshot(ctx context.Context, s *Screenshot) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO listing_screenshots (id, listing_id, storage_key, mime_type, process_status, process_attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, now())
	`, s.ID, s.ListingID, s.StorageKey, s.MimeType, s.ProcessStatus)
	if err != nil {
		return fmt.Errorf("listing repository add screenshot: %w", err)
	}
	return nil
}

func (r *repository) ListScreenshots(ctx context.Context, listingID uuid.UUID) ([]*Screenshot, error) {
	var shots []*Screenshot
	err := r.db.SelectContext(ctx, &shots, `
		SELECT id, listing_id, storage_key, mime_type, process_status, process_attempts, width, height, created_at
		FROM listing_screenshots
		WHERE listing_id = $1
		ORDER BY created_at ASC
	`, listingID)
	if err != nil {
		return nil, fmt.Errorf("listing repository list screenshots: %w", err)
	}
	return shots, nil
}
