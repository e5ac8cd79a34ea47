package notification

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification so clients can route and render it.
type Kind string

const (
	KindListingApproved   Kind = "listing_approved"
	KindListingRejected   Kind = "listing_rejected"
	KindListingSold       Kind = "listing_sold"
	KindPurchaseVerified  Kind = "purchase_verified"
	KindPurchaseCompleted Kind = "purchase_completed"
	KindPurchaseRejected  Kind = "purchase_rejected"
	KindTopUpApproved     Kind = "topup_approved"
	KindTopUpRejected     Kind = "topup_rejected"
	KindPayoutCreated     Kind = "payout_created"
	KindPayoutPaid        Kind = "payout_paid"
	KindPayoutReceived    Kind = "payout_received"
)

// Notification represents a user notification
type Notification struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	UserID    uuid.UUID      `db:"user_id" json:"user_id"`
	Kind      Kind           `db:"kind" json:"kind"`
	Title     string         `db:"title" json:"title"`
	Body      sql.NullString `db:"body" json:"body,omitempty"`
	IsRead    bool           `db:"is_read" json:"is_read"`
	ReadAt    sql.NullTime   `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
