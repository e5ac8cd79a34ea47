package transaction

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypePurchase Type = "purchase"
	TypeTopUp    Type = "topup"
)

type Status string

const (
	// StatusPending means the order awaits payment (gateway) or admin
	// review (manual top-up).
	StatusPending Status = "pending"
	// StatusVerified means the gateway confirmed payment for a purchase
	// and the order awaits admin hand-over of the account.
	StatusVerified  Status = "verified"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

type PaymentMethod string

const (
	MethodWallet  PaymentMethod = "wallet"
	MethodGateway PaymentMethod = "gateway"
	// MethodManual is a bank transfer settled outside the platform and
	// confirmed by an admin. Top-ups only.
	MethodManual PaymentMethod = "manual"
)

// Transaction is a money order on the marketplace: a listing purchase
// or a wallet top-up. Amount is the base price, Commission the
// marketplace fee on top, Total what the buyer actually pays. All in
// the smallest currency unit.
type Transaction struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	Type            Type           `db:"type" json:"type"`
	Status          Status         `db:"status" json:"status"`
	BuyerID         uuid.UUID      `db:"buyer_id" json:"buyer_id"`
	SellerID        uuid.NullUUID  `db:"seller_id" json:"seller_id,omitempty"`
	ListingID       uuid.NullUUID  `db:"listing_id" json:"listing_id,omitempty"`
	Amount          int64          `db:"amount" json:"amount"`
	Commission      int64          `db:"commission" json:"commission"`
	Total           int64          `db:"total" json:"total"`
	PaymentMethod   PaymentMethod  `db:"payment_method" json:"payment_method"`
	OrderCode       int64          `db:"order_code" json:"order_code"`
	PaymentLinkID   sql.NullString `db:"payment_link_id" json:"-"`
	CheckoutURL     sql.NullString `db:"checkout_url" json:"checkout_url,omitempty"`
	QRCode          sql.NullString `db:"qr_code" json:"qr_code,omitempty"`
	RejectionReason sql.NullString `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ApprovedBy      uuid.NullUUID  `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt      sql.NullTime   `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}
