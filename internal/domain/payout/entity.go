package payout

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	// StatusNeedsPayment means the settlement engine owes the seller
	// this amount and an admin has not sent the bank transfer yet.
	StatusNeedsPayment Status = "needs_payment"
	// StatusPaid means the admin sent the transfer and awaits the
	// seller's confirmation.
	StatusPaid Status = "paid"
	// StatusReceived means the seller confirmed the money arrived.
	StatusReceived Status = "received"
)

// Payout is one monthly settlement owed to a seller, in the smallest
// currency unit. PeriodMonth/PeriodYear identify the settlement run
// that produced it.
type Payout struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	SellerID    uuid.UUID     `db:"seller_id" json:"seller_id"`
	Amount      int64         `db:"amount" json:"amount"`
	Status      Status        `db:"status" json:"status"`
	PeriodMonth int           `db:"period_month" json:"period_month"`
	PeriodYear  int           `db:"period_year" json:"period_year"`
	PaidBy      uuid.NullUUID `db:"paid_by" json:"paid_by,omitempty"`
	PaidAt      sql.NullTime  `db:"paid_at" json:"paid_at,omitempty"`
	ReceivedAt  sql.NullTime  `db:"received_at" json:"received_at,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}
