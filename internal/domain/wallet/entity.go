package wallet

import (
	"time"

	"github.com/google/uuid"
)

// EntryKind classifies a wallet balance movement.
type EntryKind string

const (
	EntryTopUp    EntryKind = "topup"
	EntryPurchase EntryKind = "purchase"
	EntryRefund   EntryKind = "refund"
)

type Wallet struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Entry is one signed movement on a wallet. Amount is negative for
// purchases and positive for top-ups and refunds, in the smallest
// currency unit.
type Entry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Amount      int64     `db:"amount" json:"amount"`
	Kind        EntryKind `db:"kind" json:"kind"`
	ReferenceID *string   `db:"reference_id" json:"reference_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
