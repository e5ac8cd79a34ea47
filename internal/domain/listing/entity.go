package listing

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents the listing review lifecycle
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusSold     Status = "sold"
)

// Listing represents a game account offered for sale.
// Price is in the smallest currency unit.
type Listing struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	SellerID        uuid.UUID      `db:"seller_id" json:"seller_id"`
	RankLabel       string         `db:"rank_label" json:"rank_label"`
	Price           int64          `db:"price" json:"price"`
	Description     string         `db:"description" json:"description"`
	Status          Status         `db:"status" json:"status"`
	RejectionReason sql.NullString `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	SoldAt          sql.NullTime   `db:"sold_at" json:"sold_at,omitempty"`
}

// ScreenshotProcessStatus tracks thumbnail generation for a screenshot
type ScreenshotProcessStatus string

const (
	ScreenshotPending    ScreenshotProcessStatus = "pending"
	ScreenshotProcessing ScreenshotProcessStatus = "processing"
	ScreenshotDone       ScreenshotProcessStatus = "done"
	ScreenshotFailed     ScreenshotProcessStatus = "failed"
)

// Screenshot is an uploaded image attached to a listing
type Screenshot struct {
	ID              uuid.UUID               `db:"id" json:"id"`
	ListingID       uuid.UUID               `db:"listing_id" json:"listing_id"`
	StorageKey      string                  `db:"storage_key" json:"storage_key"`
	MimeType        string                  `db:"mime_type" json:"mime_type"`
	ProcessStatus   ScreenshotProcessStatus `db:"process_status" json:"process_status"`
	ProcessAttempts int                     `db:"process_attempts" json:"-"`
	Width           sql.NullInt64           `db:"width" json:"width,omitempty"`
	Height          sql.NullInt64           `db:"height" json:"height,omitempty"`
	URL             string                  `db:"-" json:"url,omitempty"`
	CreatedAt       time.Time               `db:"created_at" json:"created_at"`
}
