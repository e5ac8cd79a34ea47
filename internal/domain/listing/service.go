package listing

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gamebay/gamebay-api/internal/domain/user"
	"github.com/gamebay/gamebay-api/internal/pkg/email"
	"github.com/gamebay/gamebay-api/internal/pkg/storage"
)

const (
	minReasonLen = 2
	maxReasonLen = 500
)

// Notifier records an in-app notification for a user. Implemented by
// the notification service; failures are handled inside the notifier.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, title, body string)
}

// Service handles listing business logic
type Service struct {
	repo        Repository
	userRepo    user.Repository
	emailSvc    *email.Service
	notifier    Notifier
	store       storage.Storage
	frontendURL string
}

// NewService creates listing service
func NewService(repo Repository, userRepo user.Repository, emailSvc *email.Service, notifier Notifier, store storage.Storage, frontendURL string) *Service {
	return &Service{
		repo:        repo,
		userRepo:    userRepo,
		emailSvc:    emailSvc,
		notifier:    notifier,
		store:       store,
		frontendURL: frontendURL,
	}
}

// Create submits a new listing for admin review
func (s *Service) Create(ctx context.Context, sellerID uuid.UUID, req *CreateListingRequest) (*Listing, error) {
	l := &Listing{
		ID:          uuid.New(),
		SellerID:    sellerID,
		RankLabel:   strings.TrimSpace(req.RankLabel),
		Price:       req.Price,
		Description: strings.TrimSpace(req.Description),
		Status:      StatusPending,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	log.Info().
		Str("listing_id", l.ID.String()).
		Str("seller_id", sellerID.String()).
		Int64("price", l.Price).
		Msg("listing submitted for review")

	return l, nil
}

// Approve moves a pending listing to approved and notifies the seller.
// The notification is advisory: a send failure never undoes the transition.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrListingNotFound
	}
	if l.Status != StatusPending {
		return nil, ErrNotPending
	}

	ok, err := s.repo.Approve(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		// lost the race to a concurrent transition
		return nil, ErrNotPending
	}
	l.Status = StatusApproved

	log.Info().Str("listing_id", id.String()).Msg("listing approved")

	s.notifySeller(ctx, l, "listing_approved", "Tin đăng đã được duyệt",
		fmt.Sprintf("Tài khoản rank %s giá %d đã lên chợ", l.RankLabel, l.Price),
		func(u *user.User) {
			s.emailSvc.SendListingApproved(u.Email, u.DisplayName, l.RankLabel,
				formatAmount(l.Price), s.frontendURL+"/listings/"+l.ID.String())
		})

	return l, nil
}

// Reject moves a pending listing to rejected with a reason and notifies the seller
func (s *Service) Reject(ctx context.Context, id uuid.UUID, reason string) (*Listing, error) {
	reason = strings.TrimSpace(reason)
	if n := utf8.RuneCountInString(reason); n < minReasonLen || n > maxReasonLen {
		return nil, ErrReasonLength
	}

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrListingNotFound
	}
	if l.Status != StatusPending {
		return nil, ErrNotPending
	}

	ok, err := s.repo.Reject(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotPending
	}
	l.Status = StatusRejected
	l.RejectionReason.String = reason
	l.RejectionReason.Valid = true

	log.Info().Str("listing_id", id.String()).Str("reason", reason).Msg("listing rejected")

	s.notifySeller(ctx, l, "listing_rejected", "Tin đăng bị từ chối", reason,
		func(u *user.User) {
			s.emailSvc.SendListingRejected(u.Email, u.DisplayName, l.RankLabel, reason)
		})

	return l, nil
}

// MarkSold moves an approved listing to sold
func (s *Service) MarkSold(ctx context.Context, id uuid.UUID) (*Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrListingNotFound
	}
	if l.Status != StatusApproved {
		return nil, ErrNotApproved
	}

	ok, err := s.repo.MarkSold(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotApproved
	}
	l.Status = StatusSold

	log.Info().Str("listing_id", id.String()).Msg("listing marked sold")
	return l, nil
}

// Get returns a listing by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrListingNotFound
	}
	return l, nil
}

// ListPending returns the FIFO admin review queue
func (s *Service) ListPending(ctx context.Context) ([]*Listing, error) {
	return s.repo.ListPending(ctx)
}

// ListMarket returns approved listings for buyers plus the total count
// for pagination
func (s *Service) ListMarket(ctx context.Context, limit, offset int) ([]*Listing, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	listings, err := s.repo.ListApproved(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountApproved(ctx)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// ListMine returns all listings of a seller
func (s *Service) ListMine(ctx context.Context, sellerID uuid.UUID) ([]*Listing, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}

// AttachScreenshot uploads a screenshot and queues thumbnail processing
func (s *Service) AttachScreenshot(ctx context.Context, sellerID, listingID uuid.UUID, reader io.Reader, mimeType string) (*Screenshot, error) {
	l, err := s.repo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrListingNotFound
	}
	if l.SellerID != sellerID {
		return nil, ErrNotOwner
	}

	shot := &Screenshot{
		ID:            uuid.New(),
		ListingID:     listingID,
		MimeType:      mimeType,
		ProcessStatus: ScreenshotPending,
	}
	shot.StorageKey = fmt.Sprintf("listings/%s/%s%s", listingID, shot.ID, extensionFor(mimeType))

	if err := s.store.Put(ctx, shot.StorageKey, reader, mimeType); err != nil {
		return nil, fmt.Errorf("screenshot upload: %w", err)
	}
	if err := s.repo.AddScreenshot(ctx, shot); err != nil {
		return nil, err
	}

	log.Info().
		Str("listing_id", listingID.String()).
		Str("key", shot.StorageKey).
		Msg("screenshot attached")

	shot.URL = s.store.GetURL(shot.StorageKey)
	return shot, nil
}

// Screenshots returns all screenshots for a listing with public URLs
func (s *Service) Screenshots(ctx context.Context, listingID uuid.UUID) ([]*Screenshot, error) {
	shots, err := s.repo.ListScreenshots(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		for _, shot := range shots {
			shot.URL = s.store.GetURL(shot.StorageKey)
		}
	}
	return shots, nil
}

// notifySeller looks up the seller and dispatches in-app + email
// notifications. Strictly best-effort.
func (s *Service) notifySeller(ctx context.Context, l *Listing, kind, title, body string, sendEmail func(*user.User)) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, l.SellerID, kind, title, body)
	}
	if s.emailSvc == nil || sendEmail == nil {
		return
	}
	u, err := s.userRepo.GetByID(ctx, l.SellerID)
	if err != nil || u == nil {
		log.Warn().Err(err).Str("seller_id", l.SellerID.String()).Msg("seller lookup for notification failed")
		return
	}
	sendEmail(u)
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func formatAmount(v int64) string {
	return fmt.Sprintf("%d", v)
}
