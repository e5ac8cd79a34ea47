package payout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gamebay/gamebay-api/internal/domain/user"
	"github.com/gamebay/gamebay-api/internal/pkg/email"
	"github.com/gamebay/gamebay-api/internal/pkg/ledger"
)

// Notifier delivers in-app notifications. Best-effort.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, title, body string)
}

type Service struct {
	repo        Repository
	userRepo    user.Repository
	emailSvc    *email.Service
	notifier    Notifier
	frontendURL string
}

// NewService creates payout service
func NewService(repo Repository, userRepo user.Repository, emailSvc *email.Service, notifier Notifier, frontendURL string) *Service {
	return &Service{
		repo:        repo,
		userRepo:    userRepo,
		emailSvc:    emailSvc,
		notifier:    notifier,
		frontendURL: frontendURL,
	}
}

// UnpaidEarnings is the seller-facing figure: the seller's share of
// everything they sold, minus what they confirmed receiving. Payouts
// still in flight (paid but unconfirmed) count as unpaid.
func (s *Service) UnpaidEarnings(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	sold, err := s.repo.SumSoldBySeller(ctx, sellerID)
	if err != nil {
		return 0, err
	}
	received, err := s.repo.SumReceivedBySeller(ctx, sellerID)
	if err != nil {
		return 0, err
	}
	earnings := ledger.NetPayoutShare(sold) - received
	if earnings < 0 {
		earnings = 0
	}
	return earnings, nil
}

// RunMonthlySettlement creates one payout per seller for the period now
// falls in. A seller who already has a payout for the period is
// skipped, so reruns are safe. One seller failing does not stop the
// run. Returns how many payouts were created.
func (s *Service) RunMonthlySettlement(ctx context.Context, now time.Time) (int, error) {
	month := int(now.Month())
	year := now.Year()

	sellers, err := s.repo.ListSellersWithSold(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, sellerID := range sellers {
		ok, err := s.settleSeller(ctx, sellerID, month, year)
		if err != nil {
			log.Error().Err(err).Str("seller_id", sellerID.String()).Int("month", month).Int("year", year).Msg("seller settlement failed")
			continue
		}
		if ok {
			created++
		}
	}

	log.Info().Int("month", month).Int("year", year).Int("sellers", len(sellers)).Int("created", created).Msg("monthly settlement finished")
	return created, nil
}

// settleSeller owes the seller their share of lifetime sales minus
// everything already invoiced, in any payout status. This keeps
// consecutive runs from billing the same sale twice even while earlier
// payouts are still unconfirmed.
func (s *Service) settleSeller(ctx context.Context, sellerID uuid.UUID, month, year int) (bool, error) {
	exists, err := s.repo.ExistsForPeriod(ctx, sellerID, month, year)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	sold, err := s.repo.SumSoldBySeller(ctx, sellerID)
	if err != nil {
		return false, err
	}
	invoiced, err := s.repo.SumInvoicedBySeller(ctx, sellerID)
	if err != nil {
		return false, err
	}

	owed := ledger.NetPayoutShare(sold) - invoiced
	if owed <= 0 {
		return false, nil
	}

	p := &Payout{
		ID:          uuid.New(),
		SellerID:    sellerID,
		Amount:      owed,
		Status:      StatusNeedsPayment,
		PeriodMonth: month,
		PeriodYear:  year,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return false, err
	}

	s.notifyUser(ctx, sellerID, "payout_created", "Đối soát tháng "+fmt.Sprintf("%d/%d", month, year),
		"Khoản thanh toán "+formatAmount(owed)+" đang chờ chuyển khoản.")
	return true, nil
}

// MarkPaid records that an admin sent the bank transfer.
func (s *Service) MarkPaid(ctx context.Context, adminID, id uuid.UUID) (*Payout, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPayoutNotFound
	}
	if p.Status != StatusNeedsPayment {
		return nil, ErrInvalidState
	}

	ok, err := s.repo.MarkPaid(ctx, id, adminID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}

	log.Info().Str("payout_id", id.String()).Str("seller_id", p.SellerID.String()).Str("admin_id", adminID.String()).Int64("amount", p.Amount).Msg("payout marked paid")
	s.notifyUser(ctx, p.SellerID, "payout_paid", "Đã chuyển khoản",
		"Khoản thanh toán "+formatAmount(p.Amount)+" đã được chuyển. Vui lòng xác nhận khi nhận được.")
	if s.emailSvc != nil {
		if u, err := s.userRepo.GetByID(ctx, p.SellerID); err == nil && u != nil {
			s.emailSvc.SendPayoutPaid(u.Email, u.DisplayName, formatAmount(p.Amount),
				p.PeriodMonth, p.PeriodYear, s.frontendURL+"/payouts/"+p.ID.String())
		}
	}
	return s.repo.GetByID(ctx, id)
}

// MarkReceived is the seller confirming the transfer arrived.
func (s *Service) MarkReceived(ctx context.Context, sellerID, id uuid.UUID) (*Payout, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPayoutNotFound
	}
	if p.SellerID != sellerID {
		return nil, ErrNotOwner
	}
	if p.Status != StatusPaid {
		return nil, ErrInvalidState
	}

	ok, err := s.repo.MarkReceived(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}

	log.Info().Str("payout_id", id.String()).Str("seller_id", sellerID.String()).Msg("payout confirmed received")
	s.sendReceivedToAdmins(ctx, p)
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Payout, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPayoutNotFound
	}
	return p, nil
}

func (s *Service) ListMine(ctx context.Context, sellerID uuid.UUID) ([]*Payout, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}

func (s *Service) ListByStatus(ctx context.Context, status Status) ([]*Payout, error) {
	return s.repo.ListByStatus(ctx, status)
}

func (s *Service) sendReceivedToAdmins(ctx context.Context, p *Payout) {
	seller, err := s.userRepo.GetByID(ctx, p.SellerID)
	if err != nil || seller == nil {
		return
	}
	admins, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("admin lookup for payout notification failed")
		return
	}
	for _, a := range admins {
		s.notifyUser(ctx, a.ID, "payout_received", "Người bán đã xác nhận",
			seller.Email+" đã nhận "+formatAmount(p.Amount)+".")
		if s.emailSvc != nil {
			s.emailSvc.SendPayoutReceived(a.Email, a.DisplayName, seller.Email,
				formatAmount(p.Amount), p.PeriodMonth, p.PeriodYear)
		}
	}
}

func (s *Service) notifyUser(ctx context.Context, userID uuid.UUID, kind, title, body string) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, userID, kind, title, body)
	}
}

func formatAmount(v int64) string {
	return fmt.Sprintf("%d", v)
}
