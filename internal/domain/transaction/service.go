package transaction

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gamebay/gamebay-api/internal/domain/listing"
	"github.com/gamebay/gamebay-api/internal/domain/user"
	"github.com/gamebay/gamebay-api/internal/domain/wallet"
	"github.com/gamebay/gamebay-api/internal/pkg/email"
	"github.com/gamebay/gamebay-api/internal/pkg/ledger"
	"github.com/gamebay/gamebay-api/internal/pkg/payos"
)

// Top-up bounds in the smallest currency unit.
const (
	MinTopUp = 10_000
	MaxTopUp = 10_000_000
)

// Gateway is the payment-link surface the service needs from payOS.
type Gateway interface {
	CreatePayment(ctx context.Context, req payos.CreatePaymentRequest) (*payos.CreatePaymentResponse, error)
	GetPaymentStatus(ctx context.Context, orderCode int64) (*payos.PaymentStatusResponse, error)
	CancelPayment(ctx context.Context, orderCode int64, reason string) error
}

// Notifier delivers in-app notifications. Best-effort.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, title, body string)
}

type Service struct {
	repo        Repository
	listingRepo listing.Repository
	userRepo    user.Repository
	wallet      wallet.Balances
	gateway     Gateway
	emailSvc    *email.Service
	notifier    Notifier
}

// NewService creates transaction service
func NewService(repo Repository, listingRepo listing.Repository, userRepo user.Repository, balances wallet.Balances, gateway Gateway, emailSvc *email.Service, notifier Notifier) *Service {
	return &Service{
		repo:        repo,
		listingRepo: listingRepo,
		userRepo:    userRepo,
		wallet:      balances,
		gateway:     gateway,
		emailSvc:    emailSvc,
		notifier:    notifier,
	}
}

// CreatePurchase opens an order for an approved listing. Wallet orders
// settle immediately; gateway orders return a payment link and wait for
// the webhook.
func (s *Service) CreatePurchase(ctx context.Context, buyerID uuid.UUID, req *CreatePurchaseRequest) (*Transaction, error) {
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return nil, listing.ErrListingNotFound
	}

	l, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, listing.ErrListingNotFound
	}
	if l.Status != listing.StatusApproved {
		return nil, ErrListingNotAvailable
	}
	if l.SellerID == buyerID {
		return nil, ErrSelfPurchase
	}

	orderCode, err := s.repo.NextOrderCode(ctx)
	if err != nil {
		return nil, err
	}

	t := &Transaction{
		ID:            uuid.New(),
		Type:          TypePurchase,
		Status:        StatusPending,
		BuyerID:       buyerID,
		SellerID:      uuid.NullUUID{UUID: l.SellerID, Valid: true},
		ListingID:     uuid.NullUUID{UUID: l.ID, Valid: true},
		Amount:        l.Price,
		Commission:    ledger.Commission(l.Price),
		Total:         ledger.Total(l.Price),
		PaymentMethod: PaymentMethod(req.PaymentMethod),
		OrderCode:     orderCode,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	switch t.PaymentMethod {
	case MethodWallet:
		return s.settleWalletPurchase(ctx, t, l)
	default:
		return s.openPaymentLink(ctx, t, fmt.Sprintf("GAMEBAY ACC %d", orderCode))
	}
}

// settleWalletPurchase debits the buyer and completes the order in one
// go. If the listing was sold in between, the debit is compensated with
// a refund entry under the same reference.
func (s *Service) settleWalletPurchase(ctx context.Context, t *Transaction, l *listing.Listing) (*Transaction, error) {
	ref := t.ID.String()
	if err := s.wallet.Debit(ctx, t.BuyerID, t.Total, wallet.EntryPurchase, ref); err != nil {
		if derr := s.repo.Delete(ctx, t.ID); derr != nil {
			log.Error().Err(derr).Str("transaction_id", ref).Msg("cleanup of unpaid order failed")
		}
		return nil, err
	}

	sold, err := s.listingRepo.MarkSold(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	if !sold {
		if rerr := s.wallet.Credit(ctx, t.BuyerID, t.Total, wallet.EntryRefund, ref); rerr != nil {
			log.Error().Err(rerr).Str("transaction_id", ref).Msg("refund after lost listing race failed")
		}
		if _, rerr := s.repo.Reject(ctx, t.ID, StatusPending, "listing no longer available", uuid.NullUUID{}); rerr != nil {
			log.Error().Err(rerr).Str("transaction_id", ref).Msg("reject after lost listing race failed")
		}
		return nil, ErrListingNotAvailable
	}

	if _, err := s.repo.Complete(ctx, t.ID, StatusPending, uuid.NullUUID{}); err != nil {
		return nil, err
	}

	log.Info().Str("transaction_id", ref).Str("buyer_id", t.BuyerID.String()).Int64("total", t.Total).Msg("wallet purchase completed")
	s.notifyUser(ctx, l.SellerID, "listing_sold", "Tài khoản đã bán", "Tài khoản "+l.RankLabel+" của bạn đã được bán.")
	return s.repo.GetByID(ctx, t.ID)
}

// openPaymentLink asks the gateway for a checkout link. A gateway
// failure aborts the order entirely so the buyer can retry with a
// clean slate.
func (s *Service) openPaymentLink(ctx context.Context, t *Transaction, description string) (*Transaction, error) {
	link, err := s.gateway.CreatePayment(ctx, payos.CreatePaymentRequest{
		OrderCode:   t.OrderCode,
		Amount:      t.Total,
		Description: payos.TruncateDescription(description),
	})
	if err != nil {
		if derr := s.repo.Delete(ctx, t.ID); derr != nil {
			log.Error().Err(derr).Str("transaction_id", t.ID.String()).Msg("cleanup of unpaid order failed")
		}
		log.Error().Err(err).Int64("order_code", t.OrderCode).Msg("gateway payment creation failed")
		return nil, ErrGatewayFailure
	}

	if err := s.repo.SetPaymentLink(ctx, t.ID, link.PaymentLinkID, link.CheckoutURL, link.QRCode); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, t.ID)
}

// CreateTopUp opens a wallet top-up order. Gateway top-ups complete on
// webhook confirmation, manual ones wait for admin review.
func (s *Service) CreateTopUp(ctx context.Context, userID uuid.UUID, req *CreateTopUpRequest) (*Transaction, error) {
	if req.Amount < MinTopUp || req.Amount > MaxTopUp {
		return nil, ErrAmountOutOfRange
	}

	orderCode, err := s.repo.NextOrderCode(ctx)
	if err != nil {
		return nil, err
	}

	t := &Transaction{
		ID:            uuid.New(),
		Type:          TypeTopUp,
		Status:        StatusPending,
		BuyerID:       userID,
		Amount:        req.Amount,
		Commission:    0,
		Total:         req.Amount,
		PaymentMethod: PaymentMethod(req.PaymentMethod),
		OrderCode:     orderCode,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	if t.PaymentMethod == MethodGateway {
		return s.openPaymentLink(ctx, t, fmt.Sprintf("GAMEBAY NAP %d", orderCode))
	}
	return t, nil
}

// ConfirmGatewayPayment applies a gateway status to the order behind
// orderCode. Paid purchases advance to verified, paid top-ups complete
// and credit the wallet. Cancelled or expired links reject the order.
// Replays of an already-applied status are no-ops.
func (s *Service) ConfirmGatewayPayment(ctx context.Context, orderCode int64, gatewayStatus string) error {
	t, err := s.repo.GetByOrderCode(ctx, orderCode)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrTransactionNotFound
	}
	if t.Status != StatusPending {
		return nil
	}

	switch gatewayStatus {
	case payos.StatusPaid:
		return s.applyPaid(ctx, t)
	case payos.StatusCancelled, payos.StatusExpired:
		if _, err := s.repo.Reject(ctx, t.ID, StatusPending, "payment "+gatewayStatus, uuid.NullUUID{}); err != nil {
			return err
		}
		log.Info().Int64("order_code", orderCode).Str("gateway_status", gatewayStatus).Msg("gateway order rejected")
		return nil
	default:
		return nil
	}
}

func (s *Service) applyPaid(ctx context.Context, t *Transaction) error {
	switch t.Type {
	case TypeTopUp:
		// Credit before completing: the credit is idempotent by
		// (kind, reference_id), so a retry after a failed Complete
		// cannot double-pay, while the reverse order would strand the
		// money on a terminal order.
		if err := s.wallet.Credit(ctx, t.BuyerID, t.Amount, wallet.EntryTopUp, t.ID.String()); err != nil {
			return err
		}
		ok, err := s.repo.Complete(ctx, t.ID, StatusPending, uuid.NullUUID{})
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		log.Info().Str("transaction_id", t.ID.String()).Int64("amount", t.Amount).Msg("gateway topup completed")
		s.sendTopUpApproved(ctx, t)
		return nil
	default:
		ok, err := s.repo.MarkVerified(ctx, t.ID)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		log.Info().Str("transaction_id", t.ID.String()).Int64("total", t.Total).Msg("gateway purchase verified")
		s.notifyUser(ctx, t.BuyerID, "purchase_verified", "Thanh toán thành công",
			"Đơn hàng của bạn đã được thanh toán và đang chờ bàn giao tài khoản.")
		if u, err := s.userRepo.GetByID(ctx, t.BuyerID); err == nil && u != nil && s.emailSvc != nil {
			s.emailSvc.SendPurchaseVerified(u.Email, u.DisplayName, formatAmount(t.Total), s.rankLabelFor(ctx, t))
		}
		s.notifyAdmins(ctx, "purchase_verified", "Đơn hàng chờ bàn giao",
			"Đơn hàng "+t.ID.String()+" đã thanh toán, chờ bàn giao tài khoản.")
		return nil
	}
}

// SyncGatewayStatus polls the gateway for a pending order and applies
// the result. Fallback for missed webhooks.
func (s *Service) SyncGatewayStatus(ctx context.Context, buyerID, id uuid.UUID) (*Transaction, error) {
	t, err := s.getOwned(ctx, buyerID, id)
	if err != nil {
		return nil, err
	}
	if t.Status == StatusPending && t.PaymentLinkID.Valid {
		status, err := s.gateway.GetPaymentStatus(ctx, t.OrderCode)
		if err != nil {
			return nil, ErrGatewayFailure
		}
		if err := s.ConfirmGatewayPayment(ctx, t.OrderCode, status.Status); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(ctx, id)
}

// CompletePurchase is the admin hand-over step: the account credentials
// were delivered, the verified order completes and the listing is sold.
func (s *Service) CompletePurchase(ctx context.Context, adminID, id uuid.UUID) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTransactionNotFound
	}
	if t.Type != TypePurchase || t.Status != StatusVerified {
		return nil, ErrInvalidState
	}

	ok, err := s.repo.Complete(ctx, id, StatusVerified, uuid.NullUUID{UUID: adminID, Valid: true})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}

	if t.ListingID.Valid {
		if _, err := s.listingRepo.MarkSold(ctx, t.ListingID.UUID); err != nil {
			log.Error().Err(err).Str("listing_id", t.ListingID.UUID.String()).Msg("mark sold on completed purchase failed")
		}
	}

	log.Info().Str("transaction_id", id.String()).Str("admin_id", adminID.String()).Msg("purchase completed")
	s.notifyUser(ctx, t.BuyerID, "purchase_completed", "Bàn giao hoàn tất", "Tài khoản đã được bàn giao cho bạn.")
	if t.SellerID.Valid {
		s.notifyUser(ctx, t.SellerID.UUID, "listing_sold", "Tài khoản đã bán", "Tài khoản của bạn đã được bán và bàn giao.")
	}
	return s.repo.GetByID(ctx, id)
}

// ApproveTopUp confirms a manual top-up and credits the wallet.
func (s *Service) ApproveTopUp(ctx context.Context, adminID, id uuid.UUID) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTransactionNotFound
	}
	if t.Type != TypeTopUp || t.Status != StatusPending {
		return nil, ErrInvalidState
	}

	// Credit first so a failure leaves the order pending and retryable;
	// the (kind, reference_id) idempotency makes the retry safe.
	if err := s.wallet.Credit(ctx, t.BuyerID, t.Amount, wallet.EntryTopUp, t.ID.String()); err != nil {
		return nil, err
	}

	ok, err := s.repo.Complete(ctx, id, StatusPending, uuid.NullUUID{UUID: adminID, Valid: true})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}

	log.Info().Str("transaction_id", id.String()).Str("admin_id", adminID.String()).Int64("amount", t.Amount).Msg("manual topup approved")
	s.sendTopUpApproved(ctx, t)
	return s.repo.GetByID(ctx, id)
}

// RejectTopUp declines a manual top-up.
func (s *Service) RejectTopUp(ctx context.Context, adminID, id uuid.UUID, reason string) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTransactionNotFound
	}
	if t.Type != TypeTopUp || t.Status != StatusPending {
		return nil, ErrInvalidState
	}

	ok, err := s.repo.Reject(ctx, id, StatusPending, reason, uuid.NullUUID{UUID: adminID, Valid: true})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}

	log.Info().Str("transaction_id", id.String()).Str("admin_id", adminID.String()).Msg("manual topup rejected")
	s.notifyUser(ctx, t.BuyerID, "topup_rejected", "Nạp tiền bị từ chối", reason)
	if u, err := s.userRepo.GetByID(ctx, t.BuyerID); err == nil && u != nil && s.emailSvc != nil {
		s.emailSvc.SendTopUpRejected(u.Email, u.DisplayName, formatAmount(t.Amount), reason)
	}
	return s.repo.GetByID(ctx, id)
}

// RejectPurchase declines an order. A verified order was already paid
// through the gateway, so rejecting it refunds the buyer's wallet.
func (s *Service) RejectPurchase(ctx context.Context, adminID, id uuid.UUID, reason string) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTransactionNotFound
	}
	if t.Type != TypePurchase {
		return nil, ErrInvalidState
	}

	switch t.Status {
	case StatusPending:
		ok, err := s.repo.Reject(ctx, id, StatusPending, reason, uuid.NullUUID{UUID: adminID, Valid: true})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInvalidState
		}
		if t.PaymentLinkID.Valid {
			if err := s.gateway.CancelPayment(ctx, t.OrderCode, reason); err != nil {
				log.Warn().Err(err).Int64("order_code", t.OrderCode).Msg("payment link cancellation failed")
			}
		}
	case StatusVerified:
		ok, err := s.repo.Reject(ctx, id, StatusVerified, reason, uuid.NullUUID{UUID: adminID, Valid: true})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInvalidState
		}
		if err := s.wallet.Credit(ctx, t.BuyerID, t.Total, wallet.EntryRefund, t.ID.String()); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidState
	}

	log.Info().Str("transaction_id", id.String()).Str("admin_id", adminID.String()).Msg("purchase rejected")
	s.notifyUser(ctx, t.BuyerID, "purchase_rejected", "Đơn hàng bị từ chối", reason)
	return s.repo.GetByID(ctx, id)
}

// Get returns a transaction for its buyer. Admins bypass the owner
// check at the handler level.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTransactionNotFound
	}
	return t, nil
}

func (s *Service) ListMine(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]*Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByBuyer(ctx, buyerID, limit, offset)
}

func (s *Service) ListPendingTopUps(ctx context.Context) ([]*Transaction, error) {
	return s.repo.ListPendingTopUps(ctx)
}

func (s *Service) getOwned(ctx context.Context, buyerID, id uuid.UUID) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTransactionNotFound
	}
	if t.BuyerID != buyerID {
		return nil, ErrNotBuyer
	}
	return t, nil
}

func (s *Service) sendTopUpApproved(ctx context.Context, t *Transaction) {
	s.notifyUser(ctx, t.BuyerID, "topup_approved", "Nạp tiền thành công",
		"Ví của bạn đã được cộng "+formatAmount(t.Amount)+".")
	if s.emailSvc == nil {
		return
	}
	u, err := s.userRepo.GetByID(ctx, t.BuyerID)
	if err != nil || u == nil {
		return
	}
	balance, err := s.wallet.GetBalance(ctx, t.BuyerID)
	if err != nil {
		balance = 0
	}
	s.emailSvc.SendTopUpApproved(u.Email, u.DisplayName, formatAmount(t.Amount), formatAmount(balance))
}

func (s *Service) notifyUser(ctx context.Context, userID uuid.UUID, kind, title, body string) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, userID, kind, title, body)
	}
}

func (s *Service) notifyAdmins(ctx context.Context, kind, title, body string) {
	if s.notifier == nil {
		return
	}
	admins, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("admin lookup for notification failed")
		return
	}
	for _, a := range admins {
		s.notifier.Notify(ctx, a.ID, kind, title, body)
	}
}

func (s *Service) rankLabelFor(ctx context.Context, t *Transaction) string {
	if !t.ListingID.Valid {
		return ""
	}
	l, err := s.listingRepo.GetByID(ctx, t.ListingID.UUID)
	if err != nil || l == nil {
		return ""
	}
	return l.RankLabel
}

func formatAmount(v int64) string {
	return fmt.Sprintf("%d", v)
}
