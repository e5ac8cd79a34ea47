package transaction

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gamebay/gamebay-api/internal/domain/listing"
	"github.com/gamebay/gamebay-api/internal/domain/user"
	"github.com/gamebay/gamebay-api/internal/domain/wallet"
	"github.com/gamebay/gamebay-api/internal/pkg/payos"
)

type txnRepoStub struct {
	txns      map[uuid.UUID]*Transaction
	nextCode  int64
	deleted   []uuid.UUID
	linkCalls int
}

func newTxnRepoStub() *txnRepoStub {
	return &txnRepoStub{txns: make(map[uuid.UUID]*Transaction)}
}

func (r *txnRepoStub) Create(_ context.Context, t *Transaction) error {
	cp := *t
	cp.CreatedAt = time.Now()
	r.txns[t.ID] = &cp
	return nil
}

func (r *txnRepoStub) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.txns, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *txnRepoStub) GetByID(_ context.Context, id uuid.UUID) (*Transaction, error) {
	t, ok := r.txns[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *txnRepoStub) GetByOrderCode(_ context.Context, orderCode int64) (*Transaction, error) {
	for _, t := range r.txns {
		if t.OrderCode == orderCode {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *txnRepoStub) ListByBuyer(_ context.Context, buyerID uuid.UUID, _, _ int) ([]*Transaction, error) {
	var out []*Transaction
	for _, t := range r.txns {
		if t.BuyerID == buyerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *txnRepoStub) ListPendingTopUps(context.Context) ([]*Transaction, error) {
	var out []*Transaction
	for _, t := range r.txns {
		if t.Type == TypeTopUp && t.PaymentMethod == MethodManual && t.Status == StatusPending {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *txnRepoStub) NextOrderCode(context.Context) (int64, error) {
	r.nextCode++
	return r.nextCode, nil
}

func (r *txnRepoStub) SetPaymentLink(_ context.Context, id uuid.UUID, linkID, checkoutURL, qrCode string) error {
	r.linkCalls++
	t := r.txns[id]
	t.PaymentLinkID.String, t.PaymentLinkID.Valid = linkID, true
	t.CheckoutURL.String, t.CheckoutURL.Valid = checkoutURL, true
	t.QRCode.String, t.QRCode.Valid = qrCode, true
	return nil
}

func (r *txnRepoStub) MarkVerified(_ context.Context, id uuid.UUID) (bool, error) {
	t, ok := r.txns[id]
	if !ok || t.Status != StatusPending {
		return false, nil
	}
	t.Status = StatusVerified
	return true, nil
}

func (r *txnRepoStub) Complete(_ context.Context, id uuid.UUID, from Status, approvedBy uuid.NullUUID) (bool, error) {
	t, ok := r.txns[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = StatusCompleted
	t.ApprovedBy = approvedBy
	return true, nil
}

func (r *txnRepoStub) Reject(_ context.Context, id uuid.UUID, from Status, reason string, rejectedBy uuid.NullUUID) (bool, error) {
	t, ok := r.txns[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = StatusRejected
	t.RejectionReason.String, t.RejectionReason.Valid = reason, true
	t.ApprovedBy = rejectedBy
	return true, nil
}

type listingRepoStub struct {
	listings map[uuid.UUID]*listing.Listing
}

func newListingRepoStub(ls ...*listing.Listing) *listingRepoStub {
	r := &listingRepoStub{listings: make(map[uuid.UUID]*listing.Listing)}
	for _, l := range ls {
		r.listings[l.ID] = l
	}
	return r
}

func (r *listingRepoStub) Create(_ context.Context, l *listing.Listing) error {
	r.listings[l.ID] = l
	return nil
}

func (r *listingRepoStub) GetByID(_ context.Context, id uuid.UUID) (*listing.Listing, error) {
	l, ok := r.listings[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *listingRepoStub) ListPending(context.Context) ([]*listing.Listing, error) { return nil, nil }
func (r *listingRepoStub) CountApproved(context.Context) (int, error)              { return 0, nil }
func (r *listingRepoStub) ListApproved(context.Context, int, int) ([]*listing.Listing, error) {
	return nil, nil
}
func (r *listingRepoStub) ListBySeller(context.Context, uuid.UUID) ([]*listing.Listing, error) {
	return nil, nil
}
func (r *listingRepoStub) Approve(context.Context, uuid.UUID) (bool, error) { return false, nil }
func (r *listingRepoStub) Reject(context.Context, uuid.UUID, string) (bool, error) {
	return false, nil
}

func (r *listingRepoStub) MarkSold(_ context.Context, id uuid.UUID) (bool, error) {
	l, ok := r.listings[id]
	if !ok || l.Status != listing.StatusApproved {
		return false, nil
	}
	l.Status = listing.StatusSold
	return true, nil
}

func (r *listingRepoStub) AddScreenshot(context.Context, *listing.Screenshot) error { return nil }
func (r *listingRepoStub) ListScreenshots(context.Context, uuid.UUID) ([]*listing.Screenshot, error) {
	return nil, nil
}

type userRepoStub struct{}

func (userRepoStub) Create(context.Context, *user.User) error { return nil }
func (userRepoStub) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	return &user.User{ID: id, Email: "buyer@test.com", DisplayName: "Buyer"}, nil
}
func (userRepoStub) GetByEmail(context.Context, string) (*user.User, error) { return nil, nil }
func (userRepoStub) ListAdmins(context.Context) ([]*user.User, error)       { return nil, nil }

type walletStub struct {
	balances    map[uuid.UUID]int64
	entries     map[string]int64
	failCredits int
}

func newWalletStub() *walletStub {
	return &walletStub{balances: make(map[uuid.UUID]int64), entries: make(map[string]int64)}
}

func (w *walletStub) GetBalance(_ context.Context, userID uuid.UUID) (int64, error) {
	return w.balances[userID], nil
}

func (w *walletStub) Credit(_ context.Context, userID uuid.UUID, amount int64, kind wallet.EntryKind, ref string) error {
	if w.failCredits > 0 {
		w.failCredits--
		return errors.New("wallet unavailable")
	}
	key := string(kind) + ":" + ref
	if _, ok := w.entries[key]; ok {
		return nil
	}
	w.entries[key] = amount
	w.balances[userID] += amount
	return nil
}

func (w *walletStub) Debit(_ context.Context, userID uuid.UUID, amount int64, kind wallet.EntryKind, ref string) error {
	key := string(kind) + ":" + ref
	if _, ok := w.entries[key]; ok {
		return nil
	}
	if w.balances[userID] < amount {
		return wallet.ErrInsufficientBalance
	}
	w.entries[key] = -amount
	w.balances[userID] -= amount
	return nil
}

type gatewayStub struct {
	fail      bool
	created   []payos.CreatePaymentRequest
	status    string
	cancelled []int64
}

func (g *gatewayStub) CreatePayment(_ context.Context, req payos.CreatePaymentRequest) (*payos.CreatePaymentResponse, error) {
	if g.fail {
		return nil, errors.New("gateway down")
	}
	g.created = append(g.created, req)
	return &payos.CreatePaymentResponse{
		PaymentLinkID: fmt.Sprintf("link-%d", req.OrderCode),
		CheckoutURL:   fmt.Sprintf("https://pay.test/%d", req.OrderCode),
		QRCode:        "qr-data",
		Status:        payos.StatusPending,
	}, nil
}

func (g *gatewayStub) GetPaymentStatus(_ context.Context, orderCode int64) (*payos.PaymentStatusResponse, error) {
	if g.fail {
		return nil, errors.New("gateway down")
	}
	return &payos.PaymentStatusResponse{OrderCode: orderCode, Status: g.status}, nil
}

func (g *gatewayStub) CancelPayment(_ context.Context, orderCode int64, _ string) error {
	g.cancelled = append(g.cancelled, orderCode)
	return nil
}

type fixture struct {
	svc      *Service
	repo     *txnRepoStub
	listings *listingRepoStub
	wallet   *walletStub
	gateway  *gatewayStub
}

func newFixture(ls ...*listing.Listing) *fixture {
	f := &fixture{
		repo:     newTxnRepoStub(),
		listings: newListingRepoStub(ls...),
		wallet:   newWalletStub(),
		gateway:  &gatewayStub{},
	}
	f.svc = NewService(f.repo, f.listings, userRepoStub{}, f.wallet, f.gateway, nil, nil)
	return f
}

func approvedListing(price int64) *listing.Listing {
	return &listing.Listing{
		ID:        uuid.New(),
		SellerID:  uuid.New(),
		RankLabel: "Diamond",
		Price:     price,
		Status:    listing.StatusApproved,
	}
}

func TestWalletPurchaseCompletes(t *testing.T) {
	l := approvedListing(1000)
	f := newFixture(l)
	buyer := uuid.New()
	f.wallet.balances[buyer] = 2000

	txn, err := f.svc.CreatePurchase(context.Background(), buyer, &CreatePurchaseRequest{
		ListingID:     l.ID.String(),
		PaymentMethod: "wallet",
	})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	if txn.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", txn.Status)
	}
	if txn.Amount != 1000 || txn.Commission != 100 || txn.Total != 1100 {
		t.Fatalf("wrong money split: amount=%d commission=%d total=%d", txn.Amount, txn.Commission, txn.Total)
	}
	if f.wallet.balances[buyer] != 900 {
		t.Fatalf("expected buyer balance 900, got %d", f.wallet.balances[buyer])
	}
	if f.listings.listings[l.ID].Status != listing.StatusSold {
		t.Fatal("listing should be sold")
	}
}

func TestWalletPurchaseInsufficientBalance(t *testing.T) {
	l := approvedListing(1000)
	f := newFixture(l)
	buyer := uuid.New()
	f.wallet.balances[buyer] = 1000 // total is 1100 with commission

	_, err := f.svc.CreatePurchase(context.Background(), buyer, &CreatePurchaseRequest{
		ListingID:     l.ID.String(),
		PaymentMethod: "wallet",
	})
	if !errors.Is(err, wallet.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if len(f.repo.deleted) != 1 {
		t.Fatal("unpayable order should be removed")
	}
	if f.listings.listings[l.ID].Status != listing.StatusApproved {
		t.Fatal("listing must stay approved")
	}
}

func TestSelfPurchaseRejected(t *testing.T) {
	l := approvedListing(1000)
	f := newFixture(l)

	_, err := f.svc.CreatePurchase(context.Background(), l.SellerID, &CreatePurchaseRequest{
		ListingID:     l.ID.String(),
		PaymentMethod: "wallet",
	})
	if !errors.Is(err, ErrSelfPurchase) {
		t.Fatalf("expected ErrSelfPurchase, got %v", err)
	}
	if len(f.repo.txns) != 0 {
		t.Fatal("no order should be created")
	}
}

func TestPurchaseRequiresApprovedListing(t *testing.T) {
	for _, status := range []listing.Status{listing.StatusPending, listing.StatusRejected, listing.StatusSold} {
		l := approvedListing(1000)
		l.Status = status
		f := newFixture(l)

		_, err := f.svc.CreatePurchase(context.Background(), uuid.New(), &CreatePurchaseRequest{
			ListingID:     l.ID.String(),
			PaymentMethod: "wallet",
		})
		if !errors.Is(err, ErrListingNotAvailable) {
			t.Errorf("status %s: expected ErrListingNotAvailable, got %v", status, err)
		}
	}
}

func TestGatewayPurchaseOpensPaymentLink(t *testing.T) {
	l := approvedListing(500000)
	f := newFixture(l)
	buyer := uuid.New()

	txn, err := f.svc.CreatePurchase(context.Background(), buyer, &CreatePurchaseRequest{
		ListingID:     l.ID.String(),
		PaymentMethod: "gateway",
	})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	if txn.Status != StatusPending {
		t.Fatalf("expected pending, got %s", txn.Status)
	}
	if !txn.CheckoutURL.Valid || !txn.PaymentLinkID.Valid {
		t.Fatal("payment link fields should be set")
	}
	if len(f.gateway.created) != 1 {
		t.Fatalf("expected 1 gateway call, got %d", len(f.gateway.created))
	}
	req := f.gateway.created[0]
	if req.Amount != 550000 {
		t.Fatalf("gateway should charge total, got %d", req.Amount)
	}
	if len(req.Description) > payos.MaxDescriptionLen {
		t.Fatalf("description too long: %q", req.Description)
	}
	if f.listings.listings[l.ID].Status != listing.StatusApproved {
		t.Fatal("listing must stay approved until hand-over")
	}
}

func TestGatewayFailureAbortsOrder(t *testing.T) {
	l := approvedListing(1000)
	f := newFixture(l)
	f.gateway.fail = true

	_, err := f.svc.CreatePurchase(context.Background(), uuid.New(), &CreatePurchaseRequest{
		ListingID:     l.ID.String(),
		PaymentMethod: "gateway",
	})
	if !errors.Is(err, ErrGatewayFailure) {
		t.Fatalf("expected ErrGatewayFailure, got %v", err)
	}
	if len(f.repo.txns) != 0 {
		t.Fatal("aborted order must not linger")
	}
}

func TestWebhookPaidVerifiesPurchase(t *testing.T) {
	l := approvedListing(1000)
	f := newFixture(l)
	buyer := uuid.New()

	txn, err := f.svc.CreatePurchase(context.Background(), buyer, &CreatePurchaseRequest{
		ListingID:     l.ID.String(),
		PaymentMethod: "gateway",
	})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	if err := f.svc.ConfirmGatewayPayment(context.Background(), txn.OrderCode, payos.StatusPaid); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	got, _ := f.repo.GetByID(context.Background(), txn.ID)
	if got.Status != StatusVerified {
		t.Fatalf("expected verified, got %s", got.Status)
	}
	if f.listings.listings[l.ID].Status != listing.StatusApproved {
		t.Fatal("listing sells only after admin hand-over")
	}

	// replay is a no-op
	if err := f.svc.ConfirmGatewayPayment(context.Background(), txn.OrderCode, payos.StatusPaid); err != nil {
		t.Fatalf("replay should be silent: %v", err)
	}
	got, _ = f.repo.GetByID(context.Background(), txn.ID)
	if got.Status != StatusVerified {
		t.Fatalf("replay changed status to %s", got.Status)
	}
}

func TestWebhookCancelledRejectsOrder(t *testing.T) {
	l := approvedListing(1000)
	f := newFixture(l)

	txn, err := f.svc.CreatePurchase(context.Background(), uuid.New(), &CreatePurchaseRequest{
		ListingID:     l.ID.String(),
		PaymentMethod: "gateway",
	})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	if err := f.svc.ConfirmGatewayPayment(context.Background(), txn.OrderCode, payos.StatusCancelled); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	got, _ := f.repo.GetByID(context.Background(), txn.ID)
	if got.Status != StatusRejected {
		t.Fatalf("expected rejected, got %s", got.Status)
	}
}

func TestCompletePurchaseHandsOver(t *testing.T) {
	l := approvedListing(1000)
	f := newFixture(l)
	buyer := uuid.New()
	admin := uuid.New()

	txn, _ := f.svc.CreatePurchase(context.Background(), buyer, &CreatePurchaseRequest{
		ListingID:     l.ID.String(),
		PaymentMethod: "gateway",
	})

	// not yet verified
	if _, err := f.svc.CompletePurchase(context.Background(), admin, txn.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState before verification, got %v", err)
	}

	if err := f.svc.ConfirmGatewayPayment(context.Background(), txn.OrderCode, payos.StatusPaid); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	got, err := f.svc.CompletePurchase(context.Background(), admin, txn.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if !got.ApprovedBy.Valid || got.ApprovedBy.UUID != admin {
		t.Fatal("approver not recorded")
	}
	if f.listings.listings[l.ID].Status != listing.StatusSold {
		t.Fatal("listing should be sold after hand-over")
	}
}

func TestTopUpBounds(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	for _, amount := range []int64{9_999, 10_000_001} {
		_, err := f.svc.CreateTopUp(context.Background(), userID, &CreateTopUpRequest{
			Amount:        amount,
			PaymentMethod: "manual",
		})
		if !errors.Is(err, ErrAmountOutOfRange) {
			t.Errorf("amount %d: expected ErrAmountOutOfRange, got %v", amount, err)
		}
	}

	txn, err := f.svc.CreateTopUp(context.Background(), userID, &CreateTopUpRequest{
		Amount:        10_000,
		PaymentMethod: "manual",
	})
	if err != nil {
		t.Fatalf("topup failed: %v", err)
	}
	if txn.Commission != 0 || txn.Total != 10_000 {
		t.Fatalf("top-ups carry no commission: commission=%d total=%d", txn.Commission, txn.Total)
	}
}

func TestGatewayTopUpCompletesOnWebhook(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	txn, err := f.svc.CreateTopUp(context.Background(), userID, &CreateTopUpRequest{
		Amount:        50_000,
		PaymentMethod: "gateway",
	})
	if err != nil {
		t.Fatalf("topup failed: %v", err)
	}
	if txn.Status != StatusPending || !txn.CheckoutURL.Valid {
		t.Fatal("gateway topup should be pending with a payment link")
	}

	if err := f.svc.ConfirmGatewayPayment(context.Background(), txn.OrderCode, payos.StatusPaid); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if f.wallet.balances[userID] != 50_000 {
		t.Fatalf("expected balance 50000, got %d", f.wallet.balances[userID])
	}
	got, _ := f.repo.GetByID(context.Background(), txn.ID)
	if got.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
}

func TestApproveManualTopUp(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	admin := uuid.New()

	txn, _ := f.svc.CreateTopUp(context.Background(), userID, &CreateTopUpRequest{
		Amount:        100_000,
		PaymentMethod: "manual",
	})

	got, err := f.svc.ApproveTopUp(context.Background(), admin, txn.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if f.wallet.balances[userID] != 100_000 {
		t.Fatalf("expected balance 100000, got %d", f.wallet.balances[userID])
	}

	// double approval must not double credit
	if _, err := f.svc.ApproveTopUp(context.Background(), admin, txn.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second approve, got %v", err)
	}
	if f.wallet.balances[userID] != 100_000 {
		t.Fatalf("balance changed on replay: %d", f.wallet.balances[userID])
	}
}

func TestApproveTopUpRetriesAfterCreditFailure(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	admin := uuid.New()

	txn, _ := f.svc.CreateTopUp(context.Background(), userID, &CreateTopUpRequest{
		Amount:        100_000,
		PaymentMethod: "manual",
	})

	f.wallet.failCredits = 1
	if _, err := f.svc.ApproveTopUp(context.Background(), admin, txn.ID); err == nil {
		t.Fatal("expected approve to fail while wallet is down")
	}

	// the order must stay pending so the approval can be retried
	got, _ := f.repo.GetByID(context.Background(), txn.ID)
	if got.Status != StatusPending {
		t.Fatalf("expected pending after failed credit, got %s", got.Status)
	}
	if f.wallet.balances[userID] != 0 {
		t.Fatalf("expected no balance after failed credit, got %d", f.wallet.balances[userID])
	}

	got, err := f.svc.ApproveTopUp(context.Background(), admin, txn.ID)
	if err != nil {
		t.Fatalf("retry approve failed: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("expected completed after retry, got %s", got.Status)
	}
	if f.wallet.balances[userID] != 100_000 {
		t.Fatalf("expected balance 100000 after retry, got %d", f.wallet.balances[userID])
	}
}

func TestGatewayTopUpRetriesAfterCreditFailure(t *testing.T) {
	f := newFixture()
	userID := uuid.New()

	txn, _ := f.svc.CreateTopUp(context.Background(), userID, &CreateTopUpRequest{
		Amount:        50_000,
		PaymentMethod: "gateway",
	})

	f.wallet.failCredits = 1
	if err := f.svc.ConfirmGatewayPayment(context.Background(), txn.OrderCode, payos.StatusPaid); err == nil {
		t.Fatal("expected confirm to fail while wallet is down")
	}

	got, _ := f.repo.GetByID(context.Background(), txn.ID)
	if got.Status != StatusPending {
		t.Fatalf("expected pending after failed credit, got %s", got.Status)
	}

	if err := f.svc.ConfirmGatewayPayment(context.Background(), txn.OrderCode, payos.StatusPaid); err != nil {
		t.Fatalf("retry confirm failed: %v", err)
	}
	got, _ = f.repo.GetByID(context.Background(), txn.ID)
	if got.Status != StatusCompleted {
		t.Fatalf("expected completed after retry, got %s", got.Status)
	}
	if f.wallet.balances[userID] != 50_000 {
		t.Fatalf("expected balance 50000 after retry, got %d", f.wallet.balances[userID])
	}
}

func TestRejectManualTopUp(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	admin := uuid.New()

	txn, _ := f.svc.CreateTopUp(context.Background(), userID, &CreateTopUpRequest{
		Amount:        100_000,
		PaymentMethod: "manual",
	})

	got, err := f.svc.RejectTopUp(context.Background(), admin, txn.ID, "không nhận được chuyển khoản")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if got.Status != StatusRejected {
		t.Fatalf("expected rejected, got %s", got.Status)
	}
	if f.wallet.balances[userID] != 0 {
		t.Fatal("rejected topup must not credit wallet")
	}
}

func TestRejectVerifiedPurchaseRefunds(t *testing.T) {
	l := approvedListing(1000)
	f := newFixture(l)
	buyer := uuid.New()
	admin := uuid.New()

	txn, _ := f.svc.CreatePurchase(context.Background(), buyer, &CreatePurchaseRequest{
		ListingID:     l.ID.String(),
		PaymentMethod: "gateway",
	})
	if err := f.svc.ConfirmGatewayPayment(context.Background(), txn.OrderCode, payos.StatusPaid); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	got, err := f.svc.RejectPurchase(context.Background(), admin, txn.ID, "tài khoản không đúng mô tả")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if got.Status != StatusRejected {
		t.Fatalf("expected rejected, got %s", got.Status)
	}
	if f.wallet.balances[buyer] != 1100 {
		t.Fatalf("expected refund of total 1100, got %d", f.wallet.balances[buyer])
	}
}

func TestSyncGatewayStatus(t *testing.T) {
	l := approvedListing(1000)
	f := newFixture(l)
	buyer := uuid.New()

	txn, _ := f.svc.CreatePurchase(context.Background(), buyer, &CreatePurchaseRequest{
		ListingID:     l.ID.String(),
		PaymentMethod: "gateway",
	})

	f.gateway.status = payos.StatusPaid
	got, err := f.svc.SyncGatewayStatus(context.Background(), buyer, txn.ID)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if got.Status != StatusVerified {
		t.Fatalf("expected verified after sync, got %s", got.Status)
	}

	// another user cannot poll someone else's order
	if _, err := f.svc.SyncGatewayStatus(context.Background(), uuid.New(), txn.ID); !errors.Is(err, ErrNotBuyer) {
		t.Fatalf("expected ErrNotBuyer, got %v", err)
	}
}
