package listing

import (
	"context"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gamebay/gamebay-api/internal/domain/user"
)

type repoStub struct {
	listings map[uuid.UUID]*Listing
	shots    map[uuid.UUID][]*Screenshot
}

func newRepoStub(listings ...*Listing) *repoStub {
	r := &repoStub{listings: make(map[uuid.UUID]*Listing), shots: make(map[uuid.UUID][]*Screenshot)}
	for _, l := range listings {
		r.listings[l.ID] = l
	}
	return r
}

func (r *repoStub) Create(_ context.Context, l *Listing) error {
	r.listings[l.ID] = l
	return nil
}

func (r *repoStub) GetByID(_ context.Context, id uuid.UUID) (*Listing, error) {
	l, ok := r.listings[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *repoStub) ListPending(_ context.Context) ([]*Listing, error) {
	var out []*Listing
	for _, l := range r.listings {
		if l.Status == StatusPending {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *repoStub) ListApproved(context.Context, int, int) ([]*Listing, error) { return nil, nil }
func (r *repoStub) CountApproved(context.Context) (int, error)                 { return 0, nil }
func (r *repoStub) ListBySeller(context.Context, uuid.UUID) ([]*Listing, error) {
	return nil, nil
}

func (r *repoStub) Approve(_ context.Context, id uuid.UUID) (bool, error) {
	l, ok := r.listings[id]
	if !ok || l.Status != StatusPending {
		return false, nil
	}
	l.Status = StatusApproved
	return true, nil
}

func (r *repoStub) Reject(_ context.Context, id uuid.UUID, reason string) (bool, error) {
	l, ok := r.listings[id]
	if !ok || l.Status != StatusPending {
		return false, nil
	}
	l.Status = StatusRejected
	l.RejectionReason.String = reason
	l.RejectionReason.Valid = true
	return true, nil
}

func (r *repoStub) MarkSold(_ context.Context, id uuid.UUID) (bool, error) {
	l, ok := r.listings[id]
	if !ok || l.Status != StatusApproved {
		return false, nil
	}
	l.Status = StatusSold
	l.SoldAt.Time = time.Now()
	l.SoldAt.Valid = true
	return true, nil
}

func (r *repoStub) AddScreenshot(_ context.Context, shot *Screenshot) error {
	r.shots[shot.ListingID] = append(r.shots[shot.ListingID], shot)
	return nil
}

func (r *repoStub) ListScreenshots(_ context.Context, listingID uuid.UUID) ([]*Screenshot, error) {
	return r.shots[listingID], nil
}

type storeStub struct {
	keys []string
}

func (s *storeStub) Put(_ context.Context, key string, _ io.Reader, _ string) error {
	s.keys = append(s.keys, key)
	return nil
}

func (s *storeStub) Get(context.Context, string) (io.ReadCloser, error) { return nil, nil }
func (s *storeStub) Delete(context.Context, string) error               { return nil }
func (s *storeStub) GetURL(key string) string                           { return "https://cdn.test/" + key }

type fakeUserRepo struct{}

func (fakeUserRepo) Create(context.Context, *user.User) error { return nil }
func (fakeUserRepo) GetByID(context.Context, uuid.UUID) (*user.User, error) {
	return &user.User{Email: "seller@test.com", DisplayName: "Seller"}, nil
}
func (fakeUserRepo) GetByEmail(context.Context, string) (*user.User, error) { return nil, nil }
func (fakeUserRepo) ListAdmins(context.Context) ([]*user.User, error)       { return nil, nil }

func newTestService(repo Repository) *Service {
	return NewService(repo, fakeUserRepo{}, nil, nil, nil, "http://localhost:3000")
}

func pendingListing(price int64) *Listing {
	return &Listing{
		ID:        uuid.New(),
		SellerID:  uuid.New(),
		RankLabel: "Challenger",
		Price:     price,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
}

func TestApprovePending(t *testing.T) {
	l := pendingListing(500000)
	repo := newRepoStub(l)
	svc := newTestService(repo)

	got, err := svc.Approve(context.Background(), l.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if got.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", got.Status)
	}
	if got.RejectionReason.Valid {
		t.Fatal("approved listing must not carry a rejection reason")
	}
}

func TestApproveOnlyFromPending(t *testing.T) {
	for _, status := range []Status{StatusApproved, StatusRejected, StatusSold} {
		l := pendingListing(100)
		l.Status = status
		repo := newRepoStub(l)
		svc := newTestService(repo)

		if _, err := svc.Approve(context.Background(), l.ID); err != ErrNotPending {
			t.Errorf("approve from %s: expected ErrNotPending, got %v", status, err)
		}
		// repeated invalid calls never mutate state
		if _, err := svc.Approve(context.Background(), l.ID); err != ErrNotPending {
			t.Errorf("second approve from %s: expected ErrNotPending, got %v", status, err)
		}
		if repo.listings[l.ID].Status != status {
			t.Errorf("listing mutated by invalid approve: %s", repo.listings[l.ID].Status)
		}
	}
}

func TestApproveNotFound(t *testing.T) {
	svc := newTestService(newRepoStub())
	if _, err := svc.Approve(context.Background(), uuid.New()); err != ErrListingNotFound {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}

func TestRejectStoresReason(t *testing.T) {
	l := pendingListing(100)
	repo := newRepoStub(l)
	svc := newTestService(repo)

	got, err := svc.Reject(context.Background(), l.ID, "ảnh mờ")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if got.Status != StatusRejected {
		t.Fatalf("expected rejected, got %s", got.Status)
	}
	if !got.RejectionReason.Valid || got.RejectionReason.String != "ảnh mờ" {
		t.Fatalf("expected reason stored, got %+v", got.RejectionReason)
	}
}

func TestRejectReasonBounds(t *testing.T) {
	l := pendingListing(100)
	repo := newRepoStub(l)
	svc := newTestService(repo)

	if _, err := svc.Reject(context.Background(), l.ID, "x"); err != ErrReasonLength {
		t.Fatalf("1-char reason: expected ErrReasonLength, got %v", err)
	}
	if repo.listings[l.ID].Status != StatusPending {
		t.Fatal("listing mutated by invalid reject")
	}

	long := make([]rune, 501)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := svc.Reject(context.Background(), l.ID, string(long)); err != ErrReasonLength {
		t.Fatalf("501-char reason: expected ErrReasonLength, got %v", err)
	}
}

func TestMarkSoldOnlyFromApproved(t *testing.T) {
	l := pendingListing(100)
	repo := newRepoStub(l)
	svc := newTestService(repo)

	if _, err := svc.MarkSold(context.Background(), l.ID); err != ErrNotApproved {
		t.Fatalf("mark sold from pending: expected ErrNotApproved, got %v", err)
	}

	if _, err := svc.Approve(context.Background(), l.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	got, err := svc.MarkSold(context.Background(), l.ID)
	if err != nil {
		t.Fatalf("mark sold failed: %v", err)
	}
	if got.Status != StatusSold {
		t.Fatalf("expected sold, got %s", got.Status)
	}

	if _, err := svc.MarkSold(context.Background(), l.ID); err != ErrNotApproved {
		t.Fatalf("mark sold twice: expected ErrNotApproved, got %v", err)
	}
}

func TestListPendingFIFO(t *testing.T) {
	base := time.Now()
	newest := pendingListing(300)
	newest.CreatedAt = base.Add(2 * time.Hour)
	middle := pendingListing(200)
	middle.CreatedAt = base.Add(time.Hour)
	oldest := pendingListing(100)
	oldest.CreatedAt = base

	repo := newRepoStub(newest, middle, oldest)
	svc := newTestService(repo)

	queue, err := svc.ListPending(context.Background())
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(queue) != 3 {
		t.Fatalf("expected 3 pending, got %d", len(queue))
	}
	if queue[0].ID != oldest.ID || queue[2].ID != newest.ID {
		t.Fatal("review queue is not oldest-first")
	}
}

func TestScreenshotsCarryPublicURLs(t *testing.T) {
	l := pendingListing(500)
	repo := newRepoStub(l)
	store := &storeStub{}
	svc := NewService(repo, fakeUserRepo{}, nil, nil, store, "http://localhost:3000")

	shot, err := svc.AttachScreenshot(context.Background(), l.SellerID, l.ID, strings.NewReader("img"), "image/png")
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if shot.URL != "https://cdn.test/"+shot.StorageKey {
		t.Fatalf("expected public url for %s, got %q", shot.StorageKey, shot.URL)
	}

	shots, err := svc.Screenshots(context.Background(), l.ID)
	if err != nil {
		t.Fatalf("screenshots failed: %v", err)
	}
	if len(shots) != 1 {
		t.Fatalf("expected 1 screenshot, got %d", len(shots))
	}
	if shots[0].URL != "https://cdn.test/"+shots[0].StorageKey {
		t.Fatalf("expected public url, got %q", shots[0].URL)
	}
}
