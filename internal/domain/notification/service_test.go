package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type repoStub struct {
	notifications map[uuid.UUID]*Notification
	failCreate    bool
}

func newRepoStub() *repoStub {
	return &repoStub{notifications: make(map[uuid.UUID]*Notification)}
}

func (r *repoStub) Create(_ context.Context, n *Notification) error {
	if r.failCreate {
		return errors.New("storage unavailable")
	}
	r.notifications[n.ID] = n
	return nil
}

func (r *repoStub) GetByID(_ context.Context, id uuid.UUID) (*Notification, error) {
	n, ok := r.notifications[id]
	if !ok {
		return nil, nil
	}
	return n, nil
}

func (r *repoStub) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]*Notification, error) {
	var out []*Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *repoStub) CountUnreadByUser(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *repoStub) MarkAsRead(_ context.Context, id uuid.UUID) error {
	if n, ok := r.notifications[id]; ok {
		n.IsRead = true
	}
	return nil
}

func (r *repoStub) MarkAllAsRead(_ context.Context, userID uuid.UUID) error {
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *repoStub) DeleteOlderThan(context.Context, time.Duration) (int64, error) { return 0, nil }

type senderStub struct {
	sent []any
}

func (s *senderStub) SendToUserJSON(_ uuid.UUID, payload any) error {
	s.sent = append(s.sent, payload)
	return nil
}

func TestNotifyPersistsAndPushes(t *testing.T) {
	repo := newRepoStub()
	sender := &senderStub{}
	svc := NewService(repo, sender)
	userID := uuid.New()

	svc.Notify(context.Background(), userID, "topup_approved", "Nạp tiền thành công", "Ví đã được cộng 50000.")

	if len(repo.notifications) != 1 {
		t.Fatalf("expected 1 stored notification, got %d", len(repo.notifications))
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 pushed event, got %d", len(sender.sent))
	}

	raw, err := json.Marshal(sender.sent[0])
	if err != nil {
		t.Fatalf("marshal pushed event: %v", err)
	}
	var event struct {
		Type string `json:"type"`
		Data struct {
			UnreadCount int `json:"unread_count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &event); err != nil {
		t.Fatalf("unmarshal pushed event: %v", err)
	}
	if event.Type != "notification:new" {
		t.Fatalf("unexpected event type %q", event.Type)
	}
	if event.Data.UnreadCount != 1 {
		t.Fatalf("expected unread count 1, got %d", event.Data.UnreadCount)
	}
}

func TestNotifySwallowsStorageFailure(t *testing.T) {
	repo := newRepoStub()
	repo.failCreate = true
	sender := &senderStub{}
	svc := NewService(repo, sender)

	// must not panic or push a phantom event
	svc.Notify(context.Background(), uuid.New(), "listing_approved", "Tin đã duyệt", "")

	if len(sender.sent) != 0 {
		t.Fatalf("no event should be pushed when persistence fails, got %d", len(sender.sent))
	}
}

func TestMarkAsReadChecksOwner(t *testing.T) {
	repo := newRepoStub()
	svc := NewService(repo, nil)
	owner := uuid.New()

	n, err := svc.Create(context.Background(), owner, KindListingSold, "Tài khoản đã bán", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// another user cannot mark it read
	if err := svc.MarkAsRead(context.Background(), uuid.New(), n.ID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if repo.notifications[n.ID].IsRead {
		t.Fatal("foreign user marked the notification read")
	}

	if err := svc.MarkAsRead(context.Background(), owner, n.ID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if !repo.notifications[n.ID].IsRead {
		t.Fatal("owner could not mark the notification read")
	}
}
