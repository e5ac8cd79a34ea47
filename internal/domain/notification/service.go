package notification

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Sender delivers realtime payloads to a user's open connections.
type Sender interface {
	SendToUserJSON(userID uuid.UUID, payload any) error
}

// Service handles notification logic
type Service struct {
	repo   Repository
	sender Sender
}

// NewService creates notification service
func NewService(repo Repository, sender Sender) *Service {
	return &Service{repo: repo, sender: sender}
}

// Notify persists a notification and pushes it to the user's open
// connections. Failures are logged, never returned: notification
// delivery must not fail the operation that triggered it.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, kind, title, body string) {
	n, err := s.Create(ctx, userID, Kind(kind), title, body)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Str("kind", kind).Msg("notification create failed")
		return
	}
	s.publish(ctx, n)
}

// Create persists a notification
func (s *Service) Create(ctx context.Context, userID uuid.UUID, kind Kind, title, body string) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		IsRead:    false,
		CreatedAt: time.Now(),
	}
	if body != "" {
		n.Body = sql.NullString{String: body, Valid: true}
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) publish(ctx context.Context, n *Notification) {
	if s.sender == nil {
		return
	}

	unread, err := s.repo.CountUnreadByUser(ctx, n.UserID)
	if err != nil {
		unread = 0
	}

	payload := map[string]interface{}{
		"type": "notification:new",
		"data": map[string]interface{}{
			"notification": n,
			"unread_count": unread,
		},
	}
	if err := s.sender.SendToUserJSON(n.UserID, payload); err != nil {
		log.Warn().Err(err).Str("user_id", n.UserID.String()).Msg("notification push failed")
	}
}

// List returns notifications for user
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// GetUnreadCount returns unread count
func (s *Service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnreadByUser(ctx, userID)
}

// MarkAsRead marks one of the user's notifications as read
func (s *Service) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil || n.UserID != userID {
		return nil
	}
	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// StartCleanup periodically removes old notifications until ctx ends.
func (s *Service) StartCleanup(ctx context.Context, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := s.repo.DeleteOlderThan(ctx, maxAge)
				if err != nil {
					log.Error().Err(err).Msg("notification cleanup failed")
					continue
				}
				if deleted > 0 {
					log.Info().Int64("deleted", deleted).Msg("old notifications removed")
				}
			}
		}
	}()
}
