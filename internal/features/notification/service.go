package notification

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationService interface {
	NotifyUsers(ctx context.Context, userIDs []primitive.ObjectID, title, message, refType, refID string) error
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID, page, limit int64) ([]Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkAsRead(ctx context.Context, id string, userID primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) error
}

type NotificationServiceImpl struct {
	Repo NotificationRepository
	Hub  *Hub
}

func NewNotificationService(repo NotificationRepository, hub *Hub) NotificationService {
	return &NotificationServiceImpl{
		Repo: repo,
		Hub:  hub,
	}
}

func typeFor(refType string) NotificationType {
	switch refType {
	case "document":
		return NotificationTypeDocument
	case "approval":
		return NotificationTypeApproval
	case "reminder":
		return NotificationTypeReminder
	default:
		return NotificationTypeInfo
	}
}

func (s *NotificationServiceImpl) NotifyUsers(ctx context.Context, userIDs []primitive.ObjectID, title, message, refType, refID string) error {
	seen := make(map[primitive.ObjectID]bool, len(userIDs))
	notifications := make([]Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		if userID.IsZero() || seen[userID] {
			continue
		}
		seen[userID] = true
		notifications = append(notifications, Notification{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			Title:     title,
			Message:   message,
			Type:      typeFor(refType),
			RefType:   refType,
			RefID:     refID,
			CreatedAt: time.Now(),
		})
	}
	if err := s.Repo.CreateMany(ctx, notifications); err != nil {
		return err
	}

	for i := range notifications {
		s.Hub.Push(notifications[i].UserID, &notifications[i])
	}
	return nil
}

func (s *NotificationServiceImpl) GetUserNotifications(ctx context.Context, userID primitive.ObjectID, page, limit int64) ([]Notification, int64, error) {
	return s.Repo.FindByUser(ctx, userID, page, limit)
}

func (s *NotificationServiceImpl) GetUnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.Repo.CountUnread(ctx, userID)
}

func (s *NotificationServiceImpl) MarkAsRead(ctx context.Context, id string, userID primitive.ObjectID) error {
	return s.Repo.MarkAsRead(ctx, id, userID)
}

func (s *NotificationServiceImpl) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) error {
	return s.Repo.MarkAllAsRead(ctx, userID)
}
