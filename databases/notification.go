package databases

// go generate: mockery --name NotificationDatabase

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/casetrack-api/models"
)

const notificationName = "notifications"

// NotificationDatabase contains the methods to use with the notification database
type NotificationDatabase interface {
	InsertOne(ctx context.Context, n models.Notification) error
	FindByRecipient(ctx context.Context, recipientID string) ([]models.Notification, error)
	// MarkRead clears the unread flag and reports whether a notification matched.
	// An empty recipientID matches any recipient.
	MarkRead(ctx context.Context, id, recipientID string) (bool, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type notificationDatabase struct {
	db DatabaseHelper
}

// NewNotificationDatabase initializes a new instance of notification database with the provided db connection
func NewNotificationDatabase(db DatabaseHelper) NotificationDatabase {
	return &notificationDatabase{
		db: db,
	}
}

func (n *notificationDatabase) InsertOne(ctx context.Context, notification models.Notification) error {
	_, err := n.db.Collection(notificationName).InsertOne(ctx, notification)
	if err != nil {
		return mapMongoError(err)
	}
	return nil
}

func (n *notificationDatabase) FindByRecipient(ctx context.Context, recipientID string) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	curr, err := n.db.Collection(notificationName).Find(ctx, bson.M{"recipientId": recipientID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find notifications: %w", err)
	}
	defer curr.Close(ctx)

	notifications := []models.Notification{}
	if err := curr.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

func (n *notificationDatabase) MarkRead(ctx context.Context, id, recipientID string) (bool, error) {
	filter := bson.M{"_id": id}
	if recipientID != "" {
		filter["recipientId"] = recipientID
	}
	res, err := n.db.Collection(notificationName).UpdateOne(ctx, filter, bson.M{"$set": bson.M{"unread": false}})
	if err != nil {
		return false, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (n *notificationDatabase) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	return n.db.Collection(notificationName).CountDocuments(ctx, bson.M{"recipientId": recipientID, "unread": true})
}

func (n *notificationDatabase) EnsureIndexes(ctx context.Context) error {
	_, err := n.db.Collection(notificationName).CreateIndex(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "recipientId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create notification index: %w", err)
	}
	return nil
}
