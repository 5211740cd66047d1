// Package notify builds, stores and delivers per-user case notifications.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linesmerrill/casetrack-api/databases"
	"github.com/linesmerrill/casetrack-api/feed"
	"github.com/linesmerrill/casetrack-api/models"
)

const mailTimeout = 15 * time.Second

// Pusher delivers a stored notification to a connected client
type Pusher interface {
	Push(userID string, n models.Notification)
}

// Mailer delivers a stored notification by e-mail
type Mailer interface {
	Send(ctx context.Context, n models.Notification) error
}

// Dispatcher owns notification lifetimes. Stored notifications are
// announced on Feed and then handed to the optional Pusher and Mailer;
// delivery failures are logged and otherwise ignored.
type Dispatcher struct {
	DB     databases.NotificationDatabase
	Feed   *feed.Feed
	Pusher Pusher
	Mailer Mailer
	Now    func() time.Time
}

// NewDispatcher creates a dispatcher storing into db and signalling changes on changes
func NewDispatcher(db databases.NotificationDatabase, changes *feed.Feed) *Dispatcher {
	return &Dispatcher{
		DB:   db,
		Feed: changes,
		Now:  time.Now,
	}
}

// NotifyStatusChange tells the victim that their case moved to newStatus.
// Cases without a victim produce nothing.
func (d *Dispatcher) NotifyStatusChange(ctx context.Context, c models.Case, newStatus models.Status, note string) error {
	if c.VictimID == "" {
		return nil
	}
	title := models.TitleOf(newStatus)

	details := note
	if strings.TrimSpace(details) == "" {
		details = fmt.Sprintf("Your case status has been updated. The case is now in the %s stage.", strings.ToLower(title))
	}

	n := d.newNotification(c)
	n.Message = fmt.Sprintf("Case %s has moved to %s", c.CaseNumber, title)
	n.Details = details
	n.Priority = models.PriorityMedium
	n.Type = models.NotificationInfo
	if newStatus == models.StatusCompleted {
		n.Priority = models.PriorityLow
		n.Type = models.NotificationSuccess
	}
	return d.dispatch(ctx, n)
}

// NotifyEscalation tells the victim that their case was escalated
func (d *Dispatcher) NotifyEscalation(ctx context.Context, c models.Case) error {
	if c.VictimID == "" {
		return nil
	}
	n := d.newNotification(c)
	n.Message = fmt.Sprintf("Case %s has been escalated for priority handling", c.CaseNumber)
	n.Details = "Your case has been flagged for urgent attention. A senior officer will review it shortly."
	n.Priority = models.PriorityHigh
	n.Type = models.NotificationWarning
	return d.dispatch(ctx, n)
}

// MarkRead clears the unread flag. Already-read and unknown ids are a no-op.
func (d *Dispatcher) MarkRead(ctx context.Context, id string) error {
	_, err := d.markRead(ctx, id, "")
	return err
}

// MarkReadFor clears the unread flag of one of userID's notifications.
// It returns models.ErrNotFound when userID has no such notification.
func (d *Dispatcher) MarkReadFor(ctx context.Context, userID, id string) error {
	found, err := d.markRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !found {
		return models.ErrNotFound
	}
	return nil
}

func (d *Dispatcher) markRead(ctx context.Context, id, recipientID string) (bool, error) {
	found, err := d.DB.MarkRead(ctx, id, recipientID)
	if err != nil {
		return false, err
	}
	if found && d.Feed != nil {
		d.Feed.Publish()
	}
	return found, nil
}

// ListForUser returns userID's notifications, newest first
func (d *Dispatcher) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	return d.DB.FindByRecipient(ctx, userID)
}

// UnreadCount returns how many of userID's notifications are unread
func (d *Dispatcher) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return d.DB.CountUnread(ctx, userID)
}

func (d *Dispatcher) newNotification(c models.Case) models.Notification {
	return models.Notification{
		ID:          uuid.NewString(),
		RecipientID: c.VictimID,
		CaseID:      c.ID,
		CaseNumber:  c.CaseNumber,
		Unread:      true,
		CreatedAt:   d.now(),
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, n models.Notification) error {
	if err := d.DB.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	zap.S().Debugw("notification stored",
		"notificationId", n.ID,
		"recipientId", n.RecipientID,
		"caseNumber", n.CaseNumber,
	)

	if d.Feed != nil {
		d.Feed.Publish()
	}
	if d.Pusher != nil {
		d.Pusher.Push(n.RecipientID, n)
	}
	if d.Mailer != nil {
		go d.mail(n)
	}
	return nil
}

func (d *Dispatcher) mail(n models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
	defer cancel()

	if err := d.Mailer.Send(ctx, n); err != nil {
		zap.S().Errorw("failed to e-mail notification",
			"notificationId", n.ID,
			"recipientId", n.RecipientID,
			"error", err,
		)
	}
}

func (d *Dispatcher) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}
