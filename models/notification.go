package models

import "time"

// NotificationType controls how a notification is styled by clients
type NotificationType string

// Notification types
const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
)

// Notification is a per-user message generated by a case event
type Notification struct {
	ID          string           `bson:"_id" json:"id"`
	RecipientID string           `bson:"recipientId" json:"recipientId"`
	CaseID      string           `bson:"caseId" json:"caseId"`
	CaseNumber  string           `bson:"caseNumber" json:"caseNumber"`
	Message     string           `bson:"message" json:"message"`
	Details     string           `bson:"details,omitempty" json:"details,omitempty"`
	Priority    Priority         `bson:"priority,omitempty" json:"priority,omitempty"`
	Type        NotificationType `bson:"type" json:"type"`
	Unread      bool             `bson:"unread" json:"unread"`
	CreatedAt   time.Time        `bson:"createdAt" json:"createdAt"`
}
