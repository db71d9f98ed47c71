package models

import "time"

// Notification types emitted by the moderation pipeline.
const (
	NotificationReportReceived = "report-received"
	NotificationActionTaken    = "action-taken"
	NotificationWarning        = "warning"
	NotificationTempSuspension = "temp-suspension"
	NotificationPermanentBan   = "permanent-ban"
)

// Notification is a one-way in-app message. The read flag is only ever
// flipped by the recipient.
type Notification struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Type      string    `json:"type" bson:"type"`
	Title     string    `json:"title" bson:"title"`
	Body      string    `json:"body" bson:"body"`
	Read      bool      `json:"read" bson:"read"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
