package model

import "time"

// Notification kinds mirror the pickup lifecycle events they are built from.
const (
	NotificationPickupCreated     = "pickup_created"
	NotificationPickupRescheduled = "pickup_rescheduled"
	NotificationPickupCancelled   = "pickup_cancelled"
)

// Notification is one entry in a user's in-app feed.
type Notification struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string    `json:"user_id" bson:"user_id"`
	RequestID string    `json:"request_id" bson:"request_id"`
	Kind      string    `json:"kind" bson:"kind"`
	Title     string    `json:"title" bson:"title"`
	Body      string    `json:"body" bson:"body"`
	Read      bool      `json:"read" bson:"read"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
