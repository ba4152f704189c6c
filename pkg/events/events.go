// Package events defines the pickup lifecycle events published to Kafka and
// consumed by the notifications service.
package events

import (
	"time"

	"curbside/pkg/model"
)

const (
	TopicPickupEvents    = "pickup.events"
	TopicPickupEventsDLQ = "pickup.events.dlq"

	TypePickupCreated     = "pickup.created"
	TypePickupRescheduled = "pickup.rescheduled"
	TypePickupCancelled   = "pickup.cancelled"

	SchemaVersion = "1"
)

// PickupEvent is the JSON payload for every pickup lifecycle event. Keyed by
// UserID on the wire so one user's events stay ordered.
type PickupEvent struct {
	Type       string    `json:"type"`
	RequestID  string    `json:"request_id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	WasteType  string    `json:"waste_type"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func Created(req *model.PickupRequest) PickupEvent {
	return fromRequest(TypePickupCreated, req, "")
}

func Rescheduled(req *model.PickupRequest, reason string) PickupEvent {
	return fromRequest(TypePickupRescheduled, req, reason)
}

func Cancelled(req *model.PickupRequest, reason string) PickupEvent {
	return fromRequest(TypePickupCancelled, req, reason)
}

func fromRequest(eventType string, req *model.PickupRequest, reason string) PickupEvent {
	return PickupEvent{
		Type:       eventType,
		RequestID:  req.ID,
		UserID:     req.UserID,
		UserName:   req.UserName,
		WasteType:  req.WasteType,
		Date:       req.Date,
		Time:       req.Time,
		Status:     req.Status,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}
