package model

import "time"

// Waste type labels accepted on a pickup request.
const (
	WasteHousehold  = "household"
	WastePlastic    = "plastic"
	WasteOrganic    = "organic"
	WastePaper      = "paper"
	WasteElectronic = "electronic"
	WasteHazardous  = "hazardous"
)

// Request lifecycle states. Pending is the initial state (and the state a
// reschedule resets to). Assigned, in_progress and completed are written by
// the collector dispatcher, never by this backend. Completed and cancelled
// are terminal.
const (
	StatusPending    = "pending"
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// PickupRequest is one waste-collection scheduling request. Date is an ISO
// calendar date (YYYY-MM-DD) and Time one label from the configured hourly
// slot window.
type PickupRequest struct {
	ID        string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID    string `json:"user_id" bson:"user_id" validate:"required,min=1,max=128"`
	UserName  string `json:"user_name" bson:"user_name" validate:"required,min=2,max=100"`
	Address   string `json:"address" bson:"address" validate:"required,min=5,max=300"`
	Phone     string `json:"phone" bson:"phone" validate:"required,loose_phone"`
	WasteType string `json:"waste_type" bson:"waste_type" validate:"required,oneof=household plastic organic paper electronic hazardous"`
	Date      string `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	Time      string `json:"time" bson:"time" validate:"required,slot_label"`
	Status    string `json:"status" bson:"status" validate:"required,oneof=pending assigned in_progress completed cancelled"`
	Notes     string `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,notes_limit"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`

	CancelledBy  string     `json:"cancelled_by,omitempty" bson:"cancelled_by,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancelReason string     `json:"cancel_reason,omitempty" bson:"cancel_reason,omitempty"`
}

// CancelMeta carries who cancelled a request and why.
type CancelMeta struct {
	CancelledBy string `json:"cancelled_by" validate:"required,min=1,max=128"`
	Reason      string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// CanCancel reports whether the owning user may still cancel the request.
// Only pending and assigned pickups can be called off; in-progress and
// completed ones are past the point of no return, and a cancelled one
// cannot be cancelled again.
func (p *PickupRequest) CanCancel() bool {
	return p.Status == StatusPending || p.Status == StatusAssigned
}

// CanEdit reports whether the request may still be rescheduled or edited.
func (p *PickupRequest) CanEdit() bool {
	switch p.Status {
	case StatusCompleted, StatusInProgress, StatusCancelled:
		return false
	}
	return true
}

// IsTerminal reports whether no further transitions are possible.
func (p *PickupRequest) IsTerminal() bool {
	return p.Status == StatusCompleted || p.Status == StatusCancelled
}
