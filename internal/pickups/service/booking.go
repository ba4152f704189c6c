package service

import (
	"context"
	"errors"
	"sync"

	pickuperrors "curbside/internal/pickups/errors"
	"curbside/internal/pickups/repository"
	"curbside/internal/pickups/validator"
	"curbside/pkg/config"
	apperrors "curbside/pkg/errors"
	"curbside/pkg/events"
	"curbside/pkg/kafka"
	"curbside/pkg/model"
	"curbside/pkg/sanitizer"
	"curbside/pkg/slots"
)

// BookingService is the slot manager: it computes availability for a date
// and gates writes so that, best effort, two requests do not occupy the same
// date+time. The conflict check is read-then-write against the document
// store; between the read and the write another client can still insert a
// conflicting record. The store offers no atomic insert-if-absent here, so
// the re-check narrows the window without closing it.
type BookingService interface {
	ListBookedSlots(ctx context.Context, date string) ([]string, error)
	Submit(ctx context.Context, req *model.PickupRequest) error
	Reschedule(ctx context.Context, id, newDate, newTime, reason string) error
	Cancel(ctx context.Context, id string, meta model.CancelMeta) error
	GetByID(ctx context.Context, id string) (*model.PickupRequest, error)
	ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.PickupRequest, int64, error)
}

// EventPublisher pushes pickup lifecycle events to the notification feed.
// Publishing is best effort: a failed publish never fails the booking
// operation that triggered it.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type bookingService struct {
	repo      repository.RequestRepository
	validator *validator.RequestValidator
	window    *slots.Window
	publisher EventPublisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.RequestRepository,
	requestValidator *validator.RequestValidator,
	window *slots.Window,
	publisher EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		validator: requestValidator,
		window:    window,
		publisher: publisher,
		cfg:       cfg,
	}
}

// ListBookedSlots returns the occupied time labels for a date, in window
// order. Records of every status count as booked, cancelled ones included;
// a cancelled request keeps its slot until the record is rescheduled.
func (s *bookingService) ListBookedSlots(ctx context.Context, date string) ([]string, error) {
	if date == "" {
		return nil, apperrors.InvalidInput("Date cannot be empty")
	}

	existing, err := s.repo.FindByDate(ctx, date)
	if err != nil {
		s.cfg.Log.Error("Failed to list booked slots", "date", date, "error", err)
		return nil, apperrors.StoreUnavailable("Failed to load booked slots", err)
	}

	seen := make(map[string]struct{}, len(existing))
	for _, req := range existing {
		seen[req.Time] = struct{}{}
	}

	var booked []string
	for _, label := range s.window.Labels() {
		if _, ok := seen[label]; ok {
			booked = append(booked, label)
		}
	}
	return booked, nil
}

// Submit validates the candidate locally, re-checks the target slot and
// inserts the record with status pending.
func (s *bookingService) Submit(ctx context.Context, req *model.PickupRequest) error {
	s.applyDefaults(req)
	s.sanitize(req)

	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Pickup request validation failed", "error", err)
		return apperrors.Validation("Pickup request validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.checkSlotFree(ctx, req.Date, req.Time, ""); err != nil {
		return err
	}

	if err := s.repo.Insert(ctx, req); err != nil {
		s.cfg.Log.Error("Failed to create pickup request", "error", err)
		return apperrors.StoreUnavailable("Failed to create pickup request", err)
	}

	s.cfg.Log.Info("Pickup request created",
		"id", req.ID,
		"user_id", req.UserID,
		"date", req.Date,
		"time", req.Time,
		"waste_type", req.WasteType,
	)

	s.publishEvent(ctx, events.Created(req))
	return nil
}

// Reschedule moves an existing request to a new slot and resets its status
// to pending. Moving onto the request's own current slot passes the conflict
// check (the slot is occupied by itself); the caller is expected to block
// identical resubmission before calling.
func (s *bookingService) Reschedule(ctx context.Context, id, newDate, newTime, reason string) error {
	if id == "" {
		return apperrors.InvalidInput("Pickup request ID cannot be empty")
	}

	if err := s.validator.ValidateSlot(newDate, newTime); err != nil {
		s.cfg.Log.Warn("Reschedule validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid reschedule slot", map[string]any{"error": err.Error()})
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.checkSlotFree(ctx, newDate, newTime, id); err != nil {
		return err
	}

	if err := s.repo.UpdateSchedule(ctx, id, newDate, newTime, model.StatusPending); err != nil {
		if errors.Is(err, pickuperrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Pickup request", id)
		}
		s.cfg.Log.Error("Failed to reschedule pickup request", "id", id, "error", err)
		return apperrors.StoreUnavailable("Failed to reschedule pickup request", err)
	}

	s.cfg.Log.Info("Pickup request rescheduled",
		"id", id,
		"old_date", existing.Date,
		"old_time", existing.Time,
		"new_date", newDate,
		"new_time", newTime,
	)

	existing.Date = newDate
	existing.Time = newTime
	existing.Status = model.StatusPending
	s.publishEvent(ctx, events.Rescheduled(existing, reason))
	return nil
}

// Cancel marks the request cancelled and records who did it and why. The
// record is kept, not deleted. Eligibility (CanCancel) is the caller's
// responsibility; the manager applies the state change as asked.
func (s *bookingService) Cancel(ctx context.Context, id string, meta model.CancelMeta) error {
	if id == "" {
		return apperrors.InvalidInput("Pickup request ID cannot be empty")
	}

	if err := s.validator.ValidateCancelMeta(&meta); err != nil {
		s.cfg.Log.Warn("Cancel metadata validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid cancellation input", map[string]any{"error": err.Error()})
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Cancel(ctx, id, meta); err != nil {
		if errors.Is(err, pickuperrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Pickup request", id)
		}
		s.cfg.Log.Error("Failed to cancel pickup request", "id", id, "error", err)
		return apperrors.StoreUnavailable("Failed to cancel pickup request", err)
	}

	s.cfg.Log.Info("Pickup request cancelled",
		"id", id,
		"cancelled_by", meta.CancelledBy,
	)

	existing.Status = model.StatusCancelled
	s.publishEvent(ctx, events.Cancelled(existing, meta.Reason))
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.PickupRequest, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Pickup request ID cannot be empty")
	}

	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pickuperrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Pickup request", id)
		}
		if errors.Is(err, pickuperrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid pickup request ID format")
		}
		return nil, apperrors.StoreUnavailable("Failed to retrieve pickup request", err)
	}

	return req, nil
}

func (s *bookingService) ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.PickupRequest, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var requests []*model.PickupRequest
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, userID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count pickup requests", "user_id", userID, "error", errCount)
			errCount = apperrors.StoreUnavailable("Failed to count pickup requests", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		requests, errFind = s.repo.FindByUser(ctx, userID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list pickup requests", "user_id", userID, "error", errFind)
			errFind = apperrors.StoreUnavailable("Failed to retrieve pickup requests", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return requests, count, nil
}

// --- Helpers ---

// checkSlotFree re-queries the target slot immediately before a write.
// excludeID carries the request being rescheduled, so its own current slot
// does not count against it.
func (s *bookingService) checkSlotFree(ctx context.Context, date, timeLabel, excludeID string) error {
	existing, err := s.repo.FindByDateTime(ctx, date, timeLabel)
	if err != nil {
		s.cfg.Log.Error("Failed to check slot availability", "date", date, "time", timeLabel, "error", err)
		return apperrors.StoreUnavailable("Failed to check slot availability", err)
	}

	for _, req := range existing {
		if excludeID != "" && req.ID == excludeID {
			continue
		}
		return apperrors.SlotConflict(date, timeLabel)
	}
	return nil
}

func (s *bookingService) applyDefaults(req *model.PickupRequest) {
	if req.Status == "" {
		req.Status = model.StatusPending
	}
}

func (s *bookingService) sanitize(req *model.PickupRequest) {
	req.UserName = sanitizer.NormalizeName(req.UserName)
	req.Address = sanitizer.NormalizeAddress(req.Address)
	req.Phone = sanitizer.NormalizePhone(req.Phone)
	req.Notes = sanitizer.NormalizeNotes(req.Notes)
}

func (s *bookingService) publishEvent(ctx context.Context, event events.PickupEvent) {
	if s.publisher == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(event.UserID).
		WithValue(event).
		WithEventType(event.Type).
		WithSchemaVersion(events.SchemaVersion).
		WithSource("pickups").
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish pickup event",
			"type", event.Type,
			"request_id", event.RequestID,
			"error", err,
		)
	}
}
