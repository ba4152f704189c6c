package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	pickuperrors "curbside/internal/pickups/errors"
	"curbside/internal/pickups/validator"
	"curbside/pkg/config"
	apperrors "curbside/pkg/errors"
	"curbside/pkg/events"
	"curbside/pkg/kafka"
	"curbside/pkg/logger"
	"curbside/pkg/model"
	"curbside/pkg/slots"
)

// --- Test doubles ---

type mockRequestRepository struct {
	insertFn         func(ctx context.Context, req *model.PickupRequest) error
	findByIDFn       func(ctx context.Context, id string) (*model.PickupRequest, error)
	findByDateFn     func(ctx context.Context, date string) ([]*model.PickupRequest, error)
	findByDateTimeFn func(ctx context.Context, date, timeLabel string) ([]*model.PickupRequest, error)
	findByUserFn     func(ctx context.Context, userID string, limit int, offset int64) ([]*model.PickupRequest, error)
	countByUserFn    func(ctx context.Context, userID string) (int64, error)
	updateScheduleFn func(ctx context.Context, id, date, timeLabel, status string) error
	cancelFn         func(ctx context.Context, id string, meta model.CancelMeta) error
}

func (m *mockRequestRepository) Insert(ctx context.Context, req *model.PickupRequest) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, req)
	}
	return nil
}

func (m *mockRequestRepository) FindByID(ctx context.Context, id string) (*model.PickupRequest, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, pickuperrors.ErrNotFound
}

func (m *mockRequestRepository) FindByDate(ctx context.Context, date string) ([]*model.PickupRequest, error) {
	if m.findByDateFn != nil {
		return m.findByDateFn(ctx, date)
	}
	return nil, nil
}

func (m *mockRequestRepository) FindByDateTime(ctx context.Context, date, timeLabel string) ([]*model.PickupRequest, error) {
	if m.findByDateTimeFn != nil {
		return m.findByDateTimeFn(ctx, date, timeLabel)
	}
	return nil, nil
}

func (m *mockRequestRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.PickupRequest, error) {
	if m.findByUserFn != nil {
		return m.findByUserFn(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (m *mockRequestRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	if m.countByUserFn != nil {
		return m.countByUserFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockRequestRepository) UpdateSchedule(ctx context.Context, id, date, timeLabel, status string) error {
	if m.updateScheduleFn != nil {
		return m.updateScheduleFn(ctx, id, date, timeLabel, status)
	}
	return nil
}

func (m *mockRequestRepository) Cancel(ctx context.Context, id string, meta model.CancelMeta) error {
	if m.cancelFn != nil {
		return m.cancelFn(ctx, id, meta)
	}
	return nil
}

type mockPublisher struct {
	published []kafka.Message
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
	return nil
}

func (m *mockPublisher) lastEvent(t *testing.T) events.PickupEvent {
	t.Helper()
	if len(m.published) == 0 {
		t.Fatal("expected at least one published event")
	}
	var event events.PickupEvent
	if err := m.published[len(m.published)-1].DecodeValue(&event); err != nil {
		t.Fatalf("failed to decode published event: %v", err)
	}
	return event
}

func testConfig() *config.Config {
	return &config.Config{
		MaxNotesLength: 500,
		Log: logger.New(logger.Config{
			Level:  logger.ERROR,
			Format: logger.TEXT,
			Output: io.Discard,
		}),
	}
}

func newTestService(repo *mockRequestRepository, pub *mockPublisher) BookingService {
	cfg := testConfig()
	window := slots.NewWindow(8, 18)
	requestValidator := validator.NewRequestValidator(window, cfg.MaxNotesLength, cfg.Log)
	var publisher EventPublisher
	if pub != nil {
		publisher = pub
	}
	return NewBookingService(repo, requestValidator, window, publisher, cfg)
}

func validRequest() *model.PickupRequest {
	return &model.PickupRequest{
		UserID:    "user-1",
		UserName:  "Dana Smith",
		Address:   "12 Riverside Lane, Springfield",
		Phone:     "+14155550123",
		WasteType: model.WasteHousehold,
		Date:      "2025-06-01",
		Time:      "10:00 AM",
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
}

// --- ListBookedSlots ---

func TestListBookedSlots_AllStatusesOccupySlots(t *testing.T) {
	repo := &mockRequestRepository{
		findByDateFn: func(ctx context.Context, date string) ([]*model.PickupRequest, error) {
			return []*model.PickupRequest{
				{Time: "2:00 PM", Status: model.StatusCancelled},
				{Time: "9:00 AM", Status: model.StatusPending},
				{Time: "11:00 AM", Status: model.StatusCompleted},
			}, nil
		},
	}
	svc := newTestService(repo, nil)

	booked, err := svc.ListBookedSlots(context.Background(), "2025-06-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Window order, cancelled slot included.
	want := []string{"9:00 AM", "11:00 AM", "2:00 PM"}
	if len(booked) != len(want) {
		t.Fatalf("expected %d booked slots, got %d: %v", len(want), len(booked), booked)
	}
	for i, label := range want {
		if booked[i] != label {
			t.Errorf("booked[%d]: expected %q, got %q", i, label, booked[i])
		}
	}
}

func TestListBookedSlots_NoRecords(t *testing.T) {
	svc := newTestService(&mockRequestRepository{}, nil)

	booked, err := svc.ListBookedSlots(context.Background(), "2025-06-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(booked) != 0 {
		t.Errorf("expected no booked slots for an empty date, got %v", booked)
	}
}

func TestListBookedSlots_EmptyDate(t *testing.T) {
	svc := newTestService(&mockRequestRepository{}, nil)

	_, err := svc.ListBookedSlots(context.Background(), "")
	assertAppErrorCode(t, err, apperrors.CodeInvalidInput)
}

func TestListBookedSlots_StoreFailure(t *testing.T) {
	repo := &mockRequestRepository{
		findByDateFn: func(ctx context.Context, date string) ([]*model.PickupRequest, error) {
			return nil, errors.New("connection reset")
		},
	}
	svc := newTestService(repo, nil)

	_, err := svc.ListBookedSlots(context.Background(), "2025-06-01")
	assertAppErrorCode(t, err, apperrors.CodeUnavailable)
}

// --- Submit ---

func TestSubmit_Success(t *testing.T) {
	var inserted *model.PickupRequest
	repo := &mockRequestRepository{
		insertFn: func(ctx context.Context, req *model.PickupRequest) error {
			req.ID = "665a1b2c3d4e5f6a7b8c9d0e"
			inserted = req
			return nil
		},
	}
	pub := &mockPublisher{}
	svc := newTestService(repo, pub)

	req := validRequest()
	req.UserName = "  Dana   Smith  "

	if err := svc.Submit(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inserted == nil {
		t.Fatal("expected request to be inserted")
	}
	if inserted.Status != model.StatusPending {
		t.Errorf("expected status %q, got %q", model.StatusPending, inserted.Status)
	}
	if inserted.UserName != "Dana Smith" {
		t.Errorf("expected sanitized user name, got %q", inserted.UserName)
	}

	event := pub.lastEvent(t)
	if event.Type != events.TypePickupCreated {
		t.Errorf("expected event type %q, got %q", events.TypePickupCreated, event.Type)
	}
	if event.RequestID != "665a1b2c3d4e5f6a7b8c9d0e" {
		t.Errorf("expected event request ID to match inserted ID, got %q", event.RequestID)
	}
}

func TestSubmit_ValidationFailure(t *testing.T) {
	repoCalled := false
	repo := &mockRequestRepository{
		findByDateTimeFn: func(ctx context.Context, date, timeLabel string) ([]*model.PickupRequest, error) {
			repoCalled = true
			return nil, nil
		},
		insertFn: func(ctx context.Context, req *model.PickupRequest) error {
			repoCalled = true
			return nil
		},
	}
	svc := newTestService(repo, nil)

	tests := []struct {
		name   string
		mutate func(req *model.PickupRequest)
	}{
		{"missing user name", func(req *model.PickupRequest) { req.UserName = "" }},
		{"short address", func(req *model.PickupRequest) { req.Address = "x" }},
		{"unknown waste type", func(req *model.PickupRequest) { req.WasteType = "nuclear" }},
		{"bad date format", func(req *model.PickupRequest) { req.Date = "01-06-2025" }},
		{"time outside window", func(req *model.PickupRequest) { req.Time = "7:00 AM" }},
		{"non-hourly time", func(req *model.PickupRequest) { req.Time = "10:30 AM" }},
		{"phone with letters", func(req *model.PickupRequest) { req.Phone = "call me maybe" }},
		{"oversized notes", func(req *model.PickupRequest) { req.Notes = strings.Repeat("x", 600) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := svc.Submit(context.Background(), req)
			assertAppErrorCode(t, err, apperrors.CodeValidation)
			if repoCalled {
				t.Error("store must not be touched when local validation fails")
			}
		})
	}
}

func TestSubmit_OverlongNotesRejected(t *testing.T) {
	inserted := false
	repo := &mockRequestRepository{
		insertFn: func(ctx context.Context, req *model.PickupRequest) error {
			inserted = true
			return nil
		},
	}
	svc := newTestService(repo, nil)

	req := validRequest()
	req.Notes = strings.Repeat("n", 600)

	err := svc.Submit(context.Background(), req)
	assertAppErrorCode(t, err, apperrors.CodeValidation)
	if inserted {
		t.Error("over-long notes must be rejected, not stored")
	}
	if got := len([]rune(req.Notes)); got != 600 {
		t.Errorf("notes must not be shortened on rejection, got %d characters", got)
	}
}

func TestSubmit_SlotConflict(t *testing.T) {
	inserted := false
	repo := &mockRequestRepository{
		findByDateTimeFn: func(ctx context.Context, date, timeLabel string) ([]*model.PickupRequest, error) {
			return []*model.PickupRequest{
				{ID: "665a1b2c3d4e5f6a7b8c9d0e", Date: date, Time: timeLabel, Status: model.StatusPending},
			}, nil
		},
		insertFn: func(ctx context.Context, req *model.PickupRequest) error {
			inserted = true
			return nil
		},
	}
	svc := newTestService(repo, nil)

	err := svc.Submit(context.Background(), validRequest())
	assertAppErrorCode(t, err, apperrors.CodeConflict)
	if inserted {
		t.Error("conflicting request must not be inserted")
	}
}

func TestSubmit_CancelledRecordStillBlocksSlot(t *testing.T) {
	repo := &mockRequestRepository{
		findByDateTimeFn: func(ctx context.Context, date, timeLabel string) ([]*model.PickupRequest, error) {
			return []*model.PickupRequest{
				{ID: "665a1b2c3d4e5f6a7b8c9d0e", Date: date, Time: timeLabel, Status: model.StatusCancelled},
			}, nil
		},
	}
	svc := newTestService(repo, nil)

	err := svc.Submit(context.Background(), validRequest())
	assertAppErrorCode(t, err, apperrors.CodeConflict)
}

func TestSubmit_InsertFailure(t *testing.T) {
	repo := &mockRequestRepository{
		insertFn: func(ctx context.Context, req *model.PickupRequest) error {
			return errors.New("write concern error")
		},
	}
	svc := newTestService(repo, nil)

	err := svc.Submit(context.Background(), validRequest())
	assertAppErrorCode(t, err, apperrors.CodeUnavailable)
}

func TestSubmit_PublishFailureDoesNotFailBooking(t *testing.T) {
	repo := &mockRequestRepository{}
	pub := &mockPublisher{err: errors.New("broker unreachable")}
	svc := newTestService(repo, pub)

	if err := svc.Submit(context.Background(), validRequest()); err != nil {
		t.Fatalf("booking must succeed even when publish fails, got: %v", err)
	}
}

// --- Reschedule ---

func TestReschedule_Success(t *testing.T) {
	const id = "665a1b2c3d4e5f6a7b8c9d0e"

	var gotDate, gotTime, gotStatus string
	repo := &mockRequestRepository{
		findByIDFn: func(ctx context.Context, reqID string) (*model.PickupRequest, error) {
			req := validRequest()
			req.ID = id
			req.Status = model.StatusAssigned
			return req, nil
		},
		updateScheduleFn: func(ctx context.Context, reqID, date, timeLabel, status string) error {
			gotDate, gotTime, gotStatus = date, timeLabel, status
			return nil
		},
	}
	pub := &mockPublisher{}
	svc := newTestService(repo, pub)

	err := svc.Reschedule(context.Background(), id, "2025-06-02", "3:00 PM", "going on holiday")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotDate != "2025-06-02" || gotTime != "3:00 PM" {
		t.Errorf("expected schedule 2025-06-02 3:00 PM, got %s %s", gotDate, gotTime)
	}
	if gotStatus != model.StatusPending {
		t.Errorf("reschedule must reset status to pending, got %q", gotStatus)
	}

	event := pub.lastEvent(t)
	if event.Type != events.TypePickupRescheduled {
		t.Errorf("expected event type %q, got %q", events.TypePickupRescheduled, event.Type)
	}
	if event.Date != "2025-06-02" || event.Time != "3:00 PM" {
		t.Errorf("event must carry the new slot, got %s %s", event.Date, event.Time)
	}
	if event.Reason != "going on holiday" {
		t.Errorf("expected reason on event, got %q", event.Reason)
	}
}

func TestReschedule_OwnSlotDoesNotConflict(t *testing.T) {
	const id = "665a1b2c3d4e5f6a7b8c9d0e"

	repo := &mockRequestRepository{
		findByIDFn: func(ctx context.Context, reqID string) (*model.PickupRequest, error) {
			req := validRequest()
			req.ID = id
			return req, nil
		},
		findByDateTimeFn: func(ctx context.Context, date, timeLabel string) ([]*model.PickupRequest, error) {
			// The only occupant of the target slot is the request itself.
			req := validRequest()
			req.ID = id
			return []*model.PickupRequest{req}, nil
		},
	}
	svc := newTestService(repo, nil)

	if err := svc.Reschedule(context.Background(), id, "2025-06-01", "10:00 AM", ""); err != nil {
		t.Fatalf("rescheduling onto own slot must not conflict, got: %v", err)
	}
}

func TestReschedule_Conflict(t *testing.T) {
	const id = "665a1b2c3d4e5f6a7b8c9d0e"

	updated := false
	repo := &mockRequestRepository{
		findByIDFn: func(ctx context.Context, reqID string) (*model.PickupRequest, error) {
			req := validRequest()
			req.ID = id
			return req, nil
		},
		findByDateTimeFn: func(ctx context.Context, date, timeLabel string) ([]*model.PickupRequest, error) {
			other := validRequest()
			other.ID = "775a1b2c3d4e5f6a7b8c9d0f"
			other.UserID = "user-2"
			return []*model.PickupRequest{other}, nil
		},
		updateScheduleFn: func(ctx context.Context, reqID, date, timeLabel, status string) error {
			updated = true
			return nil
		},
	}
	svc := newTestService(repo, nil)

	err := svc.Reschedule(context.Background(), id, "2025-06-01", "10:00 AM", "")
	assertAppErrorCode(t, err, apperrors.CodeConflict)
	if updated {
		t.Error("conflicting reschedule must leave the record untouched")
	}
}

func TestReschedule_NotFound(t *testing.T) {
	repo := &mockRequestRepository{}
	svc := newTestService(repo, nil)

	err := svc.Reschedule(context.Background(), "665a1b2c3d4e5f6a7b8c9d0e", "2025-06-02", "9:00 AM", "")
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

func TestReschedule_InvalidSlot(t *testing.T) {
	repo := &mockRequestRepository{}
	svc := newTestService(repo, nil)

	tests := []struct {
		name string
		date string
		time string
	}{
		{"bad date", "June 2nd", "9:00 AM"},
		{"time outside window", "2025-06-02", "7:00 PM"},
		{"empty time", "2025-06-02", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Reschedule(context.Background(), "665a1b2c3d4e5f6a7b8c9d0e", tt.date, tt.time, "")
			assertAppErrorCode(t, err, apperrors.CodeValidation)
		})
	}
}

// --- Cancel ---

func TestCancel_Success(t *testing.T) {
	const id = "665a1b2c3d4e5f6a7b8c9d0e"

	var gotMeta model.CancelMeta
	repo := &mockRequestRepository{
		findByIDFn: func(ctx context.Context, reqID string) (*model.PickupRequest, error) {
			req := validRequest()
			req.ID = id
			return req, nil
		},
		cancelFn: func(ctx context.Context, reqID string, meta model.CancelMeta) error {
			gotMeta = meta
			return nil
		},
	}
	pub := &mockPublisher{}
	svc := newTestService(repo, pub)

	meta := model.CancelMeta{CancelledBy: "user-1", Reason: "moved house"}
	if err := svc.Cancel(context.Background(), id, meta); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMeta.CancelledBy != "user-1" || gotMeta.Reason != "moved house" {
		t.Errorf("cancel metadata not passed through: %+v", gotMeta)
	}

	event := pub.lastEvent(t)
	if event.Type != events.TypePickupCancelled {
		t.Errorf("expected event type %q, got %q", events.TypePickupCancelled, event.Type)
	}
	if event.Status != model.StatusCancelled {
		t.Errorf("expected event status %q, got %q", model.StatusCancelled, event.Status)
	}
}

func TestCancel_MissingCancelledBy(t *testing.T) {
	repo := &mockRequestRepository{}
	svc := newTestService(repo, nil)

	err := svc.Cancel(context.Background(), "665a1b2c3d4e5f6a7b8c9d0e", model.CancelMeta{})
	assertAppErrorCode(t, err, apperrors.CodeValidation)
}

func TestCancel_NotFound(t *testing.T) {
	repo := &mockRequestRepository{}
	svc := newTestService(repo, nil)

	err := svc.Cancel(context.Background(), "665a1b2c3d4e5f6a7b8c9d0e", model.CancelMeta{CancelledBy: "user-1"})
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

// --- GetByID / ListByUser ---

func TestGetByID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		repoErr  error
		wantCode string
	}{
		{"empty id", "", nil, apperrors.CodeInvalidInput},
		{"not found", "665a1b2c3d4e5f6a7b8c9d0e", pickuperrors.ErrNotFound, apperrors.CodeNotFound},
		{"malformed id", "not-an-object-id", pickuperrors.ErrInvalidID, apperrors.CodeInvalidInput},
		{"store failure", "665a1b2c3d4e5f6a7b8c9d0e", errors.New("socket closed"), apperrors.CodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRequestRepository{
				findByIDFn: func(ctx context.Context, id string) (*model.PickupRequest, error) {
					return nil, tt.repoErr
				},
			}
			svc := newTestService(repo, nil)

			_, err := svc.GetByID(context.Background(), tt.id)
			assertAppErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestListByUser_NormalizesPagination(t *testing.T) {
	var gotLimit int
	var gotOffset int64
	repo := &mockRequestRepository{
		findByUserFn: func(ctx context.Context, userID string, limit int, offset int64) ([]*model.PickupRequest, error) {
			gotLimit, gotOffset = limit, offset
			return []*model.PickupRequest{validRequest()}, nil
		},
		countByUserFn: func(ctx context.Context, userID string) (int64, error) {
			return 1, nil
		},
	}
	svc := newTestService(repo, nil)

	requests, total, err := svc.ListByUser(context.Background(), "user-1", -5, -10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 10 || gotOffset != 0 {
		t.Errorf("expected normalized limit=10 offset=0, got limit=%d offset=%d", gotLimit, gotOffset)
	}
	if total != 1 || len(requests) != 1 {
		t.Errorf("expected 1 request with total 1, got %d with total %d", len(requests), total)
	}
}

func TestListByUser_CountFailure(t *testing.T) {
	repo := &mockRequestRepository{
		countByUserFn: func(ctx context.Context, userID string) (int64, error) {
			return 0, errors.New("timeout")
		},
	}
	svc := newTestService(repo, nil)

	_, _, err := svc.ListByUser(context.Background(), "user-1", 10, 0)
	assertAppErrorCode(t, err, apperrors.CodeUnavailable)
}

// --- End-to-end slot lifecycle against an in-memory store ---

type memoryRequestRepository struct {
	seq      int
	requests map[string]*model.PickupRequest
}

func newMemoryRequestRepository() *memoryRequestRepository {
	return &memoryRequestRepository{requests: make(map[string]*model.PickupRequest)}
}

func (m *memoryRequestRepository) Insert(ctx context.Context, req *model.PickupRequest) error {
	m.seq++
	copied := *req
	copied.ID = fmt.Sprintf("req-%d", m.seq)
	m.requests[copied.ID] = &copied
	req.ID = copied.ID
	return nil
}

func (m *memoryRequestRepository) FindByID(ctx context.Context, id string) (*model.PickupRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, pickuperrors.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (m *memoryRequestRepository) FindByDate(ctx context.Context, date string) ([]*model.PickupRequest, error) {
	var out []*model.PickupRequest
	for _, req := range m.requests {
		if req.Date == date {
			copied := *req
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryRequestRepository) FindByDateTime(ctx context.Context, date, timeLabel string) ([]*model.PickupRequest, error) {
	var out []*model.PickupRequest
	for _, req := range m.requests {
		if req.Date == date && req.Time == timeLabel {
			copied := *req
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryRequestRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.PickupRequest, error) {
	var out []*model.PickupRequest
	for _, req := range m.requests {
		if req.UserID == userID {
			copied := *req
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryRequestRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	for _, req := range m.requests {
		if req.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *memoryRequestRepository) UpdateSchedule(ctx context.Context, id, date, timeLabel, status string) error {
	req, ok := m.requests[id]
	if !ok {
		return pickuperrors.ErrNotFound
	}
	req.Date = date
	req.Time = timeLabel
	req.Status = status
	return nil
}

func (m *memoryRequestRepository) Cancel(ctx context.Context, id string, meta model.CancelMeta) error {
	req, ok := m.requests[id]
	if !ok {
		return pickuperrors.ErrNotFound
	}
	req.Status = model.StatusCancelled
	req.CancelledBy = meta.CancelledBy
	req.CancelReason = meta.Reason
	return nil
}

// TestSlotLifecycle walks the full contention story: a slot is taken, a second
// user is refused, the first user moves away, and the slot opens up again.
func TestSlotLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRequestRepository()

	cfg := testConfig()
	window := slots.NewWindow(8, 18)
	requestValidator := validator.NewRequestValidator(window, cfg.MaxNotesLength, cfg.Log)
	lifecycle := NewBookingService(repo, requestValidator, window, nil, cfg)

	// User A books 2025-06-01 10:00 AM.
	first := validRequest()
	if err := lifecycle.Submit(ctx, first); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	// User B is refused the same slot.
	second := validRequest()
	second.UserID = "user-2"
	second.UserName = "Riley Jones"
	err := lifecycle.Submit(ctx, second)
	assertAppErrorCode(t, err, apperrors.CodeConflict)

	// User A moves to 11:00 AM; the record reflects the new slot with its
	// status reset.
	if err := lifecycle.Reschedule(ctx, first.ID, "2025-06-01", "11:00 AM", ""); err != nil {
		t.Fatalf("reschedule failed: %v", err)
	}
	moved, err := lifecycle.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("fetch after reschedule failed: %v", err)
	}
	if moved.Date != "2025-06-01" || moved.Time != "11:00 AM" || moved.Status != model.StatusPending {
		t.Fatalf("unexpected record after reschedule: date=%s time=%s status=%s", moved.Date, moved.Time, moved.Status)
	}

	// The vacated slot is free for user B now.
	if err := lifecycle.Submit(ctx, second); err != nil {
		t.Fatalf("rebooking the vacated slot failed: %v", err)
	}

	booked, err := lifecycle.ListBookedSlots(ctx, "2025-06-01")
	if err != nil {
		t.Fatalf("listing booked slots failed: %v", err)
	}
	want := []string{"10:00 AM", "11:00 AM"}
	if len(booked) != len(want) {
		t.Fatalf("expected booked slots %v, got %v", want, booked)
	}
	for i := range want {
		if booked[i] != want[i] {
			t.Errorf("booked[%d]: expected %q, got %q", i, want[i], booked[i])
		}
	}

	// Cancelling user B keeps the record retrievable, not cancellable again,
	// and the slot stays occupied.
	if err := lifecycle.Cancel(ctx, second.ID, model.CancelMeta{CancelledBy: "user-2"}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	cancelled, err := lifecycle.GetByID(ctx, second.ID)
	if err != nil {
		t.Fatalf("fetch after cancel failed: %v", err)
	}
	if cancelled.Status != model.StatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}
	if cancelled.CanCancel() {
		t.Error("a cancelled request must not be cancellable again")
	}
	third := validRequest()
	third.UserID = "user-3"
	third.UserName = "Sam Carter"
	err = lifecycle.Submit(ctx, third)
	assertAppErrorCode(t, err, apperrors.CodeConflict)
}
