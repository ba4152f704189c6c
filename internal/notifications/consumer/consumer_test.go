package consumer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	notificationerrors "curbside/internal/notifications/errors"
	"curbside/pkg/events"
	"curbside/pkg/kafka"
	"curbside/pkg/logger"
	"curbside/pkg/model"
)

type mockNotificationService struct {
	recordFn func(ctx context.Context, event events.PickupEvent) error
	recorded []events.PickupEvent
}

func (m *mockNotificationService) RecordFromEvent(ctx context.Context, event events.PickupEvent) error {
	m.recorded = append(m.recorded, event)
	if m.recordFn != nil {
		return m.recordFn(ctx, event)
	}
	return nil
}

func (m *mockNotificationService) ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Notification, int64, error) {
	return nil, 0, nil
}

func (m *mockNotificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (m *mockNotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return nil
}

func (m *mockNotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: io.Discard})
}

func sampleMessage() kafka.Message {
	event := events.PickupEvent{
		Type:      events.TypePickupCreated,
		RequestID: "665a1b2c3d4e5f6a7b8c9d0e",
		UserID:    "user-1",
		WasteType: model.WasteHousehold,
		Date:      "2025-06-01",
		Time:      "10:00 AM",
	}
	return kafka.NewMessage().
		WithKey(event.UserID).
		WithValue(event).
		WithEventType(event.Type).
		Build()
}

func TestEventHandler_RecordsEvent(t *testing.T) {
	svc := &mockNotificationService{}
	handler := eventHandler(svc, testLogger())

	if err := handler(context.Background(), sampleMessage()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(svc.recorded) != 1 {
		t.Fatalf("expected 1 recorded event, got %d", len(svc.recorded))
	}
	if svc.recorded[0].Type != events.TypePickupCreated {
		t.Errorf("expected type %q, got %q", events.TypePickupCreated, svc.recorded[0].Type)
	}
}

func TestEventHandler_UndecodablePayloadIsPermanent(t *testing.T) {
	svc := &mockNotificationService{}
	handler := eventHandler(svc, testLogger())

	msg := kafka.NewMessage().
		WithKey("user-1").
		WithRawValue([]byte("{not json")).
		Build()

	err := handler(context.Background(), msg)
	if err == nil {
		t.Fatal("expected error for undecodable payload")
	}
	if got := kafka.ClassifyError(err); got != kafka.ErrorTypePermanent {
		t.Errorf("undecodable payload must not be retried, classified as %v", got)
	}
	if len(svc.recorded) != 0 {
		t.Error("undecodable payload must not reach the service")
	}
}

func TestEventHandler_UnsupportedEventIsPermanent(t *testing.T) {
	svc := &mockNotificationService{
		recordFn: func(ctx context.Context, event events.PickupEvent) error {
			return fmt.Errorf("%w: unknown type %q", notificationerrors.ErrUnsupportedEvent, event.Type)
		},
	}
	handler := eventHandler(svc, testLogger())

	err := handler(context.Background(), sampleMessage())
	if err == nil {
		t.Fatal("expected error for unsupported event")
	}
	if got := kafka.ClassifyError(err); got != kafka.ErrorTypePermanent {
		t.Errorf("unsupported event must not be retried, classified as %v", got)
	}
}

func TestEventHandler_StoreFailureIsTransient(t *testing.T) {
	svc := &mockNotificationService{
		recordFn: func(ctx context.Context, event events.PickupEvent) error {
			return errors.New("write concern error")
		},
	}
	handler := eventHandler(svc, testLogger())

	err := handler(context.Background(), sampleMessage())
	if err == nil {
		t.Fatal("expected error for store failure")
	}
	if got := kafka.ClassifyError(err); got != kafka.ErrorTypeTransient {
		t.Errorf("store failure should be retried, classified as %v", got)
	}
}
