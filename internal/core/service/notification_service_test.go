package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hska/buch-catalog/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubDedup struct {
	dupResult bool
	dupErr    error
	markErr   error
	marked    []string
}

func (d *stubDedup) IsDuplicate(_ context.Context, _ string) (bool, error) {
	return d.dupResult, d.dupErr
}

func (d *stubDedup) Mark(_ context.Context, buchID string) error {
	if d.markErr != nil {
		return d.markErr
	}
	d.marked = append(d.marked, buchID)
	return nil
}

type stubNotifier struct {
	err  error
	sent []domain.BuchCreated
}

func (n *stubNotifier) NotifyCreated(_ context.Context, e domain.BuchCreated) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, e)
	return nil
}

func createdEvent() domain.BuchCreated {
	return domain.BuchCreated{ID: "b-1", Title: "Alpha", CreatedAt: time.Now().UTC()}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestNotificationService_Process_HappyPath(t *testing.T) {
	notifier := &stubNotifier{}
	dedup := &stubDedup{}
	svc := NewNotificationService(notifier, dedup, zerolog.Nop())

	if err := svc.Process(context.Background(), createdEvent()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].ID != "b-1" {
		t.Errorf("expected one notification, got: %v", notifier.sent)
	}
	if len(dedup.marked) != 1 {
		t.Errorf("expected dedup key marked")
	}
}

func TestNotificationService_Process_DuplicateSkipped(t *testing.T) {
	notifier := &stubNotifier{}
	svc := NewNotificationService(notifier, &stubDedup{dupResult: true}, zerolog.Nop())

	if err := svc.Process(context.Background(), createdEvent()); err != nil {
		t.Fatalf("expected no error for duplicate, got: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("expected no notification for duplicate event")
	}
}

func TestNotificationService_Process_DedupUnavailable(t *testing.T) {
	notifier := &stubNotifier{}
	dedup := &stubDedup{dupErr: errors.New("redis down"), markErr: errors.New("redis down")}
	svc := NewNotificationService(notifier, dedup, zerolog.Nop())

	if err := svc.Process(context.Background(), createdEvent()); err != nil {
		t.Fatalf("expected delivery despite dedup failure, got: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Errorf("expected notification to be sent")
	}
}

func TestNotificationService_Process_SendFailure(t *testing.T) {
	sendErr := errors.New("mail api 503")
	svc := NewNotificationService(&stubNotifier{err: sendErr}, &stubDedup{}, zerolog.Nop())

	err := svc.Process(context.Background(), createdEvent())
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected wrapped send error, got: %v", err)
	}
}
