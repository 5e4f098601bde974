package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/attachpro/backend/internal/models"
)

type memStore struct {
	logs []*models.AuditLog
	err  error
}

func (s *memStore) Insert(_ context.Context, log *models.AuditLog) error {
	if s.err != nil {
		return s.err
	}
	s.logs = append(s.logs, log)
	return nil
}

func TestRecorderRecord(t *testing.T) {
	store := &memStore{}
	rec := NewRecorder(store, nil)
	actor := uuid.New()

	rec.Record(context.Background(), Entry{
		ActorID:    &actor,
		Action:     models.ActionLogin,
		EntityType: "user",
		EntityID:   actor.String(),
		Metadata:   map[string]any{"attempt": 1},
		IP:         "10.0.0.1",
	})

	if len(store.logs) != 1 {
		t.Fatalf("got %d rows, want 1", len(store.logs))
	}
	log := store.logs[0]
	if log.Action != models.ActionLogin {
		t.Fatalf("action = %q, want %q", log.Action, models.ActionLogin)
	}
	if log.UserID == nil || *log.UserID != actor {
		t.Fatalf("actor not recorded: %v", log.UserID)
	}
	if log.EntityType == nil || *log.EntityType != "user" {
		t.Fatalf("entity type not recorded: %v", log.EntityType)
	}
	if len(log.Metadata) == 0 {
		t.Fatal("metadata not recorded")
	}
}

func TestRecorderSwallowsStoreFailure(t *testing.T) {
	rec := NewRecorder(&memStore{err: errors.New("db down")}, nil)

	// Must not panic or propagate: auditing is a side channel.
	rec.Record(context.Background(), Entry{Action: models.ActionLogin})
}

func TestRecorderOmitsEmptyEntityFields(t *testing.T) {
	store := &memStore{}
	rec := NewRecorder(store, nil)

	rec.Record(context.Background(), Entry{Action: models.ActionLogin})

	if len(store.logs) != 1 {
		t.Fatalf("got %d rows, want 1", len(store.logs))
	}
	if store.logs[0].EntityType != nil || store.logs[0].EntityID != nil {
		t.Fatalf("expected nil entity fields, got %v / %v", store.logs[0].EntityType, store.logs[0].EntityID)
	}
}
