package audit

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attachpro/backend/internal/models"
)

// Entry describes one action to record.
type Entry struct {
	ActorID    *uuid.UUID
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]any
	IP         string
	UserAgent  string
}

// store is the persistence surface the recorder needs; satisfied by *Repository.
type store interface {
	Insert(ctx context.Context, log *models.AuditLog) error
}

// Recorder appends audit rows as a side channel. Record never returns an
// error: a failed audit write must not abort or revert the operation it
// accompanies, so persistence failures are logged and swallowed.
type Recorder struct {
	store  store
	logger *zap.Logger
}

// NewRecorder creates an audit recorder.
func NewRecorder(store store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, logger: logger}
}

// Record persists one audit entry, swallowing any storage failure.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	log := &models.AuditLog{
		UserID:    e.ActorID,
		Action:    e.Action,
		IP:        e.IP,
		UserAgent: e.UserAgent,
	}
	if e.EntityType != "" {
		log.EntityType = &e.EntityType
	}
	if e.EntityID != "" {
		log.EntityID = &e.EntityID
	}
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			r.logger.Warn("audit metadata marshal failed", zap.Error(err), zap.String("action", e.Action))
		} else {
			log.Metadata = raw
		}
	}
	if err := r.store.Insert(ctx, log); err != nil {
		r.logger.Error("audit write failed", zap.Error(err), zap.String("action", e.Action))
	}
}

// FromRequest fills request-origin fields (IP, user agent) from a gin context.
func FromRequest(c *gin.Context, e Entry) Entry {
	e.IP = c.ClientIP()
	e.UserAgent = c.Request.UserAgent()
	return e
}
