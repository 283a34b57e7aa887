package utils

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"plp-bookstore/internal/models"
)

// Logger records audit entries in the audit_logs collection. A Logger with
// no collection only writes to the application log.
type Logger struct {
	Collection *mongo.Collection
}

func (l *Logger) Log(ctx context.Context, entity, action string, data any) error {
	performedBy := UserIDFrom(ctx)
	if performedBy == "" {
		performedBy = "system"
	}
	entry := models.AuditLog{
		Timestamp:   time.Now(),
		Entity:      entity,
		Action:      action,
		PerformedBy: performedBy,
		Data:        data,
	}

	zap.S().Infow("audit", "entity", entity, "action", action, "performed_by", performedBy)
	if l == nil || l.Collection == nil {
		return nil
	}
	if _, err := l.Collection.InsertOne(ctx, entry); err != nil {
		zap.S().Errorf("Writing audit log failed: %v", err)
		return err
	}
	return nil
}
