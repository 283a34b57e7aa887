package daemon

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"plp-bookstore/internal/metrics"
	"plp-bookstore/internal/models"
	"plp-bookstore/internal/utils"
)

const defaultBatchSize = 500

// LogExporter ships audit_logs entries that have not been exported yet and
// flags them once shipped.
type LogExporter struct {
	Coll      *mongo.Collection
	Interval  time.Duration
	BatchSize int64
}

// ExportOnce exports a single batch and returns how many entries it marked.
func (l *LogExporter) ExportOnce(ctx context.Context) (int, error) {
	batch := l.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}).SetLimit(batch)

	cursor, err := l.Coll.Find(ctx, bson.M{"exported": false}, opts)
	if err != nil {
		return 0, fmt.Errorf("find pending audit logs: %w", err)
	}
	var logs []models.AuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		return 0, fmt.Errorf("decode audit logs: %w", err)
	}
	if len(logs) == 0 {
		return 0, nil
	}

	if err := utils.ExportData(logs); err != nil {
		return 0, fmt.Errorf("export audit logs: %w", err)
	}

	updateIds := make([]primitive.ObjectID, 0, len(logs))
	for i := range logs {
		updateIds = append(updateIds, logs[i].ID)
	}
	res, err := l.Coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": updateIds}},
		bson.M{"$set": bson.M{"exported": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark audit logs exported: %w", err)
	}

	metrics.AddExported(int(res.ModifiedCount))
	return int(res.ModifiedCount), nil
}

// Start runs the exporter in the background. The returned stop cancels it and
// waits for the loop to return, so the client can be disconnected afterwards.
func (l *LogExporter) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// Run exports on every tick until ctx is cancelled.
func (l *LogExporter) Run(ctx context.Context) {
	interval := l.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	zap.S().Infof("Audit log exporter started, interval %s", interval)
	for {
		n, err := l.ExportOnce(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			zap.S().Errorf("Audit log export failed: %v", err)
		case n > 0:
			zap.S().Debugf("Exported %d audit log entries", n)
		}

		select {
		case <-ctx.Done():
			zap.S().Info("Audit log exporter stopped")
			return
		case <-ticker.C:
		}
	}
}
