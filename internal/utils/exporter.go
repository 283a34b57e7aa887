package utils

import (
	"go.uber.org/zap"

	"plp-bookstore/internal/models"
)

// ExportData ships audit entries to the structured log.
func ExportData(logs []models.AuditLog) error {
	for _, entry := range logs {
		zap.L().Info("audit export",
			zap.String("id", entry.ID.Hex()),
			zap.Time("timestamp", entry.Timestamp),
			zap.String("entity", entry.Entity),
			zap.String("action", entry.Action),
			zap.String("performed_by", entry.PerformedBy),
			zap.Any("data", entry.Data),
		)
	}
	return nil
}
