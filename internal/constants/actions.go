package constants

// Audit log actions.
const (
	Create      = "CREATE"
	Update      = "UPDATE"
	Delete      = "DELETE"
	CreateIndex = "CREATE_INDEX"
	Seed        = "SEED"
)

const (
	AuditLogsCollection    = "audit_logs"
	DefaultBooksCollection = "books"
)
