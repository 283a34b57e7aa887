package cli

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"plp-bookstore/internal/catalog"
	"plp-bookstore/internal/constants"
	"plp-bookstore/internal/db"
	"plp-bookstore/internal/utils"
)

// cliUser is recorded as performed_by on audit entries written by commands.
const cliUser = "cli"

type session struct {
	books   *mongo.Collection
	audit   *mongo.Collection
	catalog *catalog.Catalog
	logger  utils.Logger
}

func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	if _, err := db.Connect(ctx, opts.Config.MongoURI); err != nil {
		return nil, WrapExitError(ExitCommandError, "cannot reach MongoDB", err)
	}
	books := db.GetCollection(opts.Config.DBName, opts.Config.BooksCollection)
	audit := db.GetCollection(opts.Config.DBName, constants.AuditLogsCollection)
	return &session{
		books:   books,
		audit:   audit,
		catalog: catalog.New(books),
		logger:  utils.Logger{Collection: audit},
	}, nil
}

func (s *session) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db.Disconnect(ctx)
}

// withRequestTimeout bounds a single command round trip by REQUEST_TIMEOUT.
func withRequestTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
