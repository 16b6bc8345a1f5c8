package tracker

import (
	"context"
	"database/sql"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// OpenDB opens the sqlite database described by opts with foreign keys on
func OpenDB(ctx context.Context, opts DatabaseOptions, logger Logger) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, opts.DSN)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open database")
	}

	if opts.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(opts.MaxOpenConns)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if opts.LogQueries {
		db.AddQueryHook(NewQueryLogger(logger))
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to enable foreign keys")
	}

	return db, nil
}

// QueryLogger is a bun query hook that logs every statement at debug level
type QueryLogger struct {
	logger Logger
}

// NewQueryLogger returns a new QueryLogger
func NewQueryLogger(logger Logger) *QueryLogger {
	if logger == nil {
		logger = defLogger{}
	}
	return &QueryLogger{logger: logger}
}

func (h *QueryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	elapsed := time.Since(event.StartTime)
	if event.Err != nil && event.Err != sql.ErrNoRows {
		h.logger.Warn("query failed",
			"operation", event.Operation(),
			"elapsed", elapsed,
			"query", event.Query,
			"error", event.Err,
		)
		return
	}
	h.logger.Debug("query",
		"operation", event.Operation(),
		"elapsed", elapsed,
		"query", event.Query,
	)
}
