package tracker

import (
	"context"
	"io/fs"

	goerrors "github.com/goliatone/go-errors"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
)

func init() {
	persistence.RegisterModel((*User)(nil))
	persistence.RegisterModel((*Project)(nil))
	persistence.RegisterModel((*Task)(nil))
}

// Migrate applies every pending embedded migration. The persistence client
// shares the connection pool of db.
func Migrate(ctx context.Context, db *bun.DB, opts DatabaseOptions, logger Logger) error {
	if logger == nil {
		logger = defLogger{}
	}

	client, err := persistence.New(opts, db.DB, db.Dialect())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create persistence client")
	}
	client.SetLogger(logger)

	migrationsFS, err := fs.Sub(GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open migrations")
	}

	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
	)

	if err := client.Migrate(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to run migrations")
	}

	if report := client.Report(); report != nil && !report.IsZero() {
		logger.Info("Migrate applied migrations", "report", report.String())
		return nil
	}

	logger.Debug("Migrate no new migrations to run")
	return nil
}
