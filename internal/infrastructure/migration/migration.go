package migration

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"
)

// RunMigrations applies every migration in order. Each step is idempotent.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("Starting database migrations")

	for _, m := range Migrations {
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			slog.Error("Migration failed", "name", m.Name, "error", err)
			return err
		}
		slog.Info("Migration completed", "name", m.Name)
	}

	slog.Info("All migrations completed successfully")
	return nil
}

// Migration represents a database migration
type Migration struct {
	Name string
	SQL  string
}

// Migrations lists the schema steps in application order.
var Migrations = []Migration{
	{
		Name: "create_resume_snapshots",
		SQL: `
		CREATE TABLE IF NOT EXISTS resume_snapshots (
			id UUID PRIMARY KEY,
			data JSONB NOT NULL DEFAULT '{}'::jsonb,
			template TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	},
	{
		Name: "index_resume_snapshots_updated_at",
		SQL:  `CREATE INDEX IF NOT EXISTS resume_snapshots_updated_at_idx ON resume_snapshots (updated_at DESC);`,
	},
}
