package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

const createActivitiesSQL = `
CREATE TABLE IF NOT EXISTS activities (
    id             TEXT PRIMARY KEY,
    title          TEXT NOT NULL,
    consumption_wh BIGINT NOT NULL,
    source         TEXT NOT NULL DEFAULT ''
)`

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createActivitiesSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS activities`)
			return err
		},
	)
}
