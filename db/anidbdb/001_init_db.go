package anidbdb

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func init() {
	migrate(up001, down001)
}

func up001(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE apicall (
			query        TEXT PRIMARY KEY,
			code         INTEGER NOT NULL,
			answer       TEXT NOT NULL,
			time_created INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create apicall table: %w", err)
	}
	return nil
}

func down001(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `DROP TABLE apicall`); err != nil {
		return fmt.Errorf("drop apicall table: %w", err)
	}
	return nil
}
