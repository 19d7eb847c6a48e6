// Package postgres persists all VibeNet entities in PostgreSQL via bun.
package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/vibenet/backend/api"
)

// Postgres provides storage in PostgreSQL.
type Postgres struct {
	bun *bun.DB
}

// Connect connects to the database and pings it to ensure the connection
// is working.
func Connect(ctx context.Context, connStr string) (*Postgres, error) {
	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())
	return &Postgres{
		bun: db,
	}, nil
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func (pg *Postgres) EnsureSchema(ctx context.Context) error {
	models := []any{
		(*account)(nil),
		(*post)(nil),
		(*reactionEdge)(nil),
		(*followEdge)(nil),
		(*notification)(nil),
		(*message)(nil),
		(*ad)(nil),
	}
	for _, m := range models {
		if _, err := pg.bun.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return wrapErr("create table", err)
		}
	}

	indexes := []*bun.CreateIndexQuery{
		pg.bun.NewCreateIndex().Model((*post)(nil)).Index("idx_posts_author").Column("author_email"),
		pg.bun.NewCreateIndex().Model((*followEdge)(nil)).Index("idx_follow_edges_target").Column("target_email"),
		pg.bun.NewCreateIndex().Model((*notification)(nil)).Index("idx_notifications_account").Column("account_email"),
		pg.bun.NewCreateIndex().Model((*message)(nil)).Index("idx_messages_sender").Column("sender"),
		pg.bun.NewCreateIndex().Model((*message)(nil)).Index("idx_messages_recipient").Column("recipient"),
	}
	for _, q := range indexes {
		if _, err := q.IfNotExists().Exec(ctx); err != nil {
			return wrapErr("create index", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.IntegrityViolation()
}

// wrapErr tags connectivity failures as storage-unavailable so the HTTP
// layer can tell transient faults from business rejections.
func wrapErr(op string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%s: %w: %v", op, api.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
