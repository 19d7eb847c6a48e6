package postgres

import (
	"context"

	"github.com/vibenet/backend/api"
)

// InsertNotification appends a notification. Unknown targets are dropped
// without error: fan-out is best effort and never fails the triggering
// operation.
func (pg *Postgres) InsertNotification(ctx context.Context, n api.Notification) error {
	exists, err := pg.bun.NewSelect().Model((*account)(nil)).
		Where("email = ?", n.Account).
		Exists(ctx)
	if err != nil {
		return wrapErr("check notification target", err)
	}
	if !exists {
		return nil
	}
	m := &notification{
		AccountEmail: n.Account,
		NotifText:    n.Text,
	}
	if _, err := pg.bun.NewInsert().Model(m).Exec(ctx); err != nil {
		return wrapErr("insert notification", err)
	}
	return nil
}

// ListNotifications returns the account's newest notifications.
func (pg *Postgres) ListNotifications(ctx context.Context, email string, limit int) ([]api.Notification, error) {
	var nots []notification
	err := pg.bun.NewSelect().Model(&nots).
		Where("account_email = ?", email).
		Order("id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, wrapErr("scan notifications", err)
	}
	out := make([]api.Notification, len(nots))
	for i, n := range nots {
		out[i] = n.APINotification()
	}
	return out, nil
}
