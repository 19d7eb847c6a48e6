package postgres

import (
	"context"

	"github.com/vibenet/backend/api"
)

// InsertMessage appends a direct message. The returned message holds the
// generated id and timestamp.
func (pg *Postgres) InsertMessage(ctx context.Context, m api.Message) (api.Message, error) {
	row := &message{
		Sender:    m.Sender,
		Recipient: m.Recipient,
		MsgText:   m.Text,
	}
	if _, err := pg.bun.NewInsert().Model(row).Exec(ctx); err != nil {
		return api.Message{}, wrapErr("insert message", err)
	}
	return row.APIMessage(), nil
}

// ListMessages returns the newest messages where email is the sender or
// the recipient.
func (pg *Postgres) ListMessages(ctx context.Context, email string, limit int) ([]api.Message, error) {
	var msgs []message
	err := pg.bun.NewSelect().Model(&msgs).
		Where("sender = ? OR recipient = ?", email, email).
		Order("id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, wrapErr("scan messages", err)
	}
	out := make([]api.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.APIMessage()
	}
	return out, nil
}
