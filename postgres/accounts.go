package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibenet/backend/api"
)

// InsertAccount inserts a new account. Returns api.ErrDuplicateEmail when
// the (normalized) email is already taken.
func (pg *Postgres) InsertAccount(ctx context.Context, acc api.Account) (api.Account, error) {
	m := &account{
		Email:        acc.Email,
		Name:         acc.Name,
		PasswordHash: acc.PasswordHash,
		ProfilePic:   acc.ProfilePic,
		Bio:          acc.Bio,
	}
	if _, err := pg.bun.NewInsert().Model(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return api.Account{}, api.ErrDuplicateEmail
		}
		return api.Account{}, wrapErr("insert account", err)
	}
	return m.APIAccount(), nil
}

// GetAccount looks an account up by (normalized) email.
func (pg *Postgres) GetAccount(ctx context.Context, email string) (api.Account, error) {
	var m account
	err := pg.bun.NewSelect().Model(&m).Where("email = ?", email).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Account{}, api.ErrNotFound
	}
	if err != nil {
		return api.Account{}, wrapErr("select account", err)
	}
	return m.APIAccount(), nil
}

// UpdateBio replaces the account's bio.
func (pg *Postgres) UpdateBio(ctx context.Context, email, bio string) error {
	res, err := pg.bun.NewUpdate().
		Model((*account)(nil)).
		Set("bio = ?", bio).
		Where("email = ?", email).
		Exec(ctx)
	if err != nil {
		return wrapErr("update bio", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr("update bio", err)
	}
	if n == 0 {
		return api.ErrNotFound
	}
	return nil
}

// RecordWatch adds one watch unit to the author's counter. The increment
// is a single atomic statement.
func (pg *Postgres) RecordWatch(ctx context.Context, authorEmail string) error {
	if _, err := pg.bun.NewUpdate().
		Model((*account)(nil)).
		Set("watch_hours = watch_hours + 1").
		Where("email = ?", authorEmail).
		Exec(ctx); err != nil {
		return wrapErr("record watch", err)
	}
	return nil
}
