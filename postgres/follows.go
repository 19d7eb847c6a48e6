package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"

	"github.com/vibenet/backend/api"
)

// ToggleFollow inserts the follow edge if absent and deletes it otherwise.
// The insert races through the composite primary key, so two concurrent
// toggles for the same pair cannot double-insert; whichever call loses the
// insert takes the unfollow branch.
func (pg *Postgres) ToggleFollow(ctx context.Context, follower, target string) (bool, error) {
	if follower == target {
		return false, api.ErrSelfFollow
	}
	var following bool
	err := pg.bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewInsert().Model(&followEdge{
			FollowerEmail: follower,
			TargetEmail:   target,
			CreatedAt:     time.Now(),
		}).On("CONFLICT DO NOTHING").Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 1 {
			following = true
			return nil
		}
		// Edge already present: this call is the unfollow half.
		if _, err := tx.NewDelete().Model((*followEdge)(nil)).
			Where("follower_email = ? AND target_email = ?", follower, target).
			Exec(ctx); err != nil {
			return err
		}
		following = false
		return nil
	})
	if err != nil {
		return false, wrapErr("toggle follow", err)
	}
	return following, nil
}

// IsFollowing reports whether the follower->target edge exists.
func (pg *Postgres) IsFollowing(ctx context.Context, follower, target string) (bool, error) {
	exists, err := pg.bun.NewSelect().Model((*followEdge)(nil)).
		Where("follower_email = ? AND target_email = ?", follower, target).
		Exists(ctx)
	if err != nil {
		return false, wrapErr("check follow", err)
	}
	return exists, nil
}

// FollowerCount counts the accounts currently following target.
func (pg *Postgres) FollowerCount(ctx context.Context, target string) (int, error) {
	n, err := pg.bun.NewSelect().Model((*followEdge)(nil)).
		Where("target_email = ?", target).
		Count(ctx)
	if err != nil {
		return 0, wrapErr("count followers", err)
	}
	return n, nil
}
