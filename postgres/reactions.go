package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/vibenet/backend/api"
)

// applyReaction computes the next counter map when an account holding prev
// ("" for none) reacts with next. Decrements floor at zero.
func applyReaction(counts map[string]int, prev, next string) map[string]int {
	out := make(map[string]int, len(counts)+1)
	for emoji, n := range counts {
		out[emoji] = n
	}
	if prev != "" && out[prev] > 0 {
		out[prev]--
	}
	out[next]++
	return out
}

// ToggleReaction applies the reaction policy for one account on one post:
// a repeat of the current emoji is a no-op, any other emoji replaces the
// edge and shifts the counts. The post row is locked for the duration, so
// the read-decide-write sequence is serialized per post and the counter
// map never loses a concurrent update.
func (pg *Postgres) ToggleReaction(ctx context.Context, email string, postID int64, emoji string) (api.Post, error) {
	var out api.Post
	err := pg.bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var p post
		err := tx.NewSelect().Model(&p).Where("id = ?", postID).For("UPDATE").Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return api.ErrNotFound
		}
		if err != nil {
			return err
		}

		prev := ""
		var edge reactionEdge
		err = tx.NewSelect().Model(&edge).
			Where("account_email = ? AND post_id = ?", email, postID).
			Scan(ctx)
		switch {
		case err == nil:
			prev = edge.Emoji
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		if prev == emoji {
			out = p.APIPost()
			out.UserReaction = prev
			return nil
		}

		if prev != "" {
			if _, err := tx.NewDelete().Model((*reactionEdge)(nil)).
				Where("account_email = ? AND post_id = ?", email, postID).
				Exec(ctx); err != nil {
				return err
			}
		}
		if _, err := tx.NewInsert().Model(&reactionEdge{
			AccountEmail: email,
			PostID:       postID,
			Emoji:        emoji,
		}).Exec(ctx); err != nil {
			return err
		}

		p.Reactions = applyReaction(p.Reactions, prev, emoji)
		if _, err := tx.NewUpdate().Model(&p).Column("reactions").WherePK().Exec(ctx); err != nil {
			return err
		}

		out = p.APIPost()
		out.UserReaction = emoji
		return nil
	})
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return api.Post{}, err
		}
		return api.Post{}, wrapErr("toggle reaction", err)
	}
	return out, nil
}

// ViewerReactions returns the viewer's current emoji for each of the given
// posts.
func (pg *Postgres) ViewerReactions(ctx context.Context, email string, postIDs []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var edges []reactionEdge
	err := pg.bun.NewSelect().Model(&edges).
		Where("account_email = ?", email).
		Where("post_id IN (?)", bun.In(postIDs)).
		Scan(ctx)
	if err != nil {
		return nil, wrapErr("scan viewer reactions", err)
	}
	for _, e := range edges {
		out[e.PostID] = e.Emoji
	}
	return out, nil
}
