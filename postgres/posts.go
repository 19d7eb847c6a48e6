package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/vibenet/backend/api"
)

// ListPosts returns the feed page, newest first (descending id, which is
// creation order).
func (pg *Postgres) ListPosts(ctx context.Context, limit, offset int, excludePostIDs ...int64) ([]api.Post, error) {
	var posts []post
	q := pg.bun.NewSelect().
		Model(&posts).
		Order("id DESC").
		Limit(limit).
		Offset(offset)

	if len(excludePostIDs) > 0 {
		q = q.Where("id NOT IN (?)", bun.In(excludePostIDs))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, wrapErr("scan posts", err)
	}
	out := make([]api.Post, len(posts))
	for i, p := range posts {
		out[i] = p.APIPost()
	}
	return out, nil
}

// ListPostsByAuthor returns every post by one author, newest first.
func (pg *Postgres) ListPostsByAuthor(ctx context.Context, email string) ([]api.Post, error) {
	var posts []post
	err := pg.bun.NewSelect().
		Model(&posts).
		Where("author_email = ?", email).
		Order("id DESC").
		Scan(ctx)
	if err != nil {
		return nil, wrapErr("scan posts by author", err)
	}
	out := make([]api.Post, len(posts))
	for i, p := range posts {
		out[i] = p.APIPost()
	}
	return out, nil
}

// GetPost returns one post by id.
func (pg *Postgres) GetPost(ctx context.Context, id int64) (api.Post, error) {
	var m post
	err := pg.bun.NewSelect().Model(&m).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Post{}, api.ErrNotFound
	}
	if err != nil {
		return api.Post{}, wrapErr("select post", err)
	}
	return m.APIPost(), nil
}

// InsertPost inserts a post. The returned post holds the generated id and
// creation timestamp.
func (pg *Postgres) InsertPost(ctx context.Context, p api.Post) (api.Post, error) {
	reactions := p.Reactions
	if reactions == nil {
		reactions = map[string]int{}
	}
	m := &post{
		AuthorEmail: p.AuthorEmail,
		AuthorName:  p.AuthorName,
		ProfilePic:  p.ProfilePic,
		PostText:    p.Text,
		FileURL:     p.FileURL,
		Reactions:   reactions,
	}
	if _, err := pg.bun.NewInsert().Model(m).Exec(ctx); err != nil {
		return api.Post{}, wrapErr("insert post", err)
	}
	return m.APIPost(), nil
}

// DeletePost removes a post and its reaction edges. Ownership is checked
// by the caller.
func (pg *Postgres) DeletePost(ctx context.Context, id int64) error {
	err := pg.bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model((*post)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return api.ErrNotFound
		}
		_, err = tx.NewDelete().Model((*reactionEdge)(nil)).Where("post_id = ?", id).Exec(ctx)
		return err
	})
	if err != nil && !errors.Is(err, api.ErrNotFound) {
		return wrapErr("delete post", err)
	}
	return err
}
