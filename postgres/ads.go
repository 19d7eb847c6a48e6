package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/vibenet/backend/api"
)

// InsertAd creates an ad with its full budget remaining.
func (pg *Postgres) InsertAd(ctx context.Context, a api.Ad) (api.Ad, error) {
	m := &ad{
		OwnerEmail: a.OwnerEmail,
		Title:      a.Title,
		Budget:     a.Budget,
	}
	if _, err := pg.bun.NewInsert().Model(m).Exec(ctx); err != nil {
		return api.Ad{}, wrapErr("insert ad", err)
	}
	return m.APIAd(), nil
}

// ListAds returns all ads, newest first.
func (pg *Postgres) ListAds(ctx context.Context) ([]api.Ad, error) {
	var ads []ad
	if err := pg.bun.NewSelect().Model(&ads).Order("id DESC").Scan(ctx); err != nil {
		return nil, wrapErr("scan ads", err)
	}
	out := make([]api.Ad, len(ads))
	for i, a := range ads {
		out[i] = a.APIAd()
	}
	return out, nil
}

// CreditImpression picks one ad uniformly at random among those with
// budget strictly above the unit cost, charges it and credits the post
// author. Returns false when no ad is eligible; that case is a defined
// no-op, not an error. The chosen ad row stays locked until commit so the
// budget can never be spent twice.
func (pg *Postgres) CreditImpression(ctx context.Context, authorEmail string, cost, credit float64) (bool, error) {
	credited := false
	err := pg.bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var chosen ad
		err := tx.NewSelect().Model(&chosen).
			Where("budget > ?", cost).
			OrderExpr("random()").
			Limit(1).
			For("UPDATE").
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		if _, err := tx.NewUpdate().Model((*ad)(nil)).
			Set("impressions = impressions + 1").
			Set("budget = budget - ?", cost).
			Where("id = ?", chosen.ID).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewUpdate().Model((*account)(nil)).
			Set("earnings = earnings + ?", credit).
			Where("email = ?", authorEmail).
			Exec(ctx); err != nil {
			return err
		}
		credited = true
		return nil
	})
	if err != nil {
		return false, wrapErr("credit impression", err)
	}
	return credited, nil
}
