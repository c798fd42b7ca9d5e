package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/database/models"
	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/pool"
	"github.com/cenkalti/backoff/v4"
	"github.com/uptrace/bun"
)

const (
	casMaxRetries      = 5
	casInitialInterval = 20 * time.Millisecond
)

// PoolRepository is the Postgres implementation of pool.Store. Each
// campaign is one row; writes are optimistic compare-and-swap on the row's
// rev column, retried with exponential backoff up to a bounded budget.
type PoolRepository struct {
	db *bun.DB
}

func NewPoolRepository(db *bun.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

func (r *PoolRepository) AtomicUpdate(ctx context.Context, campaignID string, fn pool.TransformFunc) (*pool.CodePool, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = casInitialInterval
	bo.RandomizationFactor = 0.2

	for attempt := 0; attempt < casMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(bo.NextBackOff()):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		committed, conflict, err := r.tryUpdate(ctx, campaignID, fn)
		if err != nil {
			return nil, err
		}
		if conflict {
			slog.Debug("CAS conflict, retrying",
				slog.String("type", "db"),
				slog.String("campaign_id", campaignID),
				slog.Int("attempt", attempt+1))
			continue
		}
		return committed, nil
	}

	return nil, fmt.Errorf("%w: campaign %s after %d attempts",
		pool.ErrContentionExceeded, campaignID, casMaxRetries)
}

// tryUpdate runs one read-transform-conditional-write round. conflict=true
// means another writer committed in between and the round must be replayed
// against fresh state.
func (r *PoolRepository) tryUpdate(ctx context.Context, campaignID string, fn pool.TransformFunc) (*pool.CodePool, bool, error) {
	row := new(models.CodePoolRow)
	err := r.db.NewSelect().
		Model(row).
		Where("campaign_id = ?", campaignID).
		Scan(ctx)

	exists := true
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, false, fmt.Errorf("%w: %v", pool.ErrTransientStore, err)
		}
		exists = false
		row = &models.CodePoolRow{CampaignID: campaignID}
	}

	current, err := rowToPool(row)
	if err != nil {
		return nil, false, err
	}
	if err := current.Validate(); err != nil {
		return nil, false, err
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		if errors.Is(err, pool.SkipUpdate) {
			return next, false, nil
		}
		return nil, false, err
	}
	if err := next.Validate(); err != nil {
		return nil, false, err
	}

	nextRow := poolToRow(next)
	nextRow.Rev = row.Rev + 1
	nextRow.UpdatedAt = time.Now()

	if !exists {
		res, err := r.db.NewInsert().
			Model(nextRow).
			On("CONFLICT (campaign_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", pool.ErrTransientStore, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, true, nil // someone created the row first
		}
		return next, false, nil
	}

	res, err := r.db.NewUpdate().
		Model(nextRow).
		Where("campaign_id = ? AND rev = ?", campaignID, row.Rev).
		Exec(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", pool.ErrTransientStore, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, true, nil // lost the race, replay on fresh state
	}
	return next, false, nil
}

func (r *PoolRepository) Get(ctx context.Context, campaignID string) (*pool.CodePool, error) {
	row := new(models.CodePoolRow)
	err := r.db.NewSelect().
		Model(row).
		Where("campaign_id = ?", campaignID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pool.NewCodePool(campaignID), nil
		}
		return nil, fmt.Errorf("%w: %v", pool.ErrTransientStore, err)
	}

	p, err := rowToPool(row)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ListCampaignIDs returns every stored campaign id, newest first. Used by
// the admin list endpoint.
func (r *PoolRepository) ListCampaignIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.NewSelect().
		Model((*models.CodePoolRow)(nil)).
		Column("campaign_id").
		Order("updated_at DESC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pool.ErrTransientStore, err)
	}
	return ids, nil
}

func rowToPool(row *models.CodePoolRow) (*pool.CodePool, error) {
	p := &pool.CodePool{
		CampaignID: row.CampaignID,
		Codes:      row.Codes,
		Version:    row.Version,
		Cursor:     row.Cursor,
		ClaimedBy:  make(map[string]pool.ClaimRecord, len(row.ClaimedBy)),
	}
	if p.Codes == nil {
		p.Codes = []string{}
	}
	for userID, entry := range row.ClaimedBy {
		p.ClaimedBy[userID] = pool.ClaimRecord{
			Index:     entry.Index,
			Code:      entry.Code,
			Timestamp: entry.Timestamp,
			Version:   entry.Version,
		}
	}
	return p, nil
}

func poolToRow(p *pool.CodePool) *models.CodePoolRow {
	row := &models.CodePoolRow{
		CampaignID: p.CampaignID,
		Version:    p.Version,
		Cursor:     p.Cursor,
		Codes:      p.Codes,
		ClaimedBy:  make(map[string]models.ClaimEntry, len(p.ClaimedBy)),
	}
	for userID, rec := range p.ClaimedBy {
		row.ClaimedBy[userID] = models.ClaimEntry{
			Index:     rec.Index,
			Code:      rec.Code,
			Timestamp: rec.Timestamp,
			Version:   rec.Version,
		}
	}
	return row
}
