package pool

import (
	"context"
	"log/slog"
)

// Archiver receives the pool state that a replacement just retired. Used to
// ship an audit snapshot off-process; failures are logged, never allowed to
// fail the replacement itself.
type Archiver interface {
	ArchivePool(ctx context.Context, retired *CodePool) error
}

// Invalidator swaps a campaign's code list for a new one. Prior claims are
// not rewritten: the version bump alone makes them stale, so replacement is
// O(1) no matter how many users claimed before.
type Invalidator struct {
	store    Store
	notifier *Notifier
	archiver Archiver
}

func NewInvalidator(store Store, opts ...InvalidatorOption) *Invalidator {
	inv := &Invalidator{store: store}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

type InvalidatorOption func(*Invalidator)

func WithInvalidatorNotifier(n *Notifier) InvalidatorOption {
	return func(inv *Invalidator) { inv.notifier = n }
}

func WithArchiver(a Archiver) InvalidatorOption {
	return func(inv *Invalidator) { inv.archiver = a }
}

// ReplaceCodes installs codes as the campaign's new list, bumps the pool
// version and rewinds the cursor. Runs through the same atomic primitive as
// Claim, so a racing claim sees either the old version fully or the new
// version fully. Returns the new version.
//
// Duplicate strings in the list are tolerated, not rejected: operator input
// is free text and the coordinator's claim-time skip-scan already prevents
// double assignment. A warning is logged so the operator can clean up.
func (inv *Invalidator) ReplaceCodes(ctx context.Context, campaignID string, codes []string) (int64, error) {
	if err := validateID("campaign id", campaignID); err != nil {
		return 0, err
	}

	if dups := countDuplicates(codes); dups > 0 {
		slog.Warn("Replacement code list contains duplicate codes",
			slog.String("campaign_id", campaignID),
			slog.Int("duplicates", dups),
			slog.Int("total", len(codes)))
	}

	var retired *CodePool
	committed, err := inv.store.AtomicUpdate(ctx, campaignID, func(p *CodePool) error {
		retired = p.Clone()
		p.Codes = make([]string, len(codes))
		copy(p.Codes, codes)
		p.Version++
		p.Cursor = 0
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("Campaign codes replaced",
		slog.String("campaign_id", campaignID),
		slog.Int64("version", committed.Version),
		slog.Int("codes", len(committed.Codes)))

	if inv.archiver != nil && retired.Version > 0 {
		if err := inv.archiver.ArchivePool(ctx, retired); err != nil {
			slog.Error("Failed to archive retired pool",
				slog.String("campaign_id", campaignID),
				slog.Int64("retired_version", retired.Version),
				slog.Any("error", err))
		}
	}
	if inv.notifier != nil {
		inv.notifier.Publish(committed.Summary())
	}
	return committed.Version, nil
}

func countDuplicates(codes []string) int {
	seen := make(map[string]struct{}, len(codes))
	dups := 0
	for _, code := range codes {
		if _, ok := seen[code]; ok {
			dups++
			continue
		}
		seen[code] = struct{}{}
	}
	return dups
}
