package pool

import (
	"context"
	"errors"
)

// SkipUpdate is returned by a transform that decided not to change the
// pool. AtomicUpdate treats it as success, skips the write entirely, and
// returns the state the decision was made against. Used for read-only
// outcomes (already claimed, exhausted) so they never contend on the CAS.
var SkipUpdate = errors.New("skip update")

// TransformFunc mutates a pool in place inside AtomicUpdate. It must be a
// pure function of its input: the store may call it several times against
// re-read state before one attempt commits.
type TransformFunc func(p *CodePool) error

// Store is the durable home of CodePool documents. Each campaign is an
// independent unit of contention; operations on different campaigns never
// interfere.
//
// AtomicUpdate applies fn as if single-threaded: read latest committed
// state (or a fresh version-0 pool if the campaign has none yet), run fn on
// a private copy, commit only if no other writer got in between, and retry
// on conflict up to a bounded budget. Returning an error from fn aborts the
// update without committing and the error is returned unchanged.
//
// Implementations report failures through the package sentinels:
// ErrTransientStore, ErrContentionExceeded, ErrCorruptState.
type Store interface {
	AtomicUpdate(ctx context.Context, campaignID string, fn TransformFunc) (*CodePool, error)

	// Get returns the latest committed pool, or a fresh empty pool if the
	// campaign has never been written. Read only.
	Get(ctx context.Context, campaignID string) (*CodePool, error)
}
