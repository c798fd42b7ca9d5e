package pool

import (
	"fmt"
)

// CodePool is the per-campaign reward document. One pool exists per
// campaign (one game instance, possibly scoped per day or event) and is
// only ever mutated through Store.AtomicUpdate.
type CodePool struct {
	CampaignID string                 `json:"campaign_id"`
	Codes      []string               `json:"codes"`
	Version    int64                  `json:"version"`
	Cursor     int                    `json:"cursor"`
	ClaimedBy  map[string]ClaimRecord `json:"claimed_by"`
}

// ClaimRecord ties a user to the code they were handed and the pool
// version it was handed under. Records whose Version predates the pool's
// current Version are stale: kept for audit, ignored for eligibility.
type ClaimRecord struct {
	Index     int    `json:"index"`
	Code      string `json:"code"`
	Timestamp int64  `json:"timestamp"`
	Version   int64  `json:"version"`
}

// Summary is the read-only view handed to UI counters.
type Summary struct {
	CampaignID string `json:"campaign_id"`
	Version    int64  `json:"version"`
	Total      int    `json:"total"`
	Remaining  int    `json:"remaining"`
}

func NewCodePool(campaignID string) *CodePool {
	return &CodePool{
		CampaignID: campaignID,
		Codes:      []string{},
		ClaimedBy:  make(map[string]ClaimRecord),
	}
}

// Clone returns a deep copy. Stores hand copies to transform functions so
// a retried or abandoned attempt never leaks mutations into committed state.
func (p *CodePool) Clone() *CodePool {
	cp := &CodePool{
		CampaignID: p.CampaignID,
		Codes:      make([]string, len(p.Codes)),
		Version:    p.Version,
		Cursor:     p.Cursor,
		ClaimedBy:  make(map[string]ClaimRecord, len(p.ClaimedBy)),
	}
	copy(cp.Codes, p.Codes)
	for userID, rec := range p.ClaimedBy {
		cp.ClaimedBy[userID] = rec
	}
	return cp
}

// Summary computes the remaining-count view. Remaining deliberately ignores
// duplicate-code skips still ahead of the cursor; the counter is display
// only and must never gate eligibility.
func (p *CodePool) Summary() Summary {
	return Summary{
		CampaignID: p.CampaignID,
		Version:    p.Version,
		Total:      len(p.Codes),
		Remaining:  len(p.Codes) - p.Cursor,
	}
}

// Validate checks the structural invariants every committed pool must hold.
// Stores run it on every read; a failure is surfaced as ErrCorruptState and
// never auto-repaired.
func (p *CodePool) Validate() error {
	if p.CampaignID == "" {
		return fmt.Errorf("%w: empty campaign id", ErrCorruptState)
	}
	if p.Version < 0 {
		return fmt.Errorf("%w: negative version %d", ErrCorruptState, p.Version)
	}
	if p.Cursor < 0 || p.Cursor > len(p.Codes) {
		return fmt.Errorf("%w: cursor %d out of range [0,%d]", ErrCorruptState, p.Cursor, len(p.Codes))
	}
	seen := make(map[string]string, len(p.ClaimedBy))
	for userID, rec := range p.ClaimedBy {
		if rec.Version > p.Version {
			return fmt.Errorf("%w: claim for %q has version %d ahead of pool version %d",
				ErrCorruptState, userID, rec.Version, p.Version)
		}
		if rec.Version != p.Version {
			continue // stale record, audit only
		}
		if rec.Index < 0 || rec.Index >= len(p.Codes) {
			return fmt.Errorf("%w: claim for %q has index %d out of range", ErrCorruptState, userID, rec.Index)
		}
		if p.Codes[rec.Index] != rec.Code {
			return fmt.Errorf("%w: claim for %q records code %q but codes[%d] is %q",
				ErrCorruptState, userID, rec.Code, rec.Index, p.Codes[rec.Index])
		}
		if other, dup := seen[rec.Code]; dup {
			return fmt.Errorf("%w: users %q and %q share code %q under version %d",
				ErrCorruptState, other, userID, rec.Code, p.Version)
		}
		seen[rec.Code] = userID
	}
	return nil
}

// liveCodes returns the set of codes assigned under the pool's current
// version. Stale records do not count.
func (p *CodePool) liveCodes() map[string]struct{} {
	live := make(map[string]struct{})
	for _, rec := range p.ClaimedBy {
		if rec.Version == p.Version {
			live[rec.Code] = struct{}{}
		}
	}
	return live
}
