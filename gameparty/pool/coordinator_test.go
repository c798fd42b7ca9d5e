package pool

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestCoordinator(t *testing.T) (*Coordinator, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	fixed := time.Date(2025, 10, 31, 20, 0, 0, 0, time.UTC)
	return NewCoordinator(store, WithClock(func() time.Time { return fixed })), store
}

func seedCodes(t *testing.T, store *MemoryStore, campaignID string, codes []string) {
	t.Helper()
	inv := NewInvalidator(store)
	if _, err := inv.ReplaceCodes(context.Background(), campaignID, codes); err != nil {
		t.Fatalf("seed codes: %v", err)
	}
}

func mustClaim(t *testing.T, c *Coordinator, campaignID, userID string) ClaimOutcome {
	t.Helper()
	out, err := c.Claim(context.Background(), campaignID, userID)
	if err != nil {
		t.Fatalf("Claim(%s, %s) error = %v", campaignID, userID, err)
	}
	return out
}

func TestCoordinator_WorkedExample(t *testing.T) {
	c, store := newTestCoordinator(t)
	seedCodes(t, store, "halloween-day1", []string{"A", "B", "C"})

	steps := []struct {
		userID     string
		wantStatus ClaimStatus
		wantCode   string
	}{
		{"u1", StatusClaimed, "A"},
		{"u2", StatusClaimed, "B"},
		{"u1", StatusAlreadyClaimed, "A"},
		{"u3", StatusClaimed, "C"},
		{"u4", StatusExhausted, ""},
	}
	for i, step := range steps {
		out := mustClaim(t, c, "halloween-day1", step.userID)
		if out.Status != step.wantStatus || out.Code != step.wantCode {
			t.Fatalf("step %d: claim by %s = {%s %q}, want {%s %q}",
				i, step.userID, out.Status, out.Code, step.wantStatus, step.wantCode)
		}
	}
}

func TestCoordinator_UnknownCampaignIsExhausted(t *testing.T) {
	c, _ := newTestCoordinator(t)

	out := mustClaim(t, c, "never-configured", "u1")
	if out.Status != StatusExhausted {
		t.Fatalf("claim on unconfigured campaign = %s, want %s", out.Status, StatusExhausted)
	}

	sum, err := c.Peek(context.Background(), "never-configured")
	if err != nil {
		t.Fatalf("Peek error = %v", err)
	}
	if sum.Version != 0 || sum.Total != 0 || sum.Remaining != 0 {
		t.Fatalf("Peek = %+v, want empty version-0 summary", sum)
	}
}

func TestCoordinator_IdempotentReentry(t *testing.T) {
	c, store := newTestCoordinator(t)
	seedCodes(t, store, "puzzle-7", []string{"X1", "X2"})

	first := mustClaim(t, c, "puzzle-7", "player")
	if first.Status != StatusClaimed {
		t.Fatalf("first claim = %s, want %s", first.Status, StatusClaimed)
	}
	for i := 0; i < 5; i++ {
		out := mustClaim(t, c, "puzzle-7", "player")
		if out.Status != StatusAlreadyClaimed || out.Code != first.Code {
			t.Fatalf("retry %d = {%s %q}, want {%s %q}", i, out.Status, out.Code, StatusAlreadyClaimed, first.Code)
		}
	}

	p, err := store.Get(context.Background(), "puzzle-7")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Cursor != 1 {
		t.Fatalf("cursor = %d after idempotent retries, want 1", p.Cursor)
	}
}

func TestCoordinator_ExhaustionBoundary(t *testing.T) {
	c, store := newTestCoordinator(t)
	codes := []string{"K1", "K2", "K3", "K4"}
	seedCodes(t, store, "checkin", codes)

	users := []string{"a", "b", "c", "d"}
	for _, u := range users {
		if out := mustClaim(t, c, "checkin", u); out.Status != StatusClaimed {
			t.Fatalf("claim by %s = %s, want %s", u, out.Status, StatusClaimed)
		}
	}

	if out := mustClaim(t, c, "checkin", "late"); out.Status != StatusExhausted {
		t.Fatalf("claim after exhaustion = %s, want %s", out.Status, StatusExhausted)
	}

	p, _ := store.Get(context.Background(), "checkin")
	if p.Cursor != len(codes) {
		t.Fatalf("cursor = %d, want %d", p.Cursor, len(codes))
	}
	// Existing holders still get their code back after exhaustion.
	if out := mustClaim(t, c, "checkin", "a"); out.Status != StatusAlreadyClaimed || out.Code != "K1" {
		t.Fatalf("holder re-entry after exhaustion = {%s %q}, want {already_claimed K1}", out.Status, out.Code)
	}
}

func TestCoordinator_DuplicateCodesSkipped(t *testing.T) {
	c, store := newTestCoordinator(t)
	// Operator pasted "GOLD" twice; the second copy must not be handed out
	// while the first is live.
	seedCodes(t, store, "event", []string{"GOLD", "GOLD", "SILVER"})

	if out := mustClaim(t, c, "event", "u1"); out.Code != "GOLD" {
		t.Fatalf("first claim code = %q, want GOLD", out.Code)
	}
	if out := mustClaim(t, c, "event", "u2"); out.Code != "SILVER" {
		t.Fatalf("second claim code = %q, want SILVER (duplicate skipped)", out.Code)
	}
	if out := mustClaim(t, c, "event", "u3"); out.Status != StatusExhausted {
		t.Fatalf("third claim = %s, want %s", out.Status, StatusExhausted)
	}
}

func TestCoordinator_TrailingDuplicatesExhaust(t *testing.T) {
	c, store := newTestCoordinator(t)
	seedCodes(t, store, "event", []string{"ONLY", "ONLY", "ONLY"})

	if out := mustClaim(t, c, "event", "u1"); out.Status != StatusClaimed || out.Code != "ONLY" {
		t.Fatalf("first claim = {%s %q}", out.Status, out.Code)
	}
	// Everything left in the list is a copy of a live code: exhausted, and
	// the cursor must not advance past the failed scan.
	before, _ := store.Get(context.Background(), "event")
	if out := mustClaim(t, c, "event", "u2"); out.Status != StatusExhausted {
		t.Fatalf("second claim = %s, want %s", out.Status, StatusExhausted)
	}
	after, _ := store.Get(context.Background(), "event")
	if after.Cursor != before.Cursor {
		t.Fatalf("cursor moved on exhausted duplicate scan: %d -> %d", before.Cursor, after.Cursor)
	}
}

func TestCoordinator_VersionResetRestoresEligibility(t *testing.T) {
	store := NewMemoryStore()
	c := NewCoordinator(store)
	inv := NewInvalidator(store)
	ctx := context.Background()

	seedCodes(t, store, "daily", []string{"OLD1", "OLD2"})
	first := mustClaim(t, c, "daily", "u1")
	if first.Code != "OLD1" {
		t.Fatalf("claim v1 = %q, want OLD1", first.Code)
	}

	v, err := inv.ReplaceCodes(ctx, "daily", []string{"NEW1", "NEW2", "NEW3"})
	if err != nil {
		t.Fatalf("ReplaceCodes: %v", err)
	}
	if v != 2 {
		t.Fatalf("version = %d, want 2", v)
	}

	sum, err := c.Peek(ctx, "daily")
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if sum.Remaining != 3 || sum.Total != 3 {
		t.Fatalf("summary after replace = %+v, want remaining 3 of 3", sum)
	}

	// u1's old record is stale: fresh eligibility, fresh code.
	out := mustClaim(t, c, "daily", "u1")
	if out.Status != StatusClaimed || out.Code != "NEW1" {
		t.Fatalf("claim after replace = {%s %q}, want {claimed NEW1}", out.Status, out.Code)
	}

	// The stale record is retained for audit.
	p, _ := store.Get(ctx, "daily")
	rec := p.ClaimedBy["u1"]
	if rec.Version != 2 || rec.Code != "NEW1" {
		t.Fatalf("claim record = %+v, want version 2 code NEW1", rec)
	}
}

func TestCoordinator_InvalidInput(t *testing.T) {
	c, _ := newTestCoordinator(t)

	tests := []struct {
		name       string
		campaignID string
		userID     string
	}{
		{"empty campaign", "", "u1"},
		{"blank campaign", "   ", "u1"},
		{"empty user", "camp", ""},
		{"oversized user", "camp", string(make([]byte, maxIDLength+1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Claim(context.Background(), tt.campaignID, tt.userID)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Claim error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCoordinator_TransformPureOnOutcome(t *testing.T) {
	// The transform may run more than once; the reported outcome must come
	// from the attempt that actually committed.
	store := NewMemoryStore()
	seedCodes(t, store, "race", []string{"A", "B"})

	replay := &replayStore{inner: store, conflicts: 2}
	c := NewCoordinator(replay)

	out := mustClaim(t, c, "race", "u1")
	if out.Status != StatusClaimed || out.Code != "A" {
		t.Fatalf("claim with retries = {%s %q}, want {claimed A}", out.Status, out.Code)
	}
	if replay.calls < 3 {
		t.Fatalf("transform ran %d times, expected forced replays", replay.calls)
	}
}

// replayStore invokes fn against throwaway copies before letting the real
// store commit, imitating CAS conflicts that force transform retries.
type replayStore struct {
	inner     *MemoryStore
	conflicts int
	calls     int
}

func (r *replayStore) AtomicUpdate(ctx context.Context, campaignID string, fn TransformFunc) (*CodePool, error) {
	counted := func(p *CodePool) error {
		r.calls++
		return fn(p)
	}
	for i := 0; i < r.conflicts; i++ {
		stale, err := r.inner.Get(ctx, campaignID)
		if err != nil {
			return nil, err
		}
		if err := counted(stale); err != nil {
			return nil, err
		}
		// Discard: another writer won this round.
	}
	return r.inner.AtomicUpdate(ctx, campaignID, counted)
}

func (r *replayStore) Get(ctx context.Context, campaignID string) (*CodePool, error) {
	return r.inner.Get(ctx, campaignID)
}
