package pool

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// 50 concurrent callers against a 30-code pool: exactly 30 claimed with
// distinct codes, 20 exhausted, never a duplicate assignment. Run several
// rounds with jittered scheduling to shake out interleavings.
func TestClaim_StressUniqueness(t *testing.T) {
	const (
		rounds  = 20
		callers = 50
		nCodes  = 30
	)

	for round := 0; round < rounds; round++ {
		store := NewMemoryStore()
		c := NewCoordinator(store)
		campaignID := fmt.Sprintf("stress-%d", round)

		codes := make([]string, nCodes)
		for i := range codes {
			codes[i] = fmt.Sprintf("CODE-%03d", i)
		}
		seedCodes(t, store, campaignID, codes)

		var mu sync.Mutex
		outcomes := make(map[string]ClaimOutcome, callers)

		g, ctx := errgroup.WithContext(context.Background())
		for i := 0; i < callers; i++ {
			userID := fmt.Sprintf("user-%02d", i)
			g.Go(func() error {
				time.Sleep(time.Duration(rand.Intn(500)) * time.Microsecond)
				out, err := c.Claim(ctx, campaignID, userID)
				if err != nil {
					return err
				}
				mu.Lock()
				outcomes[userID] = out
				mu.Unlock()
				return nil
			})
		}
		require.NoError(t, g.Wait())

		claimed := 0
		exhausted := 0
		byCode := make(map[string]string)
		for userID, out := range outcomes {
			switch out.Status {
			case StatusClaimed:
				claimed++
				holder, dup := byCode[out.Code]
				require.Falsef(t, dup, "round %d: code %q handed to both %s and %s", round, out.Code, holder, userID)
				byCode[out.Code] = userID
			case StatusExhausted:
				exhausted++
			default:
				t.Fatalf("round %d: unexpected status %s for %s", round, out.Status, userID)
			}
		}
		require.Equal(t, nCodes, claimed, "round %d claimed count", round)
		require.Equal(t, callers-nCodes, exhausted, "round %d exhausted count", round)

		p, err := store.Get(context.Background(), campaignID)
		require.NoError(t, err)
		require.Equal(t, nCodes, p.Cursor, "round %d cursor at exhaustion", round)
	}
}

// Concurrent re-entries by the same user must all agree on one code.
func TestClaim_StressIdempotence(t *testing.T) {
	store := NewMemoryStore()
	c := NewCoordinator(store)
	seedCodes(t, store, "reentry", []string{"A", "B", "C", "D", "E"})

	const attempts = 40
	results := make([]ClaimOutcome, attempts)

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < attempts; i++ {
		i := i
		g.Go(func() error {
			out, err := c.Claim(ctx, "reentry", "impatient-user")
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	require.NoError(t, g.Wait())

	code := results[0].Code
	claimedSeen := 0
	for _, out := range results {
		require.Equal(t, code, out.Code, "all re-entries must return the same code")
		if out.Status == StatusClaimed {
			claimedSeen++
		} else {
			require.Equal(t, StatusAlreadyClaimed, out.Status)
		}
	}
	require.Equal(t, 1, claimedSeen, "exactly one attempt performs the assignment")

	p, err := store.Get(context.Background(), "reentry")
	require.NoError(t, err)
	require.Equal(t, 1, p.Cursor)
}

// A replacement racing live claims must leave the pool on exactly one side
// of the version bump, with the cursor consistent with the codes it indexes.
func TestClaim_StressAgainstReplace(t *testing.T) {
	store := NewMemoryStore()
	notifier := NewNotifier()
	c := NewCoordinator(store, WithNotifier(notifier))
	inv := NewInvalidator(store, WithInvalidatorNotifier(notifier))

	seedCodes(t, store, "flash", []string{"O1", "O2", "O3", "O4", "O5"})

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 30; i++ {
		userID := fmt.Sprintf("user-%02d", i)
		g.Go(func() error {
			_, err := c.Claim(ctx, "flash", userID)
			return err
		})
	}
	g.Go(func() error {
		time.Sleep(200 * time.Microsecond)
		_, err := inv.ReplaceCodes(ctx, "flash", []string{"N1", "N2", "N3"})
		return err
	})
	require.NoError(t, g.Wait())

	p, err := store.Get(context.Background(), "flash")
	require.NoError(t, err)
	require.NoError(t, p.Validate())
	require.Equal(t, int64(2), p.Version)
	require.LessOrEqual(t, p.Cursor, len(p.Codes))
}

func TestNotifier_PublishAndSubscribe(t *testing.T) {
	n := NewNotifier()
	ch, cancel := n.Subscribe("camp")
	defer cancel()

	n.Publish(Summary{CampaignID: "camp", Version: 1, Total: 10, Remaining: 9})

	select {
	case s := <-ch:
		require.Equal(t, 9, s.Remaining)
	case <-time.After(time.Second):
		t.Fatal("summary not delivered")
	}

	latest, ok := n.Latest("camp")
	require.True(t, ok)
	require.Equal(t, int64(1), latest.Version)

	// A full subscriber buffer drops updates instead of blocking Publish.
	for i := 0; i < 50; i++ {
		n.Publish(Summary{CampaignID: "camp", Version: 1, Total: 10, Remaining: 9 - i})
	}
	latest, _ = n.Latest("camp")
	require.Equal(t, 9-49, latest.Remaining)
}
