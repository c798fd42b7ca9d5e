package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/pool"
)

type fakeLister struct {
	ids []string
	err error
}

func (l *fakeLister) ListCampaignIDs(ctx context.Context) ([]string, error) {
	return l.ids, l.err
}

func TestCampaignSearch(t *testing.T) {
	lister := &fakeLister{ids: []string{
		"loy-krathong-2025",
		"halloween-day1",
		"halloween-day2",
		"newyear-checkin",
	}}
	s := NewCampaignSearchService(lister)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{"empty query returns all", "", 0, lister.ids},
		{"empty query with limit", "", 2, []string{"loy-krathong-2025", "halloween-day1"}},
		{"fragment", "krathong", 0, []string{"loy-krathong-2025"}},
		{"prefix across entries", "halloween", 0, []string{"halloween-day1", "halloween-day2"}},
		{"no match", "zzzz", 0, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(ctx, tt.query, tt.limit)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Search(%q)[%d] = %q, want %q", tt.query, i, got[i], tt.want[i])
				}
			}
		})
	}

	lister.err = errors.New("store down")
	if _, err := s.Search(ctx, "x", 0); err == nil {
		t.Fatal("Search should propagate lister errors")
	}
}

type countingPeeker struct {
	calls int
}

func (p *countingPeeker) Peek(ctx context.Context, campaignID string) (pool.Summary, error) {
	p.calls++
	return pool.Summary{CampaignID: campaignID, Version: 1, Total: 10, Remaining: 10 - p.calls}, nil
}

func TestSummaryCache(t *testing.T) {
	peeker := &countingPeeker{}
	cache := NewSummaryCache(peeker, time.Minute)
	ctx := context.Background()

	first, err := cache.Peek(ctx, "camp")
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	second, _ := cache.Peek(ctx, "camp")
	if peeker.calls != 1 {
		t.Fatalf("underlying peeker called %d times, want 1", peeker.calls)
	}
	if first.Remaining != second.Remaining {
		t.Fatalf("cached summary changed: %d vs %d", first.Remaining, second.Remaining)
	}

	cache.Invalidate("camp")
	third, _ := cache.Peek(ctx, "camp")
	if peeker.calls != 2 {
		t.Fatalf("invalidate did not force a refresh, calls = %d", peeker.calls)
	}
	if third.Remaining == first.Remaining {
		t.Fatal("refreshed summary should reflect new state")
	}
}

func TestSummaryCache_Expiry(t *testing.T) {
	peeker := &countingPeeker{}
	cache := NewSummaryCache(peeker, time.Millisecond)
	ctx := context.Background()

	cache.Peek(ctx, "camp")
	time.Sleep(5 * time.Millisecond)
	cache.Peek(ctx, "camp")

	if peeker.calls != 2 {
		t.Fatalf("expired entry not refreshed, calls = %d", peeker.calls)
	}
}
