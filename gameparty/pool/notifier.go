package pool

import (
	"sync"
)

// Notifier fans out post-commit pool summaries to UI counters. Delivery is
// best effort: a subscriber that stops draining loses updates instead of
// blocking the claim path.
type Notifier struct {
	mu   sync.RWMutex
	subs map[string]map[int]chan Summary
	next int

	// latest is kept so pollers and late subscribers can read the current
	// counter without waiting for the next commit.
	latest map[string]Summary
}

func NewNotifier() *Notifier {
	return &Notifier{
		subs:   make(map[string]map[int]chan Summary),
		latest: make(map[string]Summary),
	}
}

// Publish records the summary and pushes it to every subscriber of the
// campaign without blocking.
func (n *Notifier) Publish(s Summary) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.latest[s.CampaignID] = s
	for _, ch := range n.subs[s.CampaignID] {
		select {
		case ch <- s:
		default:
		}
	}
}

// Latest returns the most recently published summary for a campaign, if any.
func (n *Notifier) Latest(campaignID string) (Summary, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	s, ok := n.latest[campaignID]
	return s, ok
}

// Subscribe returns a buffered channel of summaries for the campaign and a
// cancel func that must be called when the subscriber goes away.
func (n *Notifier) Subscribe(campaignID string) (<-chan Summary, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan Summary, 8)
	id := n.next
	n.next++

	if n.subs[campaignID] == nil {
		n.subs[campaignID] = make(map[int]chan Summary)
	}
	n.subs[campaignID][id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if subs, ok := n.subs[campaignID]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(n.subs, campaignID)
			}
		}
	}
	return ch, cancel
}
