package snapshot

import (
	"sync"
	"time"
)

// Change describes one snapshot swap, delivered to stream subscribers.
type Change struct {
	ETag      string    `json:"etag"`
	Rules     int       `json:"rules"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	mu   sync.Mutex
	subs = make(map[chan Change]struct{})
)

// Subscribe registers a listener for snapshot changes and returns its channel
// and an unsubscribe func. The channel is buffered by one: a subscriber that
// falls behind misses intermediate swaps, not the fact that the rule set
// changed.
func Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, 1)
	mu.Lock()
	subs[ch] = struct{}{}
	mu.Unlock()

	unsub := func() {
		mu.Lock()
		delete(subs, ch)
		close(ch)
		mu.Unlock()
	}
	return ch, unsub
}

// publishChange fans a swap out to all listeners without blocking on any of
// them.
func publishChange(s *Snapshot) {
	c := Change{ETag: s.ETag, Rules: len(s.Rules), UpdatedAt: s.UpdatedAt}
	mu.Lock()
	for ch := range subs {
		select {
		case ch <- c:
		default: // slow subscriber, skip instead of blocking
		}
	}
	mu.Unlock()
}
