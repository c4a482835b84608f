package progress

import (
	"math"
	"sync"
)

// Tracker reports how far the active crawl has advanced. There is one
// writer (the crawl) and any number of concurrent readers (pollers).
// A second Begin while a crawl is in flight simply overwrites the
// state; queueing of concurrent crawls is not supported.
type Tracker struct {
	mu      sync.Mutex
	current int
	total   int
}

// NewTracker returns a tracker in its zero state {0, 0}.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin resets the tracker for a new crawl of total units of work.
func (t *Tracker) Begin(total int) {
	if total < 0 {
		total = 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = 0
	t.total = total
}

// Expand grows the total mid-crawl. A product that turns out to carry
// several variants expands the crawl by the extra units.
func (t *Tracker) Expand(n int) {
	if n <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total += n
}

// Advance records one completed unit of work: one product, or one
// variant when variant-level granularity is in effect.
func (t *Tracker) Advance() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current < t.total {
		t.current++
	}
}

// Finish forces a terminal state so pollers observe completion even
// when the crawl aborted before reaching its planned total.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = t.current
}

// Snapshot returns the current and total unit counts. It is safe to
// call at any time, including before Begin, where it reports {0, 0}.
func (t *Tracker) Snapshot() (current, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current, t.total
}

// Percent returns completion as an integer between 0 and 100, rounded
// to the nearest whole number, or 0 when nothing has been scheduled.
func (t *Tracker) Percent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(t.current) / float64(t.total)))
}
