package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_ZeroStateBeforeBegin(t *testing.T) {
	tracker := NewTracker()

	current, total := tracker.Snapshot()
	assert.Equal(t, 0, current)
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, tracker.Percent())
}

func TestTracker_Lifecycle(t *testing.T) {
	tracker := NewTracker()
	tracker.Begin(4)

	tracker.Advance()
	tracker.Advance()
	current, total := tracker.Snapshot()
	assert.Equal(t, 2, current)
	assert.Equal(t, 4, total)
	assert.Equal(t, 50, tracker.Percent())

	tracker.Advance()
	tracker.Advance()
	current, total = tracker.Snapshot()
	assert.Equal(t, 4, current)
	assert.Equal(t, 4, total)
	assert.Equal(t, 100, tracker.Percent())
}

func TestTracker_AdvanceNeverExceedsTotal(t *testing.T) {
	tracker := NewTracker()
	tracker.Begin(1)
	tracker.Advance()
	tracker.Advance()

	current, total := tracker.Snapshot()
	assert.Equal(t, 1, current)
	assert.Equal(t, 1, total)
}

func TestTracker_Expand(t *testing.T) {
	tracker := NewTracker()
	tracker.Begin(2)
	tracker.Expand(2)

	_, total := tracker.Snapshot()
	assert.Equal(t, 4, total)

	// Non-positive growth is ignored.
	tracker.Expand(0)
	tracker.Expand(-3)
	_, total = tracker.Snapshot()
	assert.Equal(t, 4, total)
}

func TestTracker_FinishForcesTerminalState(t *testing.T) {
	tracker := NewTracker()
	tracker.Begin(10)
	tracker.Advance()
	tracker.Advance()
	tracker.Advance()
	tracker.Finish()

	current, total := tracker.Snapshot()
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, total)
	assert.Equal(t, 100, tracker.Percent())
}

func TestTracker_FinishWithNothingScheduled(t *testing.T) {
	tracker := NewTracker()
	tracker.Begin(0)
	tracker.Finish()

	current, total := tracker.Snapshot()
	assert.Equal(t, 0, current)
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, tracker.Percent())
}

func TestTracker_SecondBeginOverwrites(t *testing.T) {
	tracker := NewTracker()
	tracker.Begin(5)
	tracker.Advance()
	tracker.Begin(3)

	current, total := tracker.Snapshot()
	assert.Equal(t, 0, current)
	assert.Equal(t, 3, total)
}

func TestTracker_PercentRounds(t *testing.T) {
	tracker := NewTracker()
	tracker.Begin(3)
	tracker.Advance()
	assert.Equal(t, 33, tracker.Percent())
	tracker.Advance()
	assert.Equal(t, 67, tracker.Percent())
}

func TestTracker_ConcurrentReaders(t *testing.T) {
	tracker := NewTracker()
	tracker.Begin(100)

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			last := 0
			for {
				select {
				case <-done:
					return
				default:
				}
				current, total := tracker.Snapshot()
				assert.GreaterOrEqual(t, current, last)
				assert.LessOrEqual(t, current, total)
				last = current
			}
		}()
	}

	for i := 0; i < 100; i++ {
		tracker.Advance()
	}
	close(done)
	wg.Wait()

	assert.Equal(t, 100, tracker.Percent())
}
