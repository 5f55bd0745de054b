package persist

import (
	"sync"
	"time"
)

// DefaultSavedIndicatorDuration is how long the "saved" flag stays up after a save.
const DefaultSavedIndicatorDuration = 1500 * time.Millisecond

// SavedIndicator is a transient flag raised by each successful save. Every
// Mark restarts the countdown, so a burst of saves keeps it visible until the
// last one has aged out.
type SavedIndicator struct {
	d time.Duration

	mu      sync.Mutex
	visible bool
	gen     uint64
	timer   *time.Timer
}

// NewSavedIndicator returns an indicator that hides d after the latest Mark.
// A non-positive d never shows the indicator.
func NewSavedIndicator(d time.Duration) *SavedIndicator {
	return &SavedIndicator{d: d}
}

// Mark shows the indicator and restarts its timer.
func (i *SavedIndicator) Mark() {
	if i == nil || i.d <= 0 {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	i.visible = true
	i.gen++
	gen := i.gen
	if i.timer != nil {
		i.timer.Stop()
	}
	i.timer = time.AfterFunc(i.d, func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		if i.gen == gen {
			i.visible = false
		}
	})
}

// Visible reports whether the indicator is currently shown.
func (i *SavedIndicator) Visible() bool {
	if i == nil {
		return false
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.visible
}

// Stop hides the indicator and cancels any pending timer.
func (i *SavedIndicator) Stop() {
	if i == nil {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.gen++
	i.visible = false
	if i.timer != nil {
		i.timer.Stop()
		i.timer = nil
	}
}
