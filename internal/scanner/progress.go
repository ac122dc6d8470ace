package scanner

import "sync"

// ProgressTracker tracks scan progress and delivers snapshots to a callback
// in order, from a single goroutine.
type ProgressTracker struct {
	callback func(*Progress)
	updates  chan Progress
	done     chan struct{}
	progress Progress
	mu       sync.RWMutex
	closed   bool
}

// NewProgressTracker creates a tracker. callback may be nil. Close must be
// called to stop delivery.
func NewProgressTracker(callback func(*Progress)) *ProgressTracker {
	p := &ProgressTracker{
		callback: callback,
		progress: Progress{Phase: PhaseWalking},
		done:     make(chan struct{}),
	}
	if callback == nil {
		close(p.done)
		return p
	}

	p.updates = make(chan Progress, 64)
	go func() {
		defer close(p.done)
		for snapshot := range p.updates {
			p.callback(&snapshot)
		}
	}()
	return p
}

// SetPhase updates the current phase and resets the counters.
func (p *ProgressTracker) SetPhase(phase ScanPhase) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.progress.Phase = phase
	p.progress.Current = 0
	p.progress.Total = 0
	p.progress.CurrentItem = ""
	p.notify()
}

// SetTotal sets the total items for the current phase.
func (p *ProgressTracker) SetTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.progress.Total = total
	p.notify()
}

// Increment advances the current phase by one item.
func (p *ProgressTracker) Increment(currentItem string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.progress.Current++
	p.progress.CurrentItem = currentItem
	p.notify()
}

// Record counts catalog changes.
func (p *ProgressTracker) Record(added, updated, removed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.progress.Added += added
	p.progress.Updated += updated
	p.progress.Removed += removed
	p.notify()
}

// AddError records an error.
func (p *ProgressTracker) AddError(err ScanError) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.progress.Errors = append(p.progress.Errors, err)
	p.notify()
}

// Get returns a snapshot of the current progress.
func (p *ProgressTracker) Get() Progress {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snapshot := p.progress
	snapshot.Errors = append([]ScanError(nil), p.progress.Errors...)
	return snapshot
}

// Close flushes pending snapshots and stops delivery.
func (p *ProgressTracker) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		if p.updates != nil {
			close(p.updates)
		}
	}
	p.mu.Unlock()
	<-p.done
}

// notify must be called with mu held.
func (p *ProgressTracker) notify() {
	if p.updates == nil || p.closed {
		return
	}
	snapshot := p.progress
	snapshot.Errors = append([]ScanError(nil), p.progress.Errors...)
	p.updates <- snapshot
}
