package datasets

import (
	"sync"
	"time"
)

// Watchdog monitors scan activity and closes a channel if no activity is
// recorded within the timeout. The engine kicks it once per yielded row.
type Watchdog struct {
	timeout time.Duration
	timer   *time.Timer
	doneCh  chan struct{}
	once    sync.Once
	mu      sync.Mutex
	running bool
}

// NewWatchdog creates a new Watchdog.
// If timeout is <= 0, the watchdog is inert and never times out.
func NewWatchdog(timeout time.Duration) *Watchdog {
	return &Watchdog{
		timeout: timeout,
		doneCh:  make(chan struct{}),
	}
}

// Start begins the monitoring. It returns a channel that will be closed on timeout.
func (w *Watchdog) Start() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return w.doneCh
	}
	w.running = true

	if w.timeout <= 0 {
		return w.doneCh
	}

	w.timer = time.AfterFunc(w.timeout, w.close)
	return w.doneCh
}

// Kick resets the timeout.
func (w *Watchdog) Kick() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running || w.timer == nil {
		return
	}

	// If the channel already closed we are too late to reset.
	select {
	case <-w.doneCh:
		return
	default:
	}

	w.timer.Reset(w.timeout)
}

// Stop stops the watchdog preventing the timeout from firing.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
}

// Done returns the channel that closes on timeout.
func (w *Watchdog) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Watchdog) close() {
	w.once.Do(func() {
		close(w.doneCh)
	})
}
