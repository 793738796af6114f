package session

import (
	"sync"
	"time"
)

// DefaultTransferAnnounceInterval is how often the coordinator repeats
// its "please hold while we transfer you" prompt while a B-leg INVITE is
// outstanding.
const DefaultTransferAnnounceInterval = 5 * time.Second

// TransferAnnounceTicker periodically sends TransferAnnounce{} so the
// coordinator can replay its hold prompt. It mirrors a
// time.Ticker-with-Skip-on-miss policy: a slow consumer never gets a
// backlog of queued announcements, it just gets the next tick.
type TransferAnnounceTicker struct {
	mu     sync.Mutex
	stop   chan struct{}
	notify chan<- ControlEvent
}

// NewTransferAnnounceTicker returns a ticker that is not yet running.
func NewTransferAnnounceTicker(notify chan<- ControlEvent) *TransferAnnounceTicker {
	return &TransferAnnounceTicker{notify: notify}
}

// Start begins ticking at interval, replacing any previous run.
func (t *TransferAnnounceTicker) Start(interval time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()

	stop := make(chan struct{})
	t.stop = stop
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case t.notify <- TransferAnnounce{}:
				default:
				}
			case <-stop:
				return
			}
		}
	}()
}

// Stop halts ticking.
func (t *TransferAnnounceTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *TransferAnnounceTicker) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}
