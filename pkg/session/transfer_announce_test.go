package session

import (
	"testing"
	"time"
)

func TestTransferAnnounceTickerFiresRepeatedly(t *testing.T) {
	ch := make(chan ControlEvent, 4)
	tk := NewTransferAnnounceTicker(ch)
	tk.Start(10 * time.Millisecond)
	defer tk.Stop()

	time.Sleep(55 * time.Millisecond)
	if len(ch) < 2 {
		t.Fatalf("expected at least 2 ticks, got %d", len(ch))
	}
}

func TestTransferAnnounceTickerStopHaltsTicks(t *testing.T) {
	ch := make(chan ControlEvent, 4)
	tk := NewTransferAnnounceTicker(ch)
	tk.Start(10 * time.Millisecond)
	tk.Stop()

	for len(ch) > 0 {
		<-ch
	}
	time.Sleep(30 * time.Millisecond)
	if len(ch) != 0 {
		t.Fatalf("expected no ticks after Stop, got %d", len(ch))
	}
}
