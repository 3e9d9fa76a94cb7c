package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeFetcher struct {
	mu      sync.Mutex
	notices []Notice
	err     error
	calls   int
	block   chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context) ([]Notice, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	notices, err := f.notices, f.err
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return notices, err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeAlerter struct {
	mu     sync.Mutex
	alerts []Notice
}

func (a *fakeAlerter) Alert(n Notice) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, n)
}

func (a *fakeAlerter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.alerts)
}

func newTestPoller(f Fetcher, a Alerter) *Poller {
	return New(f, a, zerolog.Nop(), WithInterval(5*time.Millisecond), WithFetchTimeout(time.Second))
}

func TestPollOnce_AlertsNewUnreadAlertTypes(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{notices: []Notice{
		{ID: "a", Type: "video", Read: false, CreatedAt: now},
		{ID: "b", Type: "appointment", Read: false, CreatedAt: now},
		{ID: "c", Type: "like", Read: false, CreatedAt: now},
		{ID: "d", Type: "video", Read: true, CreatedAt: now},
		{ID: "e", Type: "video", Read: false, CreatedAt: now.Add(-time.Hour)},
	}}
	alerter := &fakeAlerter{}
	p := newTestPoller(fetcher, alerter)
	p.watermark = now.Add(-time.Minute)

	p.pollOnce(context.Background())

	if alerter.count() != 2 {
		t.Fatalf("alerted %d notices, want 2 (unread video+appointment after watermark)", alerter.count())
	}
	for _, n := range alerter.alerts {
		if n.ID != "a" && n.ID != "b" {
			t.Errorf("unexpected alert for %q", n.ID)
		}
	}
}

func TestPollOnce_NoRealertAcrossPolls(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{notices: []Notice{
		{ID: "a", Type: "video", Read: false, CreatedAt: now},
	}}
	alerter := &fakeAlerter{}
	p := newTestPoller(fetcher, alerter)
	p.watermark = now.Add(-time.Minute)

	p.pollOnce(context.Background())
	if alerter.count() != 1 {
		t.Fatalf("first poll alerted %d, want 1", alerter.count())
	}

	// The notification stays unread, but the watermark has moved past it.
	p.pollOnce(context.Background())
	if alerter.count() != 1 {
		t.Errorf("second poll re-alerted: %d alerts total", alerter.count())
	}
}

func TestPollOnce_WatermarkAdvancesWithoutNewNotices(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := newTestPoller(fetcher, &fakeAlerter{})
	before := time.Now().Add(-time.Hour)
	p.watermark = before

	p.pollOnce(context.Background())
	if !p.watermark.After(before) {
		t.Error("watermark should advance on an empty successful fetch")
	}
}

func TestPollOnce_FetchErrorKeepsWatermark(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{err: errors.New("server unreachable")}
	alerter := &fakeAlerter{}
	p := newTestPoller(fetcher, alerter)
	watermark := now.Add(-time.Minute)
	p.watermark = watermark

	p.pollOnce(context.Background())
	if alerter.count() != 0 {
		t.Error("failed fetch must not alert")
	}
	if !p.watermark.Equal(watermark) {
		t.Error("failed fetch must not advance the watermark")
	}

	// The next successful fetch still sees the notification created while
	// the server was unreachable.
	fetcher.mu.Lock()
	fetcher.err = nil
	fetcher.notices = []Notice{{ID: "a", Type: "appointment", Read: false, CreatedAt: now}}
	fetcher.mu.Unlock()

	p.pollOnce(context.Background())
	if alerter.count() != 1 {
		t.Errorf("recovery poll alerted %d, want 1", alerter.count())
	}
}

func TestPollOnce_SkipsWhileFetchInFlight(t *testing.T) {
	block := make(chan struct{})
	fetcher := &fakeFetcher{block: block}
	p := newTestPoller(fetcher, &fakeAlerter{})
	p.watermark = time.Now()

	var done sync.WaitGroup
	done.Add(1)
	go func() {
		defer done.Done()
		p.pollOnce(context.Background())
	}()

	// Wait for the first fetch to be issued, then attempt another cycle.
	for i := 0; fetcher.callCount() == 0 && i < 100; i++ {
		time.Sleep(time.Millisecond)
	}
	p.pollOnce(context.Background())
	if fetcher.callCount() != 1 {
		t.Errorf("overlapping cycle issued a fetch: %d calls", fetcher.callCount())
	}

	close(block)
	done.Wait()
}

func TestPoller_StartAndStop(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := newTestPoller(fetcher, &fakeAlerter{})

	p.Start(context.Background())
	deadline := time.Now().Add(time.Second)
	for fetcher.callCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if fetcher.callCount() < 2 {
		t.Fatal("poller never fetched")
	}

	p.Stop()
	after := fetcher.callCount()
	time.Sleep(30 * time.Millisecond)
	if fetcher.callCount() != after {
		t.Errorf("fetch issued after Stop: %d -> %d", after, fetcher.callCount())
	}
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	p := newTestPoller(&fakeFetcher{}, &fakeAlerter{})
	p.Start(context.Background())
	p.Stop()
	p.Stop()
}

func TestPoller_StartWhileRunningIsNoop(t *testing.T) {
	p := newTestPoller(&fakeFetcher{}, &fakeAlerter{})
	p.Start(context.Background())
	done := p.done
	p.Start(context.Background())
	if p.done != done {
		t.Fatal("second Start replaced the running loop")
	}
	p.Stop()
}

func TestPoller_ContextCancellationStopsPolling(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := newTestPoller(fetcher, &fakeAlerter{})

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	for i := 0; fetcher.callCount() == 0 && i < 200; i++ {
		time.Sleep(time.Millisecond)
	}
	cancel()
	time.Sleep(20 * time.Millisecond)
	after := fetcher.callCount()
	time.Sleep(30 * time.Millisecond)
	if fetcher.callCount() != after {
		t.Error("poll loop survived context cancellation")
	}
}
