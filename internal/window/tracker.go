package window

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"
)

const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultQuietPeriod  = 400 * time.Millisecond
)

// Tracker polls the window geometry and reports settled changes. Wails v2
// has no resize or move events.
type Tracker struct {
	rt       Runtime
	interval time.Duration
	debounce func(f func())
	onResize func(width, height int)
	onMove   func(x, y int)

	mu          sync.Mutex
	seeded      bool
	w, h, x, y  int
	sizeDirty   bool
	moveDirty   bool
	stop        chan struct{}
	stopOnce    sync.Once
	startedOnce sync.Once
}

// NewTracker creates a tracker; callbacks run after quiet of no change
func NewTracker(rt Runtime, interval, quiet time.Duration, onResize func(w, h int), onMove func(x, y int)) *Tracker {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Tracker{
		rt:       rt,
		interval: interval,
		debounce: debounce.New(quiet),
		onResize: onResize,
		onMove:   onMove,
		stop:     make(chan struct{}),
	}
}

// Start begins polling until ctx is done or Stop is called
func (t *Tracker) Start(ctx context.Context) {
	t.startedOnce.Do(func() {
		t.poll(ctx)
		go t.loop(ctx)
	})
}

// Stop ends polling; pending changes are flushed
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
		t.flush()
	})
}

func (t *Tracker) loop(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stop:
			return
		case <-ticker.C:
			t.poll(ctx)
		}
	}
}

// poll samples the window once. The first sample only seeds the baseline.
func (t *Tracker) poll(ctx context.Context) {
	if t.rt.WindowIsMinimised(ctx) {
		return
	}
	w, h := t.rt.WindowGetSize(ctx)
	x, y := t.rt.WindowGetPosition(ctx)

	t.mu.Lock()
	changed := false
	if t.seeded {
		if w != t.w || h != t.h {
			t.sizeDirty = true
			changed = true
		}
		if x != t.x || y != t.y {
			t.moveDirty = true
			changed = true
		}
	}
	t.seeded = true
	t.w, t.h, t.x, t.y = w, h, x, y
	t.mu.Unlock()

	if changed {
		t.debounce(t.flush)
	}
}

func (t *Tracker) flush() {
	t.mu.Lock()
	sizeDirty, moveDirty := t.sizeDirty, t.moveDirty
	w, h, x, y := t.w, t.h, t.x, t.y
	t.sizeDirty, t.moveDirty = false, false
	t.mu.Unlock()

	if sizeDirty && t.onResize != nil {
		t.onResize(w, h)
	}
	if moveDirty && t.onMove != nil {
		t.onMove(x, y)
	}
}
