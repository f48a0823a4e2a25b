package window

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"readerdesk/internal/config"
	"readerdesk/internal/testutils"
)

type fakeRuntime struct {
	mu        sync.Mutex
	w, h      int
	x, y      int
	minimised bool
	centered  int
	setSize   [][2]int
	setPos    [][2]int
	scripts   []string
}

func (r *fakeRuntime) WindowGetSize(context.Context) (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.w, r.h
}

func (r *fakeRuntime) WindowGetPosition(context.Context) (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.x, r.y
}

func (r *fakeRuntime) WindowSetSize(_ context.Context, w, h int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w, r.h = w, h
	r.setSize = append(r.setSize, [2]int{w, h})
}

func (r *fakeRuntime) WindowSetPosition(_ context.Context, x, y int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.x, r.y = x, y
	r.setPos = append(r.setPos, [2]int{x, y})
}

func (r *fakeRuntime) WindowCenter(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.centered++
}

func (r *fakeRuntime) WindowIsMinimised(context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.minimised
}

func (r *fakeRuntime) WindowExecJS(_ context.Context, js string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts = append(r.scripts, js)
}

func (r *fakeRuntime) move(x, y int) {
	r.mu.Lock()
	r.x, r.y = x, y
	r.mu.Unlock()
}

func (r *fakeRuntime) resize(w, h int) {
	r.mu.Lock()
	r.w, r.h = w, h
	r.mu.Unlock()
}

func (r *fakeRuntime) scriptCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.scripts)
}

func newStore(t *testing.T, initial *config.ReaderConfig) *config.Manager {
	t.Helper()
	store := config.NewManager(filepath.Join(t.TempDir(), "config.yml"), &testutils.RecordingLogger{}).IgnoreEnvironment()
	if initial != nil {
		if err := store.Save(initial); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	return store
}
