package window

import (
	"context"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// Runtime is the subset of the Wails window API the manager uses
type Runtime interface {
	WindowGetSize(ctx context.Context) (int, int)
	WindowGetPosition(ctx context.Context) (int, int)
	WindowSetSize(ctx context.Context, width, height int)
	WindowSetPosition(ctx context.Context, x, y int)
	WindowCenter(ctx context.Context)
	WindowIsMinimised(ctx context.Context) bool
	WindowExecJS(ctx context.Context, js string)
}

// WailsRuntime forwards to the Wails runtime package
type WailsRuntime struct{}

func (WailsRuntime) WindowGetSize(ctx context.Context) (int, int) {
	return wailsruntime.WindowGetSize(ctx)
}

func (WailsRuntime) WindowGetPosition(ctx context.Context) (int, int) {
	return wailsruntime.WindowGetPosition(ctx)
}

func (WailsRuntime) WindowSetSize(ctx context.Context, width, height int) {
	wailsruntime.WindowSetSize(ctx, width, height)
}

func (WailsRuntime) WindowSetPosition(ctx context.Context, x, y int) {
	wailsruntime.WindowSetPosition(ctx, x, y)
}

func (WailsRuntime) WindowCenter(ctx context.Context) {
	wailsruntime.WindowCenter(ctx)
}

func (WailsRuntime) WindowIsMinimised(ctx context.Context) bool {
	return wailsruntime.WindowIsMinimised(ctx)
}

func (WailsRuntime) WindowExecJS(ctx context.Context, js string) {
	wailsruntime.WindowExecJS(ctx, js)
}
