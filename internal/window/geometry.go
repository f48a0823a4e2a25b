package window

import (
	"math"

	"readerdesk/internal/config"
)

const (
	DefaultWidth  = 1280
	DefaultHeight = 800
)

// InitialSize returns the remembered window size when setWindowSize is on
// and both dimensions are stored.
func InitialSize(cfg *config.ReaderConfig) (width, height int, ok bool) {
	if cfg == nil || cfg.SetWindowSize == nil || !*cfg.SetWindowSize {
		return DefaultWidth, DefaultHeight, false
	}
	if cfg.Width == nil || cfg.Height == nil {
		return DefaultWidth, DefaultHeight, false
	}
	return int(math.Round(*cfg.Width)), int(math.Round(*cfg.Height)), true
}

// initialPosition returns the remembered position when setWindowPosition is
// on and both coordinates are stored.
func initialPosition(cfg *config.ReaderConfig) (x, y int, ok bool) {
	if cfg == nil || cfg.SetWindowPosition == nil || !*cfg.SetWindowPosition {
		return 0, 0, false
	}
	if cfg.PositionX == nil || cfg.PositionY == nil {
		return 0, 0, false
	}
	return int(math.Round(*cfg.PositionX)), int(math.Round(*cfg.PositionY)), true
}
