package logging

import (
	wailslogger "github.com/wailsapp/wails/v2/pkg/logger"
)

var _ wailslogger.Logger = (*WailsLoggerAdapter)(nil)

// WailsLoggerAdapter feeds the Wails runtime's log output into a Logger.
// Every line carries source=wails. Trace lines are dropped unless verbose.
type WailsLoggerAdapter struct {
	logger  Logger
	verbose bool
}

// NewWailsLoggerAdapter wraps logger; nil falls back to the default logger
func NewWailsLoggerAdapter(logger Logger, verbose bool) *WailsLoggerAdapter {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &WailsLoggerAdapter{logger: logger, verbose: verbose}
}

func (w *WailsLoggerAdapter) emit(level, message string) {
	switch level {
	case "trace":
		if w.verbose {
			w.logger.Debug(message, "source", "wails", "level", level)
		}
	case "debug":
		w.logger.Debug(message, "source", "wails")
	case "warning":
		w.logger.Warn(message, "source", "wails")
	case "error":
		w.logger.Error(message, "source", "wails")
	case "fatal":
		// logged only; exiting is left to the shell
		w.logger.Error(message, "source", "wails", "level", level)
	default:
		w.logger.Info(message, "source", "wails")
	}
}

func (w *WailsLoggerAdapter) Print(message string)   { w.emit("print", message) }
func (w *WailsLoggerAdapter) Trace(message string)   { w.emit("trace", message) }
func (w *WailsLoggerAdapter) Debug(message string)   { w.emit("debug", message) }
func (w *WailsLoggerAdapter) Info(message string)    { w.emit("info", message) }
func (w *WailsLoggerAdapter) Warning(message string) { w.emit("warning", message) }
func (w *WailsLoggerAdapter) Error(message string)   { w.emit("error", message) }
func (w *WailsLoggerAdapter) Fatal(message string)   { w.emit("fatal", message) }
