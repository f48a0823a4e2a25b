//go:build dev

package window

import "os"

// devServerURL is set by `wails dev`
func devServerURL() string {
	return os.Getenv("FRONTEND_DEVSERVER_URL")
}
