//go:build !dev

package window

func devServerURL() string {
	return ""
}
