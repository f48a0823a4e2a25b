package window

import (
	"fmt"
	"net/url"
	"strings"

	"readerdesk/internal/infrastructure/logging"
)

// URLOptions are the inputs of the window load URL
type URLOptions struct {
	Port  int
	Debug bool
	// Override is the configured windowUrl; only http(s) URLs are honoured
	Override string
	// DevServer is the frontend dev server location in dev builds
	DevServer string
}

func (o URLOptions) api() string {
	return fmt.Sprintf("http://localhost:%d/reader3", o.Port)
}

func (o URLOptions) debugFlag() string {
	if o.Debug {
		return "1"
	}
	return "0"
}

// query returns the encoded api/debug parameters
func (o URLOptions) query() string {
	return url.Values{
		"api":   {o.api()},
		"debug": {o.debugFlag()},
	}.Encode()
}

// BuildURL returns the URL the main window should load. Precedence: a valid
// http(s) override, then the dev server, then the bundled index.html.
func BuildURL(opts URLOptions, logger logging.Logger) string {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	target := fmt.Sprintf("index.html?api=%s&debug=%s", opts.api(), opts.debugFlag())

	if dev := strings.TrimSpace(opts.DevServer); dev != "" {
		if isExternal(dev) {
			if u, err := appendQuery(dev, opts.query()); err == nil {
				target = u
			} else {
				logger.Warn("Ignoring malformed dev server URL", "url", dev, "error", err.Error())
			}
		} else {
			target = fmt.Sprintf("%s?api=%s&debug=%s", dev, opts.api(), opts.debugFlag())
		}
	}

	if override := strings.TrimSpace(opts.Override); override != "" {
		if !isExternal(override) {
			logger.Warn("Ignoring windowUrl without http(s) scheme", "url", override)
			return target
		}
		u, err := appendQuery(override, opts.query())
		if err != nil {
			logger.Warn("Ignoring malformed windowUrl", "url", override, "error", err.Error())
			return target
		}
		target = u
	}

	return target
}

func isExternal(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

func appendQuery(raw, query string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", raw)
	}
	if u.RawQuery == "" {
		u.RawQuery = query
	} else {
		u.RawQuery += "&" + query
	}
	return u.String(), nil
}
