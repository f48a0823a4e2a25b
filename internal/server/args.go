package server

import (
	"fmt"
	"math"
	"strconv"

	"readerdesk/internal/config"
	"readerdesk/internal/infrastructure/logging"
)

// Keys the supervisor controls itself; values for them in serverConfig are ignored
const (
	WorkDirKey = "reader.app.workDir"
	PortKey    = "reader.server.port"
)

// PrepareArgs builds the java command line:
//
//	-jar <jar> [--key=value]... --reader.server.port=<port> --reader.app.workDir=<dir>
//
// serverConfig entries keep their stored order. portOverride wins over the
// configured port when positive.
func PrepareArgs(jarPath string, cfg *config.ReaderConfig, portOverride int, workDir string, logger logging.Logger) []string {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	args := []string{"-jar", jarPath}

	if cfg != nil {
		cfg.ServerConfig.Each(func(key string, value any) {
			switch key {
			case WorkDirKey:
				logger.Warn("Ignoring server setting, the work dir is managed by the shell", "key", key)
				return
			case PortKey:
				logger.Warn("Ignoring server setting, use serverPort to choose the port", "key", key)
				return
			}

			formatted, ok := formatValue(value)
			if !ok {
				logger.Warn("Ignoring server setting with unsupported value", "key", key, "value", fmt.Sprintf("%v", value))
				return
			}
			if formatted == "" {
				return
			}
			args = append(args, fmt.Sprintf("--%s=%s", key, formatted))
		})
	}

	port := portOverride
	if port <= 0 {
		port = cfg.ServerPortOrDefault()
	}
	args = append(args,
		fmt.Sprintf("--%s=%d", PortKey, port),
		fmt.Sprintf("--%s=%s", WorkDirKey, workDir),
	)
	return args
}

// formatValue renders booleans, strings and non-negative integers. Integral
// floats are accepted because JSON numbers decode as float64.
func formatValue(value any) (string, bool) {
	switch v := value.(type) {
	case bool:
		return strconv.FormatBool(v), true
	case string:
		return v, true
	case int:
		return nonNegative(int64(v))
	case int32:
		return nonNegative(int64(v))
	case int64:
		return nonNegative(v)
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		if v < 0 || v != math.Trunc(v) || v > math.MaxInt64 {
			return "", false
		}
		return strconv.FormatInt(int64(v), 10), true
	default:
		return "", false
	}
}

func nonNegative(v int64) (string, bool) {
	if v < 0 {
		return "", false
	}
	return strconv.FormatInt(v, 10), true
}
