package java

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformedVersion is returned when `java -version` output cannot be parsed
	ErrMalformedVersion = stderrors.New("unrecognised java version")
	// ErrVersionTooLow is returned for runtimes older than 1.8
	ErrVersionTooLow = stderrors.New("java version too low")
)

// Version is a parsed Java runtime version
type Version struct {
	Major int
	Minor int
	Raw   string
}

func (v Version) String() string {
	return v.Raw
}

// Supported reports whether v is at least 1.8. Modern versions ("9", "17",
// "21") carry the feature release in Major.
func (v Version) Supported() bool {
	return v.Major > 1 || (v.Major == 1 && v.Minor >= 8)
}

// ParseVersion parses a version token such as 1.8.0_301, 17.0.2, 21 or 11-ea
func ParseVersion(token string) (Version, error) {
	raw := strings.Trim(strings.TrimSpace(token), `"`)
	if raw == "" {
		return Version{}, fmt.Errorf("%w: empty version", ErrMalformedVersion)
	}

	parts := strings.SplitN(raw, ".", 3)
	major, ok := leadingInt(parts[0])
	if !ok {
		return Version{}, fmt.Errorf("%w: %q", ErrMalformedVersion, raw)
	}

	minor := 0
	if len(parts) > 1 {
		if minor, ok = leadingInt(parts[1]); !ok {
			return Version{}, fmt.Errorf("%w: %q", ErrMalformedVersion, raw)
		}
	}

	return Version{Major: major, Minor: minor, Raw: raw}, nil
}

// ParseVersionOutput extracts the version from the stderr of `java -version`.
// Only the first line is considered, e.g.
//
//	java version "1.8.0_301"
//	openjdk version "17.0.2" 2022-01-18
func ParseVersionOutput(output string) (Version, error) {
	line, _, _ := strings.Cut(strings.TrimLeft(output, "\r\n\t "), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return Version{}, fmt.Errorf("%w: empty output", ErrMalformedVersion)
	}

	if start := strings.IndexByte(line, '"'); start >= 0 {
		if end := strings.IndexByte(line[start+1:], '"'); end >= 0 {
			return ParseVersion(line[start+1 : start+1+end])
		}
	}

	fields := strings.Fields(line)
	switch {
	case len(fields) > 2:
		return ParseVersion(fields[2])
	case len(fields) == 1:
		return ParseVersion(fields[0])
	default:
		return Version{}, fmt.Errorf("%w: %q", ErrMalformedVersion, line)
	}
}

// leadingInt parses the digits at the start of s ("0_301" -> 0, "11-ea" -> 11)
func leadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
