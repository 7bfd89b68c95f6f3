package layout

import (
	"strconv"
	"strings"
)

// RGB is an 8-bit per channel color.
type RGB struct {
	R, G, B int
}

// ParseColor parses "#rrggbb" or "#rgb". Invalid input yields fallback.
func ParseColor(s string, fallback RGB) RGB {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fallback
	}
	return RGB{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}
}

// ValidColor reports whether s is a "#rrggbb" or "#rgb" color.
func ValidColor(s string) bool {
	bad := RGB{-1, -1, -1}
	return ParseColor(s, bad) != bad
}
