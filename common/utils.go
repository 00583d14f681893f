package common

import (
	"fmt"
	"html"
	"math"
)

func FormatWithUnits(n float64) string {
	abs := math.Abs(n)
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2fT", n/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", n/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", n/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", n/1e3)
	default:
		return fmt.Sprintf("%.2f", n)
	}
}

func FormatPercentWithSign(percent float64) string {
	if percent == 0 {
		return "0.00%"
	} else if percent > 0 {
		return fmt.Sprintf("+%.2f%%", percent)
	} else {
		return fmt.Sprintf("%.2f%%", percent)
	}
}

// TruncateAddress shortens a 0x address for chat display, e.g. 0x1234…cdef.
func TruncateAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

func EscapeHTML(text string) string {
	return html.EscapeString(text)
}
