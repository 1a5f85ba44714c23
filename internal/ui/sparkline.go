package ui

import "strings"

// SparklineChars are the Unicode block characters for rendering sparklines.
// 8 levels of height from near-empty to full.
var SparklineChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders one block character per value, scaled to the maximum.
// Useful for showing how scores fall off down a ranked list. Values at or
// below zero render as the lowest block. Empty input renders as "".
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}

	var sb strings.Builder
	sb.Grow(len(values) * 3) // UTF-8 block chars are 3 bytes

	for _, v := range values {
		idx := 0
		if max > 0 && v > 0 {
			idx = int(v / max * float64(len(SparklineChars)-1))
			if idx >= len(SparklineChars) {
				idx = len(SparklineChars) - 1
			}
		}
		sb.WriteRune(SparklineChars[idx])
	}

	return sb.String()
}

// ScoreBar renders a horizontal bar of the given width filled in proportion
// to value/max. Values outside [0, max] are clamped.
func ScoreBar(value, max float64, width int) string {
	if width <= 0 {
		return ""
	}
	if max <= 0 {
		return strings.Repeat("░", width)
	}

	frac := value / max
	filled := int(frac * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
