package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparkline_ScalesToMax(t *testing.T) {
	// Given: values spanning the full range
	values := []float64{1.0, 0.5, 0.0}

	// When: rendering
	out := Sparkline(values)

	// Then: one rune per value, max renders full, zero renders lowest
	runes := []rune(out)
	assert.Len(t, runes, 3)
	assert.Equal(t, '█', runes[0])
	assert.Equal(t, '▁', runes[2])
}

func TestSparkline_EmptyAndNonPositive(t *testing.T) {
	// Empty input renders nothing
	assert.Empty(t, Sparkline(nil))

	// All non-positive values render as the lowest block
	out := Sparkline([]float64{0, -1, -2})
	assert.Equal(t, "▁▁▁", out)
}

func TestScoreBar_FillsProportionally(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		max      float64
		width    int
		expected string
	}{
		{"full", 1.0, 1.0, 4, "████"},
		{"half", 0.5, 1.0, 4, "██░░"},
		{"empty", 0.0, 1.0, 4, "░░░░"},
		{"negative clamps to empty", -2.0, 1.0, 4, "░░░░"},
		{"above max clamps to full", 3.0, 1.0, 4, "████"},
		{"zero max", 0.5, 0.0, 4, "░░░░"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ScoreBar(tt.value, tt.max, tt.width))
		})
	}
}

func TestScoreBar_ZeroWidth(t *testing.T) {
	assert.Empty(t, ScoreBar(0.5, 1.0, 0))
}
