package statusline

import "math"

// autocompactBuffer is the token headroom Claude Code reserves before
// auto-compacting a conversation. The effective window is the configured
// size minus this buffer, so displayed percentages count it as consumed.
const autocompactBuffer = 45_000

// Color thresholds for the context gauge, in percent.
const (
	thresholdYellow = 70
	thresholdRed    = 85
)

// ContextPercent computes how full the effective context window is, as a
// rounded percentage capped at 100. Windows no larger than the
// autocompact buffer, and payloads without usage data, report 0.
func ContextPercent(cw *ContextWindow) int {
	if cw == nil || cw.Size <= autocompactBuffer || cw.CurrentUsage == nil {
		return 0
	}

	pct := float64(cw.CurrentUsage.Total()+autocompactBuffer) / float64(cw.Size) * 100
	rounded := int(math.Round(pct))
	if rounded > 100 {
		return 100
	}
	return rounded
}

// ContextTier classifies a percentage into the gauge color.
func ContextTier(percent int) string {
	switch {
	case percent >= thresholdRed:
		return "red"
	case percent >= thresholdYellow:
		return "yellow"
	default:
		return "green"
	}
}
