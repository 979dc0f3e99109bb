package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/supercuts/supercuts/internal/models"
)

// FormatSummary produces a short plain-language report of a sweep.
func FormatSummary(s models.SweepSummary) string {
	var b strings.Builder

	b.WriteString("=== Sweep Summary ===\n\n")
	fmt.Fprintf(&b, "Combinations:  %d\n", s.Combinations)
	fmt.Fprintf(&b, "Scale factor:  %g\n", s.ScaleFactor)
	fmt.Fprintf(&b, "Duration:      %v\n", time.Duration(s.DurationMs)*time.Millisecond)

	if s.Best != nil {
		fmt.Fprintf(&b, "Best:          %s (scaled %s, %d events)\n",
			s.Best.Hash, formatYield(s.Best.Details.Scaled), s.Best.Details.Raw)
	}

	y := s.Yield
	if y.Count > 0 {
		fmt.Fprintf(&b, "Scaled yield:  min %s, median %s, max %s\n",
			formatYield(y.Min), formatYield(y.Median), formatYield(y.Max))
		fmt.Fprintf(&b, "               mean %s ± %s\n", formatYield(y.Mean), formatYield(y.StdDev))
		if y.Max == 0 {
			b.WriteString("\nNo combination selected any signal events.\n")
		}
	}

	return b.String()
}
