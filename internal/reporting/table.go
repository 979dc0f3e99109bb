package reporting

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/supercuts/supercuts/internal/models"
	"github.com/supercuts/supercuts/internal/orchestration"
)

// hashWidth is the number of hash characters shown in tables. Prefixes of
// this length are accepted by the hash lookup command.
const hashWidth = 16

var topHeaders = []string{"#", "Hash", "Raw", "Weighted", "Scaled"}

// FormatTop renders the n best results, ranked by scaled yield, as a
// fixed-width table. n <= 0 renders every result.
func FormatTop(results []models.Result, n int) string {
	ranked := orchestration.Top(results, n)
	if len(ranked) == 0 {
		return "No results.\n"
	}

	rows := make([][]string, 0, len(ranked))
	for i, r := range ranked {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			truncate(r.Hash, hashWidth),
			fmt.Sprintf("%d", r.Details.Raw),
			formatYield(r.Details.Weighted),
			formatYield(r.Details.Scaled),
		})
	}

	widths := make([]int, len(topHeaders))
	for i, h := range topHeaders {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder
	writeRow(&b, topHeaders, widths)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	writeRow(&b, sep, widths)
	for _, row := range rows {
		writeRow(&b, row, widths)
	}
	return b.String()
}

// writeRow left-aligns the first two columns and right-aligns the numeric ones.
func writeRow(b *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		if i < 2 {
			b.WriteString(padRight(cell, widths[i]))
		} else {
			b.WriteString(padLeft(cell, widths[i]))
		}
	}
	b.WriteString("\n")
}

func formatYield(v float64) string {
	return fmt.Sprintf("%.4g", v)
}

// truncate shortens s to maxLen runes, replacing the last rune with "…" if needed.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func padLeft(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return strings.Repeat(" ", width-sw) + s
}
