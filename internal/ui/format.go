package ui

import (
	"fmt"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// FormatFileSize renders a byte count in human-readable units
func FormatFileSize(size int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case size >= gb:
		return fmt.Sprintf("%.1f GB", float64(size)/float64(gb))
	case size >= mb:
		return fmt.Sprintf("%.1f MB", float64(size)/float64(mb))
	case size >= kb:
		return fmt.Sprintf("%.1f KB", float64(size)/float64(kb))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

// FormatScore renders a relevance score as a percentage.
func FormatScore(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}

// Truncate shortens s to at most width terminal cells, ANSI-aware.
func Truncate(s string, width int) string {
	if runewidth.StringWidth(ansi.Strip(s)) <= width {
		return s
	}
	return ansi.Truncate(s, width-1, "…")
}
