// Package ui holds the frame every view renders inside: one header line
// with the product title, the unread bell badge and the signed-in
// identity, then the content area, then one status bar line of key hints.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/teamup-platform/teamup-cli/internal/theme"
)

// frameLines is the height the header and status bar take together.
const frameLines = 2

// Layout carries the terminal dimensions the frame is rendered into.
type Layout struct {
	Width  int
	Height int
}

// NewLayout creates a Layout for the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height left for the active view once the
// header and status bar have taken theirs.
func (l Layout) ContentHeight() int {
	return l.Height - frameLines
}

// BellBadge renders the header's unread counter. Zero unread gets the
// quiet form so the header width stays stable.
func BellBadge(unread int) string {
	if unread <= 0 {
		return "no new"
	}
	return theme.UnreadStyle.Render(fmt.Sprintf("%d new", unread))
}

// RenderHeader renders the header line: title on the left, the bell badge
// and identity indicator on the right.
func (l Layout) RenderHeader(title, indicator string) string {
	return l.spread(
		theme.HeaderStyle.Render(title),
		theme.HeaderStyle.Align(lipgloss.Right).Render(indicator),
		theme.HeaderStyle,
	)
}

// RenderStatusBar renders the bottom line of keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	return l.spread(theme.StatusBarStyle.Render(hints), "", theme.StatusBarStyle)
}

// spread joins left and right on a single line padded to the full width,
// keeping the bar's background unbroken across the gap.
func (l Layout) spread(left, right string, style lipgloss.Style) string {
	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	filler := style.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(style.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// RenderWithFrame stacks header, content, and status bar into the final
// terminal view.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}
