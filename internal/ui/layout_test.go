package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentAreaAccountsForFrame(t *testing.T) {
	l := NewLayout(100, 30)
	assert.Equal(t, 28, l.ContentHeight())
	assert.Equal(t, 100, l.ContentWidth())
}

func TestBellBadge(t *testing.T) {
	assert.Equal(t, "no new", BellBadge(0))
	assert.Equal(t, "no new", BellBadge(-1), "a lagging count endpoint never renders a negative badge")
	assert.Contains(t, BellBadge(3), "3 new")
}

func TestRenderHeaderCarriesTitleAndIndicator(t *testing.T) {
	l := NewLayout(60, 20)
	header := l.RenderHeader("TeamUp", "2 new | ana@example.com")
	assert.Contains(t, header, "TeamUp")
	assert.Contains(t, header, "ana@example.com")
}
