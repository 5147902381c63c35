// ABOUTME: Tests for the background preset

package termfix

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestApply(t *testing.T) {
	Apply(false)
	if lipgloss.HasDarkBackground() {
		t.Error("expected light background after Apply(false)")
	}
	Apply(true)
	if !lipgloss.HasDarkBackground() {
		t.Error("expected dark background after Apply(true)")
	}
}
