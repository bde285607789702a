// Package theme is the appearance provider: one palette of adaptive colors
// bound to a lipgloss renderer whose dark/light mode can be toggled at runtime.
package theme

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Mode is the requested appearance.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeDark  Mode = "dark"
	ModeLight Mode = "light"
)

// ParseMode accepts auto, dark or light (case-insensitive). Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeDark:
		return ModeDark, nil
	case ModeLight:
		return ModeLight, nil
	}
	return "", fmt.Errorf("invalid theme mode %q (want auto, dark or light)", s)
}

// Theme carries the palette. Presentational code reads it, never writes it;
// navigation and widget state do not depend on it.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Accent    lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor
	Info      lipgloss.AdaptiveColor
	Code      lipgloss.AdaptiveColor

	mode     Mode
	detected bool
}

// Default returns the palette bound to r, following the terminal background.
func Default(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#4338ca", Dark: "#8be9fd"},
		Secondary: lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#bd93f9"},
		Accent:    lipgloss.AdaptiveColor{Light: "#c2410c", Dark: "#ffb86c"},
		Text:      lipgloss.AdaptiveColor{Light: "#000000", Dark: "#f8f8f2"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#475569", Dark: "#bfbfbf"},
		Muted:     lipgloss.AdaptiveColor{Light: "#94a3b8", Dark: "#6272a4"},
		Border:    lipgloss.AdaptiveColor{Light: "#cbd5e1", Dark: "#44475a"},
		Highlight: lipgloss.AdaptiveColor{Light: "#e2e8f0", Dark: "#343746"},
		Success:   lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#50fa7b"},
		Danger:    lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#ff5555"},
		Warning:   lipgloss.AdaptiveColor{Light: "#a16207", Dark: "#f1fa8c"},
		Info:      lipgloss.AdaptiveColor{Light: "#0369a1", Dark: "#8be9fd"},
		Code:      lipgloss.AdaptiveColor{Light: "#be185d", Dark: "#ff79c6"},

		mode:     ModeAuto,
		detected: r.HasDarkBackground(),
	}
}

// Plain returns a theme whose renderer writes no escape sequences. Used by the
// static exports.
func Plain() Theme {
	return Default(lipgloss.NewRenderer(io.Discard))
}

// Mode reports the requested mode (auto, dark or light).
func (t Theme) Mode() Mode {
	if t.mode == "" {
		return ModeAuto
	}
	return t.mode
}

// IsDark reports the effective appearance.
func (t Theme) IsDark() bool {
	return t.Renderer.HasDarkBackground()
}

// WithMode applies m to the renderer. Auto restores the detected background.
func (t Theme) WithMode(m Mode) Theme {
	switch m {
	case ModeDark:
		t.Renderer.SetHasDarkBackground(true)
	case ModeLight:
		t.Renderer.SetHasDarkBackground(false)
	default:
		m = ModeAuto
		t.Renderer.SetHasDarkBackground(t.detected)
	}
	t.mode = m
	return t
}

// Toggle flips between explicit dark and light.
func (t Theme) Toggle() Theme {
	if t.IsDark() {
		return t.WithMode(ModeLight)
	}
	return t.WithMode(ModeDark)
}

// Style is a fresh style bound to the theme's renderer.
func (t Theme) Style() lipgloss.Style {
	return t.Renderer.NewStyle()
}

// Fg is a shorthand for a foreground-only style.
func (t Theme) Fg(c lipgloss.TerminalColor) lipgloss.Style {
	return t.Renderer.NewStyle().Foreground(c)
}

// Hex resolves an adaptive color for the current appearance.
func (t Theme) Hex(c lipgloss.AdaptiveColor) string {
	if t.IsDark() {
		return c.Dark
	}
	return c.Light
}
