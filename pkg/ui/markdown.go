package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/underhood/pkg/theme"
)

// MarkdownRenderer wraps a glamour renderer for prose, callout bodies and
// quiz explanations. Output is cached per source until the width or the
// theme changes.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
	theme    theme.Theme
	dark     bool
	cache    map[string]string
}

// NewMarkdownRenderer creates a renderer wrapping at width with colors from th.
func NewMarkdownRenderer(width int, th theme.Theme) *MarkdownRenderer {
	mr := &MarkdownRenderer{width: width, theme: th}
	mr.rebuild()
	return mr
}

func (mr *MarkdownRenderer) rebuild() {
	mr.dark = mr.theme.IsDark()
	r, err := glamour.NewTermRenderer(
		glamour.WithWordWrap(mr.width),
		glamour.WithStyles(buildStyleFromTheme(mr.theme, mr.dark)),
		glamour.WithColorProfile(mr.theme.Renderer.ColorProfile()),
	)
	if err != nil {
		r = nil
	}
	mr.renderer = r
	mr.cache = make(map[string]string)
}

// Render converts markdown to styled terminal text. Without a renderer the
// input comes back unchanged.
func (mr *MarkdownRenderer) Render(markdown string) (string, error) {
	if mr.renderer == nil {
		return markdown, nil
	}
	if out, ok := mr.cache[markdown]; ok {
		return out, nil
	}
	out, err := mr.renderer.Render(markdown)
	if err != nil {
		return markdown, err
	}
	out = trimRendered(out)
	if mr.cache == nil {
		mr.cache = make(map[string]string)
	}
	mr.cache[markdown] = out
	return out, nil
}

// SetWidth rebuilds the renderer for a new wrap width.
func (mr *MarkdownRenderer) SetWidth(width int) {
	if width <= 0 || width == mr.width {
		return
	}
	mr.width = width
	mr.rebuild()
}

// SetTheme rebuilds for th. It always rebuilds, since the appearance may have
// flipped on the same shared renderer.
func (mr *MarkdownRenderer) SetTheme(th theme.Theme) {
	mr.theme = th
	mr.rebuild()
}

// IsDark reports the appearance the renderer was built for.
func (mr *MarkdownRenderer) IsDark() bool {
	return mr.dark
}

// trimRendered drops the blank lines glamour puts around a document and the
// padding it adds to the right of each line.
func trimRendered(s string) string {
	lines := strings.Split(strings.Trim(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}

func extractHex(c lipgloss.AdaptiveColor, dark bool) string {
	if dark {
		return c.Dark
	}
	return c.Light
}

func buildStyleFromTheme(th theme.Theme, dark bool) ansi.StyleConfig {
	cfg := styles.LightStyleConfig
	if dark {
		cfg = styles.DarkStyleConfig
	}
	hex := func(c lipgloss.AdaptiveColor) *string {
		s := extractHex(c, dark)
		return &s
	}
	var zero uint

	cfg.Document.Color = hex(th.Text)
	cfg.Document.Margin = &zero
	cfg.Document.BlockPrefix = ""
	cfg.Document.BlockSuffix = ""

	cfg.Heading.Color = hex(th.Primary)
	cfg.H1.Color = hex(th.Primary)
	cfg.H1.BackgroundColor = nil
	cfg.Link.Color = hex(th.Info)
	cfg.LinkText.Color = hex(th.Secondary)
	cfg.Code.Color = hex(th.Code)
	cfg.Code.BackgroundColor = nil
	cfg.BlockQuote.Color = hex(th.Subtext)
	cfg.Emph.Color = hex(th.Subtext)
	cfg.Strong.Color = hex(th.Text)
	cfg.HorizontalRule.Color = hex(th.Border)
	cfg.Item.Color = hex(th.Text)
	cfg.Enumeration.Color = hex(th.Accent)
	return cfg
}
