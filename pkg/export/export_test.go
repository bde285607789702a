package export

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tidwall/gjson"

	"github.com/vanderheijden86/underhood/pkg/catalog"
	"github.com/vanderheijden86/underhood/pkg/chapters"
	"github.com/vanderheijden86/underhood/pkg/content"
	"github.com/vanderheijden86/underhood/pkg/theme"
	"github.com/vanderheijden86/underhood/pkg/widget"
)

type staticDemo struct{}

func (staticDemo) Update(tea.KeyMsg) bool       { return false }
func (staticDemo) View(theme.Theme, int) string { return "snapshot   \nsecond line" }
func (staticDemo) Keys() []key.Binding          { return nil }

func smallCatalog() *catalog.Catalog {
	return catalog.MustNew(
		catalog.Chapter{ID: "one", Title: "First Steps", Icon: "1", Render: func() content.Tree {
			return content.Tree{
				content.Heading{Text: "First Steps"},
				content.Prose{Markdown: "Hello **world**."},
				content.Heading{Text: "Details"},
				content.Callout{Kind: content.KeyConcept, Body: "Line one\n\nLine two"},
				content.Diagram{Label: "Flow", Rows: []string{"a → b"}},
				content.Code{Filename: "gpt.py", StartLine: 12, Source: "def f():\n    return 1"},
				content.Demo{Title: "Static", New: func() widget.Interactive { return staticDemo{} }},
				content.Quiz{Question: "Which?", Options: []string{"x", "y"}, Correct: 1, Explanation: "Because y."},
			}
		}},
		catalog.Chapter{ID: "two", Title: "Second", Icon: "2", Render: func() content.Tree {
			return content.Tree{
				content.Heading{Text: "Second"},
				content.Code{Filename: "run.sh", Language: "bash", Source: "echo ```"},
			}
		}},
	)
}

func TestGenerateMarkdown(t *testing.T) {
	links := []catalog.Link{{Label: "Repo", URL: "https://example.com/repo"}}
	md, err := GenerateMarkdown(smallCatalog(), "Guide", links)
	if err != nil {
		t.Fatalf("GenerateMarkdown failed: %v", err)
	}

	want := []string{
		"# Guide\n",
		"- Repo: <https://example.com/repo>",
		"1. [1 First Steps](#chapter-1-first-steps)",
		"## Chapter 1: First Steps",
		"## Chapter 2: Second",
		"### Details",
		"> **★ Key Concept**",
		"> Line one\n>\n> Line two",
		"**Flow**\n\n```text\na → b\n```",
		"`gpt.py` (line 12)\n\n```python\ndef f():\n    return 1\n```",
		"**▶ Interactive demo: Static**",
		"```text\nsnapshot\nsecond line\n```",
		"**Quiz:** Which?",
		"- A. x\n- B. y",
		"**B. y**\n\nBecause y.",
		"`run.sh`\n\n````bash\necho ```\n````",
	}
	for _, w := range want {
		if !strings.Contains(md, w) {
			t.Errorf("Expected markdown to contain %q", w)
		}
	}

	// The chapter's own title heading is folded into the chapter header.
	if strings.Contains(md, "### First Steps") {
		t.Error("Expected the leading title heading to be skipped")
	}
}

func TestGenerateMarkdownNilCatalog(t *testing.T) {
	if _, err := GenerateMarkdown(nil, "x", nil); err == nil {
		t.Error("Expected an error for a nil catalog")
	}
}

func TestSaveMarkdownToFileWholeGuide(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guide.md")
	if err := SaveMarkdownToFile(chapters.Catalog(), chapters.Links, path); err != nil {
		t.Fatalf("SaveMarkdownToFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	md := string(data)
	for i, ch := range chapters.Catalog().All() {
		if !strings.Contains(md, fmt.Sprintf("## Chapter %d: %s", i+1, ch.Title)) {
			t.Errorf("Expected a section for %s", ch.ID)
		}
	}
	if strings.Contains(md, "\x1b[") {
		t.Error("Expected no terminal escape sequences in the export")
	}
}

func TestSaveMarkdownToFileBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "guide.md")
	if err := SaveMarkdownToFile(smallCatalog(), nil, path); err == nil {
		t.Error("Expected an error writing into a missing directory")
	}
}

func TestRobotChapters(t *testing.T) {
	links := []catalog.Link{{Label: "Repo", URL: "https://example.com/repo"}}
	data, err := RobotChapters(smallCatalog(), links, "v1.0.0")
	if err != nil {
		t.Fatalf("RobotChapters failed: %v", err)
	}
	doc := string(data)
	if !gjson.Valid(doc) {
		t.Fatal("Expected valid JSON")
	}

	tests := []struct {
		path string
		want string
	}{
		{"version", "v1.0.0"},
		{"total", "2"},
		{"chapters.0.id", "one"},
		{"chapters.0.position", "1"},
		{"chapters.0.demos.0", "Static"},
		{"chapters.0.quizzes", "1"},
		{"chapters.0.sections.1.slug", "details"},
		{"chapters.0.sources.0.file", "gpt.py"},
		{"chapters.0.sources.0.start_line", "12"},
		{"chapters.0.sources.0.lines", "2"},
		{"chapters.1.id", "two"},
		{"chapters.1.demos.#", "0"},
		{"links.0.url", "https://example.com/repo"},
	}
	for _, tt := range tests {
		if got := gjson.Get(doc, tt.path).String(); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.path, tt.want, got)
		}
	}
	if gjson.Get(doc, "chapters.1.sources.0.start_line").Exists() {
		t.Error("Expected start_line omitted for unnumbered excerpts")
	}
}

func TestRobotChaptersWholeGuide(t *testing.T) {
	data, err := RobotChapters(chapters.Catalog(), chapters.Links, "dev")
	if err != nil {
		t.Fatalf("RobotChapters failed: %v", err)
	}
	ids := gjson.GetBytes(data, "chapters.#.id").Array()
	want := chapters.Catalog().IDs()
	if len(ids) != len(want) {
		t.Fatalf("Expected %d chapters, got %d", len(want), len(ids))
	}
	for i, id := range ids {
		if id.String() != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], id.String())
		}
	}
	for i, m := range gjson.GetBytes(data, "chapters.#.minutes").Array() {
		if m.Int() < 1 {
			t.Errorf("Chapter %d: expected at least one minute, got %d", i, m.Int())
		}
	}
}

func TestChartBounds(t *testing.T) {
	tests := []struct {
		name   string
		chart  Chart
		lo, hi float64
	}{
		{"fixed top", Chart{Values: []float64{1, 2, 3}, YMax: 5}, 0, 5},
		{"data top", Chart{Values: []float64{1, 2, 3}}, 0, 3},
		{"negative", Chart{Values: []float64{-2, 1}}, -2, 1},
		{"flat zero", Chart{Values: []float64{0, 0}}, 0, 1},
		{"empty", Chart{}, 0, 1},
	}
	for _, tt := range tests {
		lo, hi := tt.chart.bounds()
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("%s: expected [%v,%v], got [%v,%v]", tt.name, tt.lo, tt.hi, lo, hi)
		}
	}
}

func TestChartPointsStayInPlot(t *testing.T) {
	for _, c := range TrainingCharts() {
		xs, ys := c.points()
		if len(xs) != len(c.Values) {
			t.Fatalf("%s: expected %d points, got %d", c.Name, len(c.Values), len(xs))
		}
		for i := range xs {
			if xs[i] < chartMargin || xs[i] > chartWidth-chartMargin {
				t.Errorf("%s: x[%d]=%v outside the plot", c.Name, i, xs[i])
			}
			if ys[i] < chartMargin || ys[i] > chartHeight-chartMargin {
				t.Errorf("%s: y[%d]=%v outside the plot", c.Name, i, ys[i])
			}
		}
	}
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	c := TrainingCharts()[0]
	if err := WriteSVG(&buf, c); err != nil {
		t.Fatalf("WriteSVG failed: %v", err)
	}
	out := buf.String()
	for _, w := range []string{"<svg", "<polyline", c.Title, "</svg>"} {
		if !strings.Contains(out, w) {
			t.Errorf("Expected SVG to contain %q", w)
		}
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, TrainingCharts()[1]); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Expected a decodable PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != chartWidth || b.Dy() != chartHeight {
		t.Errorf("Expected %dx%d, got %dx%d", chartWidth, chartHeight, b.Dx(), b.Dy())
	}
}

func TestWriteEmptyChart(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, Chart{Name: "empty"}); err == nil {
		t.Error("Expected an error for an empty SVG chart")
	}
	if err := WritePNG(&buf, Chart{Name: "empty"}); err == nil {
		t.Error("Expected an error for an empty PNG chart")
	}
}

func TestExportCharts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	paths, err := ExportCharts(dir)
	if err != nil {
		t.Fatalf("ExportCharts failed: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("Expected 4 files, got %d", len(paths))
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			t.Errorf("Expected %s to exist: %v", p, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("Expected %s to be non-empty", p)
		}
	}
}
