// Package export writes static renditions of the guide: a single Markdown
// document, PNG and SVG charts of the training demos, and a machine-readable
// chapter index.
package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vanderheijden86/underhood/pkg/catalog"
	"github.com/vanderheijden86/underhood/pkg/content"
	"github.com/vanderheijden86/underhood/pkg/theme"
	"github.com/vanderheijden86/underhood/pkg/widget"
)

// snapshotWidth is the width demo snapshots are drawn at.
const snapshotWidth = 76

// GenerateMarkdown renders every chapter of cat into one Markdown document.
// Demos appear as a snapshot of their initial state; quiz answers are folded
// into <details> blocks.
func GenerateMarkdown(cat *catalog.Catalog, title string, links []catalog.Link) (string, error) {
	if cat == nil {
		return "", fmt.Errorf("generating markdown: nil catalog")
	}
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format(time.RFC1123)))
	for _, l := range links {
		sb.WriteString(fmt.Sprintf("- %s: <%s>\n", l.Label, l.URL))
	}
	if len(links) > 0 {
		sb.WriteString("\n")
	}

	type rendered struct {
		ch    catalog.Chapter
		tree  content.Tree
		stats content.Stats
	}
	chapters := make([]rendered, 0, cat.Len())
	for _, ch := range cat.All() {
		tree := ch.Render()
		chapters = append(chapters, rendered{ch: ch, tree: tree, stats: content.Collect(tree)})
	}

	sb.WriteString("## Table of Contents\n\n")
	for i, r := range chapters {
		sb.WriteString(fmt.Sprintf("%d. [%s %s](#%s) (~%d min)\n",
			i+1, r.ch.Icon, r.ch.Title, chapterAnchor(i, r.ch), r.stats.Minutes()))
	}
	sb.WriteString("\n---\n\n")

	for i, r := range chapters {
		sb.WriteString(fmt.Sprintf("## Chapter %d: %s\n\n", i+1, r.ch.Title))
		sb.WriteString(fmt.Sprintf("_~%d min read · %d demos · %d quizzes_\n\n", r.stats.Minutes(), r.stats.Demos, r.stats.Quizzes))
		for j, b := range r.tree {
			// The tree's own title duplicates the chapter heading above.
			if h, ok := b.(content.Heading); ok && j == 0 && h.Text == r.ch.Title {
				continue
			}
			md, err := blockMarkdown(b)
			if err != nil {
				return "", fmt.Errorf("chapter %s block %d: %w", r.ch.ID, j, err)
			}
			sb.WriteString(md)
			sb.WriteString("\n\n")
		}
		sb.WriteString("---\n\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n", nil
}

// chapterAnchor is the GitHub-style anchor of the "## Chapter i: title"
// heading.
func chapterAnchor(i int, ch catalog.Chapter) string {
	return content.Slug(fmt.Sprintf("Chapter %d: %s", i+1, ch.Title))
}

func blockMarkdown(b content.Block) (string, error) {
	switch b := b.(type) {
	case content.Heading:
		return "### " + b.Text, nil
	case content.Prose:
		return strings.TrimSpace(b.Markdown), nil
	case content.Callout:
		return calloutMarkdown(b), nil
	case content.Diagram:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("**%s**\n\n```text\n", b.Label))
		sb.WriteString(strings.Join(b.Rows, "\n"))
		sb.WriteString("\n```")
		return sb.String(), nil
	case content.Code:
		return codeMarkdown(b), nil
	case content.Demo:
		return demoMarkdown(b), nil
	case content.Quiz:
		return quizMarkdown(b), nil
	}
	return "", fmt.Errorf("unsupported block %T", b)
}

func calloutMarkdown(c content.Callout) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("> **%s %s**\n>\n", c.Kind.Glyph(), c.Caption()))
	for _, line := range strings.Split(strings.TrimSpace(c.Body), "\n") {
		if line == "" {
			sb.WriteString(">\n")
			continue
		}
		sb.WriteString("> " + line + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func codeMarkdown(c content.Code) string {
	var sb strings.Builder
	if c.StartLine > 0 {
		sb.WriteString(fmt.Sprintf("`%s` (line %d)\n\n", c.Filename, c.StartLine))
	} else {
		sb.WriteString(fmt.Sprintf("`%s`\n\n", c.Filename))
	}
	fence := "```"
	// A longer fence keeps excerpts that contain ``` intact.
	for strings.Contains(c.Source, fence) {
		fence += "`"
	}
	sb.WriteString(fence + c.Lang() + "\n")
	sb.WriteString(c.Source)
	sb.WriteString("\n" + fence)
	return sb.String()
}

func demoMarkdown(d content.Demo) string {
	view := d.New().View(theme.Plain(), snapshotWidth)
	lines := strings.Split(view, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**▶ Interactive demo: %s**\n\n", d.Title))
	sb.WriteString("```text\n")
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n```\n\n")
	sb.WriteString("_Run `underhood` to interact with this demo._")
	return sb.String()
}

func quizMarkdown(q content.Quiz) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Quiz:** %s\n\n", q.Question))
	for i, opt := range q.Options {
		sb.WriteString(fmt.Sprintf("- %s. %s\n", widget.Letter(i), opt))
	}
	sb.WriteString("\n<details><summary>Answer</summary>\n\n")
	if q.Correct >= 0 && q.Correct < len(q.Options) {
		sb.WriteString(fmt.Sprintf("**%s. %s**\n\n", widget.Letter(q.Correct), q.Options[q.Correct]))
	}
	sb.WriteString(strings.TrimSpace(q.Explanation))
	sb.WriteString("\n\n</details>")
	return sb.String()
}

// SaveMarkdownToFile writes the generated guide to filename.
func SaveMarkdownToFile(cat *catalog.Catalog, links []catalog.Link, filename string) error {
	md, err := GenerateMarkdown(cat, "LLM Under the Hood", links)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, []byte(md), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return nil
}
