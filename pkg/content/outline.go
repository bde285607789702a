package content

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// wordsPerMinute for the reading-time estimate. Code reads slower.
const (
	wordsPerMinute     = 220
	codeLinesPerMinute = 40
)

// Section is one entry in a chapter outline.
type Section struct {
	Title string
	Slug  string
	Block int
}

// Outline lists the chapter's headings with GitHub-style anchors.
func Outline(t Tree) []Section {
	var out []Section
	seen := make(map[string]int)
	for i, b := range t {
		h, ok := b.(Heading)
		if !ok {
			continue
		}
		slug := Slug(h.Text)
		if n := seen[slug]; n > 0 {
			seen[slug] = n + 1
			slug = slug + "-" + strconv.Itoa(n)
		} else {
			seen[slug] = 1
		}
		out = append(out, Section{Title: h.Text, Slug: slug, Block: i})
	}
	return out
}

// Slug lowercases s, drops punctuation and joins words with hyphens.
func Slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('-')
		}
	}
	return b.String()
}

// Stats summarizes a chapter for the header line.
type Stats struct {
	Words     int
	CodeLines int
	Demos     int
	Quizzes   int
}

// Minutes is the estimated reading time, at least one minute.
func (s Stats) Minutes() int {
	m := float64(s.Words)/wordsPerMinute + float64(s.CodeLines)/codeLinesPerMinute
	return int(math.Max(1, math.Round(m)))
}

// Collect walks the tree. Prose and callout bodies are parsed as Markdown so
// link targets, emphasis markers and fences do not count as words.
func Collect(t Tree) Stats {
	var st Stats
	md := goldmark.New()
	for _, b := range t {
		switch v := b.(type) {
		case Heading:
			st.Words += len(strings.Fields(v.Text))
		case Prose:
			st.Words += markdownWords(md, v.Markdown)
		case Callout:
			st.Words += markdownWords(md, v.Body)
		case Code:
			st.CodeLines += strings.Count(strings.TrimRight(v.Source, "\n"), "\n") + 1
		case Demo:
			st.Demos++
		case Quiz:
			st.Quizzes++
			st.Words += len(strings.Fields(v.Question))
			for _, o := range v.Options {
				st.Words += len(strings.Fields(o))
			}
		}
	}
	return st
}

func markdownWords(md goldmark.Markdown, src string) int {
	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))
	words := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			words += len(bytes.Fields(v.Segment.Value(source)))
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := v.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				words += len(bytes.Fields(seg.Value(source)))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return words
}
