package chapters

import (
	"strings"

	"github.com/vanderheijden86/underhood/pkg/content"
	"github.com/vanderheijden86/underhood/pkg/widget"
)

func h(text string) content.Block { return content.Heading{Text: text} }

// p joins sentences into one paragraph.
func p(sentences ...string) content.Block {
	return content.Prose{Markdown: strings.Join(sentences, " ")}
}

func note(kind content.CalloutKind, sentences ...string) content.Block {
	return content.Callout{Kind: kind, Body: strings.Join(sentences, " ")}
}

func diagram(label string, rows ...string) content.Block {
	return content.Diagram{Label: label, Rows: rows}
}

func code(filename string, startLine int, source string) content.Block {
	return content.Code{Filename: filename, StartLine: startLine, Source: strings.Trim(source, "\n")}
}

func shell(filename, source string) content.Block {
	return content.Code{Filename: filename, Language: "bash", Source: strings.Trim(source, "\n")}
}

func demo(title string, build func() widget.Interactive) content.Block {
	return content.Demo{Title: title, New: build}
}
