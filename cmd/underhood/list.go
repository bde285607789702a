package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/vanderheijden86/underhood/pkg/catalog"
	"github.com/vanderheijden86/underhood/pkg/content"
)

// terminalWidth is stdout's width, or 80 when stdout is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 80
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// printChapters writes the chapter table: position, id, title and reading
// time, truncating titles to fit width.
func printChapters(w io.Writer, cat *catalog.Catalog, width int) {
	header := color.New(color.FgCyan, color.Bold).SprintFunc()
	id := color.New(color.FgYellow).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	idWidth := 0
	for _, ch := range cat.All() {
		idWidth = max(idWidth, runewidth.StringWidth(ch.ID))
	}
	// "NN. " + id + "  " + icon + " " + title + "  ~NN min"
	titleWidth := max(10, width-4-idWidth-2-3-10)

	fmt.Fprintln(w, header("LLM Under the Hood"), dim(fmt.Sprintf("· %d chapters", cat.Len())))
	fmt.Fprintln(w)
	for i, ch := range cat.All() {
		stats := content.Collect(ch.Render())
		title := runewidth.Truncate(ch.Title, titleWidth, "…")
		fmt.Fprintf(w, "%2d. %s  %s %s  %s\n",
			i+1,
			id(runewidth.FillRight(ch.ID, idWidth)),
			ch.Icon,
			runewidth.FillRight(title, titleWidth),
			dim(fmt.Sprintf("~%d min", stats.Minutes())),
		)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, dim("Open one with: underhood --chapter "+strings.TrimSpace(cat.First().ID)))
}
