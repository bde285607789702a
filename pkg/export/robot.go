package export

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/underhood/pkg/catalog"
	"github.com/vanderheijden86/underhood/pkg/content"
)

// RobotChapter is one chapter in the machine-readable index.
type RobotChapter struct {
	Position  int             `json:"position"`
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Icon      string          `json:"icon"`
	Minutes   int             `json:"minutes"`
	Words     int             `json:"words"`
	CodeLines int             `json:"code_lines"`
	Demos     []string        `json:"demos"`
	Quizzes   int             `json:"quizzes"`
	Sections  []RobotSection  `json:"sections"`
	Sources   []RobotCodeFile `json:"sources,omitempty"`
}

// RobotSection is a heading inside a chapter.
type RobotSection struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// RobotCodeFile is a nanochat excerpt a chapter quotes.
type RobotCodeFile struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line,omitempty"`
	Lines     int    `json:"lines"`
}

// RobotIndex is the --robot-chapters document.
type RobotIndex struct {
	GeneratedAt string         `json:"generated_at"`
	Version     string         `json:"version"`
	Total       int            `json:"total"`
	Chapters    []RobotChapter `json:"chapters"`
	Links       []catalog.Link `json:"links"`
}

// BuildRobotIndex walks every chapter once and summarizes it.
func BuildRobotIndex(cat *catalog.Catalog, links []catalog.Link, version string) RobotIndex {
	idx := RobotIndex{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Version:     version,
		Total:       cat.Len(),
		Chapters:    make([]RobotChapter, 0, cat.Len()),
		Links:       links,
	}
	if idx.Links == nil {
		idx.Links = []catalog.Link{}
	}
	for i, ch := range cat.All() {
		tree := ch.Render()
		stats := content.Collect(tree)
		rc := RobotChapter{
			Position:  i + 1,
			ID:        ch.ID,
			Title:     ch.Title,
			Icon:      ch.Icon,
			Minutes:   stats.Minutes(),
			Words:     stats.Words,
			CodeLines: stats.CodeLines,
			Demos:     []string{},
			Quizzes:   stats.Quizzes,
			Sections:  []RobotSection{},
		}
		for _, s := range content.Outline(tree) {
			rc.Sections = append(rc.Sections, RobotSection{Title: s.Title, Slug: s.Slug})
		}
		for _, b := range tree {
			switch b := b.(type) {
			case content.Demo:
				rc.Demos = append(rc.Demos, b.Title)
			case content.Code:
				rc.Sources = append(rc.Sources, RobotCodeFile{
					File:      b.Filename,
					StartLine: b.StartLine,
					Lines:     countLines(b.Source),
				})
			}
		}
		idx.Chapters = append(idx.Chapters, rc)
	}
	return idx
}

// RobotChapters encodes the index as indented JSON.
func RobotChapters(cat *catalog.Catalog, links []catalog.Link, version string) ([]byte, error) {
	data, err := json.MarshalIndent(BuildRobotIndex(cat, links, version), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding chapter index: %w", err)
	}
	return data, nil
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
