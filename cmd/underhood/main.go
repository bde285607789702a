package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/underhood/pkg/chapters"
	"github.com/vanderheijden86/underhood/pkg/config"
	"github.com/vanderheijden86/underhood/pkg/export"
	"github.com/vanderheijden86/underhood/pkg/highlight"
	"github.com/vanderheijden86/underhood/pkg/logging"
	"github.com/vanderheijden86/underhood/pkg/theme"
	"github.com/vanderheijden86/underhood/pkg/ui"
	"github.com/vanderheijden86/underhood/pkg/version"
)

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	configPath := flag.String("config", "", "Config file (default: $UNDERHOOD_CONFIG, .underhood.yaml, or the user config dir)")
	chapterID := flag.String("chapter", "", "Open this chapter first (see --list-chapters)")
	themeFlag := flag.String("theme", "", "Appearance: auto, dark or light (overrides the config)")
	listChapters := flag.Bool("list-chapters", false, "List chapters and exit")
	robotChapters := flag.Bool("robot-chapters", false, "Output the chapter index as JSON for AI agents")
	exportFile := flag.String("export-md", "", "Export the whole guide to a Markdown file (e.g., guide.md)")
	exportCharts := flag.String("export-charts", "", "Write the training charts as SVG and PNG into this directory")
	quizID := flag.String("quiz", "", "Take one chapter's quizzes in the terminal")
	flag.Parse()

	if *help {
		fmt.Println("Usage: underhood [options]")
		fmt.Println("\nAn interactive terminal guide to how LLMs work, based on nanochat.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("underhood %s\n", version.Version)
		os.Exit(0)
	}

	cat := chapters.Catalog()

	if *robotChapters {
		data, err := export.RobotChapters(cat, chapters.Links, version.Version)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding chapters: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		os.Exit(0)
	}

	if *listChapters {
		printChapters(os.Stdout, cat, terminalWidth())
		os.Exit(0)
	}

	if *exportFile != "" {
		fmt.Printf("Exporting to %s...\n", *exportFile)
		if err := export.SaveMarkdownToFile(cat, chapters.Links, *exportFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Done!")
		os.Exit(0)
	}

	if *exportCharts != "" {
		paths, err := export.ExportCharts(*exportCharts)
		for _, p := range paths {
			fmt.Printf("Wrote %s\n", p)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting charts: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if *quizID != "" {
		correct, total, err := runQuiz(os.Stdout, cat, *quizID, askHuh)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printScore(os.Stdout, correct, total)
		os.Exit(0)
	}

	// Configuration
	path, found := config.Discover(*configPath)
	if *configPath != "" && !found {
		fmt.Fprintf(os.Stderr, "Error: config file %s not found\n", *configPath)
		os.Exit(1)
	}
	if !found {
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid config: %v\n", err)
		os.Exit(1)
	}

	// Flags override the file for this run only; they are never saved back.
	var override theme.Mode
	if *themeFlag != "" {
		override, err = theme.ParseMode(*themeFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	start := cfg.StartChapter
	if *chapterID != "" {
		if _, ok := cat.ByID(*chapterID); !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown chapter %q (see --list-chapters)\n", *chapterID)
			os.Exit(1)
		}
		start = *chapterID
	}

	log, err := logging.New(logging.Options{
		File:        cfg.LogFile,
		Level:       cfg.LogLevel,
		Development: os.Getenv("UNDERHOOD_DEBUG") != "",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var done cleanups
	defer done.run()
	done.add(log.Sync)
	log.Info("starting", "version", version.Version, "config", path, "theme", cfg.Theme, "override", string(override), "start", start)

	pool := highlight.NewPool(highlight.PoolConfig{
		Workers:    cfg.Highlight.Workers,
		StyleDark:  cfg.Highlight.StyleDark,
		StyleLight: cfg.Highlight.StyleLight,
		Logger:     log.With("component", "highlight"),
	})
	done.add(pool.Stop)

	th := theme.Default(lipgloss.DefaultRenderer()).WithMode(cfg.Mode())
	m := ui.NewModel(ui.Options{
		Catalog:       cat,
		Start:         start,
		Theme:         th,
		Pool:          pool,
		Logger:        log,
		Config:        cfg,
		ConfigPath:    path,
		Links:         chapters.Links,
		ThemeOverride: override,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Live config reload
	if path != "" {
		w, err := config.NewWatcher(path, func(c *config.Config, err error) {
			p.Send(ui.ConfigReloadedMsg{Config: c, Err: err})
		})
		if err != nil {
			log.Warn("config watcher unavailable", "error", err)
		} else if err := w.Start(); err != nil {
			log.Warn("config watcher unavailable", "error", err)
		} else {
			done.add(w.Stop)
		}
	}

	if _, err := p.Run(); err != nil {
		log.Error("program failed", "error", err)
		done.run()
		fmt.Fprintf(os.Stderr, "Error running underhood: %v\n", err)
		os.Exit(1)
	}
}
