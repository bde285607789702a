package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"

	"github.com/vanderheijden86/underhood/pkg/catalog"
	"github.com/vanderheijden86/underhood/pkg/content"
	"github.com/vanderheijden86/underhood/pkg/widget"
)

// askFunc asks one question and returns the chosen option index.
type askFunc func(q content.Quiz, n, total int) (int, error)

// askHuh asks with a huh select form.
func askHuh(q content.Quiz, n, total int) (int, error) {
	choice := -1
	opts := make([]huh.Option[int], len(q.Options))
	for i, o := range q.Options {
		opts[i] = huh.NewOption(widget.Letter(i)+". "+o, i)
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(fmt.Sprintf("Question %d of %d", n, total)).
				Description(q.Question).
				Options(opts...).
				Value(&choice),
		),
	).WithTheme(huh.ThemeCharm())
	if err := form.Run(); err != nil {
		return -1, err
	}
	return choice, nil
}

// runQuiz asks every quiz of chapter id once, reveals the answer after each
// pick, and returns the score.
func runQuiz(w io.Writer, cat *catalog.Catalog, id string, ask askFunc) (correct, total int, err error) {
	ch, ok := cat.ByID(id)
	if !ok {
		return 0, 0, fmt.Errorf("unknown chapter %q (see --list-chapters)", id)
	}
	quizzes := ch.Render().Quizzes()
	if len(quizzes) == 0 {
		return 0, 0, fmt.Errorf("chapter %q has no quizzes", id)
	}

	good := color.New(color.FgGreen, color.Bold).SprintFunc()
	bad := color.New(color.FgRed, color.Bold).SprintFunc()

	fmt.Fprintf(w, "%s %s\n\n", ch.Icon, ch.Title)
	for i, qb := range quizzes {
		choice, err := ask(qb, i+1, len(quizzes))
		if errors.Is(err, huh.ErrUserAborted) {
			return correct, i, nil
		}
		if err != nil {
			return correct, i, fmt.Errorf("question %d: %w", i+1, err)
		}

		state := qb.NewState()
		state.Select(choice)
		fmt.Fprintf(w, "%d. %s\n", i+1, qb.Question)
		switch state.Feedback() {
		case widget.Correct:
			correct++
			fmt.Fprintln(w, good("   Correct!"))
		default:
			fmt.Fprintln(w, bad(fmt.Sprintf("   Not quite. The answer is %s. %s", widget.Letter(qb.Correct), qb.Options[qb.Correct])))
		}
		fmt.Fprintf(w, "   %s\n\n", qb.Explanation)
	}
	return correct, len(quizzes), nil
}

func printScore(w io.Writer, correct, total int) {
	if total == 0 {
		return
	}
	c := color.New(color.FgYellow, color.Bold)
	if correct == total {
		c = color.New(color.FgGreen, color.Bold)
	}
	c.Fprintf(w, "Score: %d/%d\n", correct, total)
}
