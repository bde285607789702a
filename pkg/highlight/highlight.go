// Package highlight renders code excerpts with chroma off the UI goroutine.
//
// A Pool bounds how many excerpts are tokenized at once. Each mounted chapter
// gets its own Session, which hands out generation-stamped requests and
// accepts only results that are still current: a result from a previous
// mount, or one superseded by a newer request for the same excerpt, is
// dropped and the unstyled source stays on screen.
package highlight

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const (
	DefaultStyleDark  = "dracula"
	DefaultStyleLight = "github"
)

// Error reports a failed highlight for one excerpt.
type Error struct {
	Key   string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("highlight %s: %v", e.Key, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// StyleExists reports whether chroma knows the named style.
func StyleExists(name string) bool {
	_, ok := styles.Registry[strings.ToLower(name)]
	return ok
}

// Render highlights source for a 256-color terminal. Unknown languages are
// guessed from the source and fall back to plain text. Tokenizing stops early
// when ctx is cancelled.
func Render(ctx context.Context, source, language, style string) (string, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("tokenise: %w", err)
	}
	guarded := func() chroma.Token {
		if ctx.Err() != nil {
			return chroma.EOF
		}
		return it()
	}

	var b strings.Builder
	if err := formatters.Get("terminal256").Format(&b, styles.Get(style), guarded); err != nil {
		return "", fmt.Errorf("format: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// renderFn is Render, replaceable in tests.
var renderFn = Render

// safeRender runs Render and turns a panic in a lexer or formatter into an
// *Error.
func safeRender(ctx context.Context, key, source, language, style string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Key: key, Cause: fmt.Errorf("panic: %v\n%s", r, debug.Stack())}
		}
	}()
	out, err = renderFn(ctx, source, language, style)
	if err != nil {
		return "", &Error{Key: key, Cause: err}
	}
	return out, nil
}
