package cliapp

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mattn/go-isatty"

	"github.com/oxhq/identedit/internal/apperr"
)

// emit writes exactly one JSON object to out: payload on success, or
// err's envelope if err is non-nil. This is the single stdout-writing
// seam every verb funnels through (spec.md 6: "exactly one JSON object
// to stdout").
func emit(out io.Writer, payload any, err error) error {
	if err != nil {
		ae, ok := apperr.As(err)
		if !ok {
			ae = apperr.New(apperr.IOError, err.Error())
		}
		fmt.Fprintln(out, ae.JSON())
		return ae
	}
	b, merr := json.Marshal(payload)
	if merr != nil {
		ae := apperr.Wrap(apperr.IOError, "encoding output", merr)
		fmt.Fprintln(out, ae.JSON())
		return ae
	}
	fmt.Fprintln(out, string(b))
	return nil
}

// colorEnabled reports whether fd supports ANSI color, gating unifiedDiff's
// coloring the way a terminal-aware CLI should: colorize only when stdout
// is actually a terminal, never when piped. No verb calls unifiedDiff.
func colorEnabled(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
