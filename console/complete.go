package console

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/chzyer/readline"

	"github.com/brettbedarf/vfsh/shell"
)

// completer adapts shell completion to the line editor
type completer struct {
	ctx context.Context
	sh  *shell.Shell
}

var _ readline.AutoCompleter = (*completer)(nil)

// Do completes the text left of the cursor. It returns the suffixes that
// extend the typed word and the rune length of that word.
func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	cands, partial := c.sh.Complete(c.ctx, string(line[:pos]))
	var out [][]rune
	for _, cand := range cands {
		suffix, ok := strings.CutPrefix(cand, partial)
		if !ok {
			continue
		}
		out = append(out, []rune(suffix))
	}
	if len(out) == 1 && !strings.HasSuffix(cands[0], "/") {
		out[0] = append(out[0], ' ')
	}
	return out, utf8.RuneCountInString(partial)
}
