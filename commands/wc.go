package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/brettbedarf/vfsh/shell"
)

// Wc counts lines, words and characters
type Wc struct {
	fileArgs
}

func (*Wc) Name() string {
	return "wc"
}

func (*Wc) Syntax() string {
	return "[-l|--lines] [-w|--words] [-c|--chars] [file...]"
}

func (*Wc) Help() string {
	return "print line, word and character counts of files or stdin"
}

func (*Wc) Options() []shell.OptionSpec {
	return []shell.OptionSpec{
		{Long: "lines", Short: 'l'},
		{Long: "words", Short: 'w'},
		{Long: "chars", Short: 'c'},
	}
}

type counts struct {
	lines, words, chars int
}

func (c *counts) add(o counts) {
	c.lines += o.lines
	c.words += o.words
	c.chars += o.chars
}

func countLines(ctx context.Context, r io.Reader) (counts, error) {
	var c counts
	err := eachLine(ctx, r, func(line string) error {
		if strings.HasSuffix(line, "\n") {
			c.lines++
		}
		c.words += len(strings.Fields(line))
		c.chars += utf8.RuneCountInString(line)
		return nil
	})
	return c, err
}

func (w *Wc) Execute(ctx context.Context, env *shell.Env, args []string, opts shell.Options) error {
	show := []bool{opts.Has("lines"), opts.Has("words"), opts.Has("chars")}
	if !show[0] && !show[1] && !show[2] {
		show = []bool{true, true, true}
	}
	emit := func(c counts, label string) error {
		var b strings.Builder
		for i, v := range []int{c.lines, c.words, c.chars} {
			if show[i] {
				fmt.Fprintf(&b, "%7d ", v)
			}
		}
		_, err := io.WriteString(env.Stdout, strings.TrimRight(b.String()+label, " ")+"\n")
		return err
	}

	if len(args) == 0 {
		c, err := countLines(ctx, env.Stdin)
		if err != nil {
			return err
		}
		return emit(c, "")
	}

	nodes, ok, err := resolveAll(ctx, env, w.Name(), args)
	if err != nil {
		return err
	}
	var total counts
	for _, n := range nodes {
		if !n.CanRead() {
			fmt.Fprintf(env.Stderr, "wc: %s: is a directory\n", n.FullName())
			ok = false
			continue
		}
		rc, err := n.Open(ctx)
		if err != nil {
			return err
		}
		c, err := countLines(ctx, rc)
		rc.Close()
		if err != nil {
			return err
		}
		total.add(c)
		if err := emit(c, n.FullName()); err != nil {
			return err
		}
	}
	if len(nodes) > 1 {
		if err := emit(total, "total"); err != nil {
			return err
		}
	}
	if !ok {
		return shell.Exit(shell.ExitUsage)
	}
	return nil
}
