package commands

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/brettbedarf/vfsh/filesystem"
	"github.com/brettbedarf/vfsh/shell"
)

// Grep prints lines matching a glob or a /regular expression/.
// Finding nothing is not a failure.
type Grep struct{}

func (*Grep) Name() string {
	return "grep"
}

func (*Grep) Syntax() string {
	return "[-i|--ignore-case] [-v|--invert] [-c|--count] <glob | /regexp/> [file...]"
}

func (*Grep) Help() string {
	return "print lines matching a glob pattern or regular expression, read from files or stdin"
}

func (*Grep) Options() []shell.OptionSpec {
	return []shell.OptionSpec{
		{Long: "ignore-case", Short: 'i'},
		{Long: "invert", Short: 'v'},
		{Long: "count", Short: 'c'},
	}
}

// compilePattern accepts "/expr/" as a regular expression and anything
// else as an unanchored glob
func compilePattern(pattern string, ignoreCase bool) (*regexp.Regexp, error) {
	expr := filesystem.GlobToRegexp(pattern, false)
	if len(pattern) >= 2 && strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/") {
		expr = pattern[1 : len(pattern)-1]
	}
	if ignoreCase {
		expr = "(?i)" + expr
	}
	return regexp.Compile(expr)
}

func (g *Grep) Execute(ctx context.Context, env *shell.Env, args []string, opts shell.Options) error {
	if len(args) == 0 {
		return shell.Failf(shell.ExitUsage, "missing pattern")
	}
	re, err := compilePattern(args[0], opts.Has("ignore-case"))
	if err != nil {
		return shell.Failf(shell.ExitUsage, "invalid pattern: %v", err)
	}
	m := &matcher{re: re, invert: opts.Has("invert"), count: opts.Has("count"), out: env.Stdout}

	if len(args) == 1 {
		return m.scan(ctx, env.Stdin, "")
	}

	nodes, ok, err := resolveAll(ctx, env, g.Name(), args[1:])
	if err != nil {
		return err
	}
	for _, n := range nodes {
		label := ""
		if len(nodes) > 1 {
			label = n.FullName()
		}
		if !n.CanRead() {
			fmt.Fprintf(env.Stderr, "grep: %s: %v\n", n.FullName(), filesystem.ErrIsDirectory)
			ok = false
			continue
		}
		rc, err := n.Open(ctx)
		if err != nil {
			return err
		}
		err = m.scan(ctx, rc, label)
		rc.Close()
		if err != nil {
			return err
		}
	}
	if !ok {
		return shell.Exit(shell.ExitUsage)
	}
	return nil
}

type matcher struct {
	re     *regexp.Regexp
	invert bool
	count  bool
	out    io.Writer
}

// scan filters r line by line. label prefixes output when set.
func (m *matcher) scan(ctx context.Context, r io.Reader, label string) error {
	prefix := ""
	if label != "" {
		prefix = label + ":"
	}
	n := 0
	err := eachLine(ctx, r, func(line string) error {
		text := strings.TrimSuffix(line, "\n")
		if m.re.MatchString(text) == m.invert {
			return nil
		}
		n++
		if m.count {
			return nil
		}
		_, err := io.WriteString(m.out, prefix+text+"\n")
		return err
	})
	if err != nil || !m.count {
		return err
	}
	_, err = io.WriteString(m.out, prefix+strconv.Itoa(n)+"\n")
	return err
}

func (*Grep) Complete(ctx context.Context, sh *shell.Shell, args []string, partial string) []string {
	if len(args) == 0 {
		return nil
	}
	return sh.CompletePath(ctx, partial, false)
}
