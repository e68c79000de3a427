// Package commands holds the builtins of the vfsh shell
package commands

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/brettbedarf/vfsh/filesystem"
	"github.com/brettbedarf/vfsh/shell"
)

// Register adds every builtin to sh
func Register(sh *shell.Shell) error {
	return sh.Register(
		&Alias{},
		&Cat{},
		&Cd{},
		&Echo{},
		&Grep{},
		&Help{},
		&Ls{},
		&Pwd{},
		&Test{},
		&Wait{},
		&Wc{},
	)
}

// noOptions is embedded by commands without options
type noOptions struct{}

func (noOptions) Options() []shell.OptionSpec {
	return nil
}

// fileArgs completes every argument as a VFS path
type fileArgs struct{}

func (fileArgs) Complete(ctx context.Context, sh *shell.Shell, args []string, partial string) []string {
	return sh.CompletePath(ctx, partial, false)
}

// eachLine calls fn for every line of r, newline included. A final line
// without newline is passed as is.
func eachLine(ctx context.Context, r io.Reader, fn func(line string) error) error {
	br := bufio.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := br.ReadString('\n')
		if line != "" {
			if ferr := fn(line); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// copyLines writes r to w one line per write, so pipes carry line units
func copyLines(ctx context.Context, w io.Writer, r io.Reader) error {
	return eachLine(ctx, r, func(line string) error {
		_, err := io.WriteString(w, line)
		return err
	})
}

// resolveAll resolves every argument, reporting unresolvable ones on
// stderr. ok is false when any argument failed.
func resolveAll(ctx context.Context, env *shell.Env, name string, args []string) (nodes []*filesystem.Node, ok bool, err error) {
	ok = true
	for _, a := range args {
		found, rerr := env.Shell.Resolve(ctx, a)
		if rerr != nil {
			if !filesystem.IsUserError(rerr) {
				return nil, false, rerr
			}
			if _, err := io.WriteString(env.Stderr, name+": "+rerr.Error()+"\n"); err != nil {
				return nil, false, err
			}
			ok = false
			continue
		}
		nodes = append(nodes, found...)
	}
	return nodes, ok, nil
}
