package commands

import (
	"context"
	"io"
	"slices"
	"strings"

	"github.com/brettbedarf/vfsh/shell"
	"github.com/kballard/go-shellquote"
)

// Alias lists, removes or defines aliases
type Alias struct {
	noOptions
}

func (*Alias) Name() string {
	return "alias"
}

func (*Alias) Syntax() string {
	return "[<alias> [<command> [args...]]]"
}

func (*Alias) Help() string {
	return "list aliases, remove <alias>, or define <alias> as a command with leading arguments"
}

func (*Alias) Execute(ctx context.Context, env *shell.Env, args []string, opts shell.Options) error {
	aliases := env.Shell.Aliases()
	switch len(args) {
	case 0:
		for _, name := range aliases.Names() {
			exp, ok := aliases.Get(name)
			if !ok {
				continue
			}
			if _, err := io.WriteString(env.Stdout, name+"="+shellquote.Join(exp...)+"\n"); err != nil {
				return err
			}
		}
		return nil
	case 1:
		if !aliases.Delete(args[0]) {
			return shell.Failf(shell.ExitFailure, "%s: not found", args[0])
		}
		return nil
	default:
		if err := aliases.Set(args[0], args[1:]); err != nil {
			return shell.Failf(shell.ExitFailure, "%v", err)
		}
		return nil
	}
}

// Complete offers alias names first, then command names
func (*Alias) Complete(ctx context.Context, sh *shell.Shell, args []string, partial string) []string {
	var names []string
	switch len(args) {
	case 0:
		names = sh.Aliases().Names()
	case 1:
		names = sh.Commands().Names()
	default:
		return nil
	}
	return slices.DeleteFunc(names, func(n string) bool {
		return !strings.HasPrefix(n, partial)
	})
}
