package commands

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/brettbedarf/vfsh/shell"
)

// Help describes the registered commands
type Help struct {
	noOptions
}

func (*Help) Name() string {
	return "help"
}

func (*Help) Syntax() string {
	return "[<command>]"
}

func (*Help) Help() string {
	return "list commands or show more information for one command"
}

func (*Help) Execute(ctx context.Context, env *shell.Env, args []string, opts shell.Options) error {
	cmds := env.Shell.Commands()
	if len(args) > 1 {
		return shell.Failf(shell.ExitUsage, "too many arguments")
	}

	var b strings.Builder
	if len(args) == 0 {
		for _, name := range cmds.Names() {
			c, _ := cmds.Lookup(name)
			b.WriteString(strings.TrimRight(fmt.Sprintf("%-6s %s", name, c.Syntax()), " ") + "\n")
		}
		b.WriteString("exit\n")
		_, err := io.WriteString(env.Stdout, b.String())
		return err
	}

	c, ok := cmds.Lookup(args[0])
	if !ok {
		return shell.Failf(shell.ExitFailure, "no help for '%s'", args[0])
	}
	fmt.Fprintf(&b, "%s %s\n  %s\n", c.Name(), c.Syntax(), c.Help())
	for _, o := range c.Options() {
		b.WriteString("  --" + o.Long)
		if o.Short != 0 {
			b.WriteString(", -" + string(o.Short))
		}
		if o.ArgCnt > 0 {
			fmt.Fprintf(&b, " (%d args)", o.ArgCnt)
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(env.Stdout, b.String())
	return err
}

func (*Help) Complete(ctx context.Context, sh *shell.Shell, args []string, partial string) []string {
	if len(args) > 0 {
		return nil
	}
	return slices.DeleteFunc(sh.Commands().Names(), func(n string) bool {
		return !strings.HasPrefix(n, partial)
	})
}
