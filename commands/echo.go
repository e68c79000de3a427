package commands

import (
	"context"
	"io"
	"strings"

	"github.com/brettbedarf/vfsh/shell"
)

// Echo prints its arguments
type Echo struct{}

func (*Echo) Name() string {
	return "echo"
}

func (*Echo) Syntax() string {
	return "[-n|--no-newline] [value...]"
}

func (*Echo) Help() string {
	return "print the arguments separated by one space"
}

func (*Echo) Options() []shell.OptionSpec {
	return []shell.OptionSpec{{Long: "no-newline", Short: 'n'}}
}

func (*Echo) Execute(ctx context.Context, env *shell.Env, args []string, opts shell.Options) error {
	out := strings.Join(args, " ")
	if !opts.Has("no-newline") {
		out += "\n"
	}
	_, err := io.WriteString(env.Stdout, out)
	return err
}
