package commands

import (
	"context"
	"errors"

	"github.com/brettbedarf/vfsh/filesystem"
	"github.com/brettbedarf/vfsh/shell"
)

// cat exit codes for unusable arguments
const (
	catNotFound  = 2
	catAmbiguous = 3
	catNotFile   = 4
)

// Cat concatenates files, or stdin without arguments
type Cat struct {
	noOptions
	fileArgs
}

func (*Cat) Name() string {
	return "cat"
}

func (*Cat) Syntax() string {
	return "[file...]"
}

func (*Cat) Help() string {
	return "concatenate files and print on stdout"
}

func (*Cat) Execute(ctx context.Context, env *shell.Env, args []string, opts shell.Options) error {
	if len(args) == 0 {
		return copyLines(ctx, env.Stdout, env.Stdin)
	}
	for _, a := range args {
		n, err := catTarget(ctx, env.Shell, a)
		if err != nil {
			return err
		}
		rc, err := n.Open(ctx)
		if err != nil {
			return err
		}
		err = copyLines(ctx, env.Stdout, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func catTarget(ctx context.Context, sh *shell.Shell, path string) (*filesystem.Node, error) {
	nodes, err := sh.Resolve(ctx, path)
	switch {
	case errors.Is(err, filesystem.ErrNotFound):
		return nil, shell.Failf(catNotFound, "'%s' not found", path)
	case err != nil:
		return nil, err
	case len(nodes) > 1:
		return nil, shell.Failf(catAmbiguous, "'%s' matches %d entries, select one", path, len(nodes))
	case !nodes[0].CanRead():
		return nil, shell.Failf(catNotFile, "'%s' is not a file", path)
	}
	return nodes[0], nil
}
