package commands

import (
	"context"
	"errors"
	"io"

	"github.com/brettbedarf/vfsh/filesystem"
	"github.com/brettbedarf/vfsh/shell"
)

// Cd changes the working directory
type Cd struct {
	noOptions
}

func (*Cd) Name() string {
	return "cd"
}

func (*Cd) Syntax() string {
	return "[~ | .. | . | path | ~/subpath]"
}

func (*Cd) Help() string {
	return "change the working directory, the home directory without argument"
}

func (*Cd) Execute(ctx context.Context, env *shell.Env, args []string, opts shell.Options) error {
	if len(args) > 1 {
		return shell.Failf(shell.ExitUsage, "too many arguments")
	}
	path := "~"
	if len(args) == 1 {
		path = args[0]
	}
	_, err := env.Shell.Chdir(ctx, path)
	switch {
	case errors.Is(err, filesystem.ErrNotDirectory):
		return shell.Failf(shell.ExitFailure, "'%s' is not a directory", path)
	case errors.Is(err, filesystem.ErrAmbiguous):
		return shell.Failf(shell.ExitFailure, "'%s' matches more than one directory", path)
	case filesystem.IsUserError(err):
		return shell.Failf(shell.ExitFailure, "'%s' not found", path)
	}
	return err
}

func (*Cd) Complete(ctx context.Context, sh *shell.Shell, args []string, partial string) []string {
	if len(args) > 0 {
		return nil
	}
	return sh.CompletePath(ctx, partial, true)
}

// Pwd prints the working directory
type Pwd struct {
	noOptions
}

func (*Pwd) Name() string {
	return "pwd"
}

func (*Pwd) Syntax() string {
	return ""
}

func (*Pwd) Help() string {
	return "print the working directory"
}

func (*Pwd) Execute(ctx context.Context, env *shell.Env, args []string, opts shell.Options) error {
	if len(args) > 0 {
		return shell.Failf(shell.ExitUsage, "too many arguments")
	}
	_, err := io.WriteString(env.Stdout, env.Shell.Cwd().FullName()+"\n")
	return err
}
