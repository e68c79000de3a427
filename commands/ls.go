package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/brettbedarf/vfsh/filesystem"
	"github.com/brettbedarf/vfsh/shell"
)

const lsTimeFormat = "2006-01-02 15:04"

// Ls lists directories and files
type Ls struct {
	fileArgs
}

func (*Ls) Name() string {
	return "ls"
}

func (*Ls) Syntax() string {
	return "[-d|--directory] [-l|--listing] [-e|--osfspath] [path...]"
}

func (*Ls) Help() string {
	return "list directory contents. -d lists directories themselves, -l uses the long format, -e adds host paths of mirrored entries"
}

func (*Ls) Options() []shell.OptionSpec {
	return []shell.OptionSpec{
		{Long: "directory", Short: 'd'},
		{Long: "listing", Short: 'l'},
		{Long: "osfspath", Short: 'e'},
	}
}

func (l *Ls) Execute(ctx context.Context, env *shell.Env, args []string, opts shell.Options) error {
	if len(args) == 0 {
		args = []string{"."}
	}
	nodes, ok, err := resolveAll(ctx, env, l.Name(), args)
	if err != nil {
		return err
	}

	contents := !opts.Has("directory")
	for i, n := range nodes {
		if !n.IsDir() || !contents {
			if err := l.entry(env.Stdout, n, opts); err != nil {
				return err
			}
			continue
		}

		if len(nodes) > 1 {
			header := n.FullName() + ":\n"
			if i > 0 {
				header = "\n" + header
			}
			if _, err := io.WriteString(env.Stdout, header); err != nil {
				return err
			}
		}
		children, err := n.List(ctx)
		if err != nil {
			return err
		}
		for _, c := range children {
			if err := l.entry(env.Stdout, c, opts); err != nil {
				return err
			}
		}
	}

	if !ok {
		return shell.Exit(shell.ExitUsage)
	}
	return nil
}

func (*Ls) entry(w io.Writer, n *filesystem.Node, opts shell.Options) error {
	name := n.Name()
	switch {
	case n.IsRoot():
		name = "/"
	case n.IsDir():
		name += "/"
	}
	if !opts.Has("listing") {
		_, err := io.WriteString(w, name+"\n")
		return err
	}

	st := n.Stat()
	size := "-"
	if st.Size >= 0 {
		size = strconv.FormatInt(st.Size, 10)
	}
	line := fmt.Sprintf("%c%s %8s %s %s", st.TypeChar(), st.Mode.Perm().String()[1:], size,
		st.Mtime.Format(lsTimeFormat), name)
	if host := n.HostPath(); host != "" && opts.Has("osfspath") {
		line += "  " + host
	}
	_, err := io.WriteString(w, line+"\n")
	return err
}
