package shell

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brettbedarf/vfsh"
	"github.com/brettbedarf/vfsh/config"
	"github.com/brettbedarf/vfsh/filesystem"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// fakeCmd is a configurable builtin for dispatcher tests
type fakeCmd struct {
	name  string
	opts  []OptionSpec
	run   func(ctx context.Context, env *Env, args []string, opts Options) error
	calls atomic.Int32
}

func (c *fakeCmd) Name() string          { return c.name }
func (c *fakeCmd) Syntax() string        { return "[args...]" }
func (c *fakeCmd) Help() string          { return c.name + " for tests" }
func (c *fakeCmd) Options() []OptionSpec { return c.opts }

func (c *fakeCmd) Execute(ctx context.Context, env *Env, args []string, opts Options) error {
	c.calls.Add(1)
	if c.run == nil {
		return nil
	}
	return c.run(ctx, env, args, opts)
}

// fakeFileCmd adds argument completion over VFS paths
type fakeFileCmd struct {
	fakeCmd
}

func (c *fakeFileCmd) Complete(ctx context.Context, sh *Shell, args []string, partial string) []string {
	return sh.CompletePath(ctx, partial, false)
}

type testShell struct {
	*Shell
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	cmds   map[string]*fakeCmd
	host   afero.Fs
}

func newTestShell(t *testing.T) *testShell {
	return newTestShellTimeout(t, time.Second)
}

func newTestShellTimeout(t *testing.T, timeout time.Duration) *testShell {
	t.Helper()
	ctx := context.Background()

	host := afero.NewMemMapFs()
	require.NoError(t, host.MkdirAll("/tmp", 0o755))
	require.NoError(t, afero.WriteFile(host, "/tmp/in.txt", []byte("alpha\nbeta\n"), 0o644))

	cfg := config.NewDefaultConfig()
	cfg.User = config.UserConfig{Name: "alice", UID: 1000, GID: 1000, Home: "/home/alice"}
	cfg.Mounts = []config.MountConfig{{Name: "tmp", Path: "/tmp"}}
	cfg.PipelineTimeoutMs = int(timeout / time.Millisecond)
	cfg.PipeBuffer = 2
	cfg.Aliases = map[string]string{"hi": "echo 'hello there'"}

	fs, err := filesystem.NewFS(cfg, host)
	require.NoError(t, err)
	content := "one\ntwo\nthree\n"
	_, err = fs.AddFileNode(&vfsh.FileCreateRequest{
		NodeRequest: vfsh.NodeRequest{Path: "/home/alice/notes.txt"},
		Content:     &content,
	})
	require.NoError(t, err)
	_, err = fs.AddDirNode(&vfsh.DirCreateRequest{NodeRequest: vfsh.NodeRequest{Path: "/home/alice/docs"}})
	require.NoError(t, err)

	ts := &testShell{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		cmds:   map[string]*fakeCmd{},
		host:   host,
	}
	ts.Shell = New(ctx, cfg, fs, ts.stdout, ts.stderr)

	ts.add(&fakeCmd{
		name: "echo",
		opts: []OptionSpec{{Long: "no-newline", Short: 'n'}},
		run: func(ctx context.Context, env *Env, args []string, opts Options) error {
			end := "\n"
			if opts.Has("no-newline") {
				end = ""
			}
			_, err := fmt.Fprint(env.Stdout, strings.Join(args, " ")+end)
			return err
		},
	})
	ts.add(&fakeCmd{
		name: "grep",
		run: func(ctx context.Context, env *Env, args []string, opts Options) error {
			sc := bufio.NewScanner(env.Stdin)
			for sc.Scan() {
				if strings.Contains(sc.Text(), args[0]) {
					if _, err := fmt.Fprintln(env.Stdout, sc.Text()); err != nil {
						return err
					}
				}
			}
			return sc.Err()
		},
	})
	ts.add(&fakeCmd{
		name: "cat",
		run: func(ctx context.Context, env *Env, args []string, opts Options) error {
			sc := bufio.NewScanner(env.Stdin)
			for sc.Scan() {
				if _, err := fmt.Fprintln(env.Stdout, sc.Text()); err != nil {
					return err
				}
			}
			return sc.Err()
		},
	})
	ts.add(&fakeCmd{
		name: "warn",
		run: func(ctx context.Context, env *Env, args []string, opts Options) error {
			fmt.Fprintln(env.Stdout, "out")
			fmt.Fprintln(env.Stderr, "err")
			return nil
		},
	})
	ts.add(&fakeCmd{
		name: "fail",
		run: func(ctx context.Context, env *Env, args []string, opts Options) error {
			return Failf(3, "failed on purpose")
		},
	})
	ts.add(&fakeCmd{
		name: "missing",
		run: func(ctx context.Context, env *Env, args []string, opts Options) error {
			_, err := env.Shell.Resolve(ctx, "/nowhere")
			return err
		},
	})
	ts.add(&fakeCmd{
		name: "broken",
		run: func(ctx context.Context, env *Env, args []string, opts Options) error {
			return fmt.Errorf("unexpected state")
		},
	})
	ts.add(&fakeCmd{
		name: "boom",
		run: func(ctx context.Context, env *Env, args []string, opts Options) error {
			panic("boom")
		},
	})
	ts.add(&fakeCmd{
		name: "hang",
		run: func(ctx context.Context, env *Env, args []string, opts Options) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	ts.add(&fakeCmd{
		name: "yes",
		run: func(ctx context.Context, env *Env, args []string, opts Options) error {
			for {
				if _, err := fmt.Fprintln(env.Stdout, "y"); err != nil {
					return err
				}
			}
		},
	})
	ts.add(&fakeCmd{
		name: "head1",
		run: func(ctx context.Context, env *Env, args []string, opts Options) error {
			sc := bufio.NewScanner(env.Stdin)
			if sc.Scan() {
				fmt.Fprintln(env.Stdout, sc.Text())
			}
			return nil
		},
	})
	ts.add(&fakeCmd{
		name: "opt",
		opts: []OptionSpec{
			{Long: "name", Short: 'N', ArgCnt: 1},
			{Long: "pair", ArgCnt: 2},
			{Long: "verbose", Short: 'v'},
			{Long: "all", Short: 'a'},
		},
		run: func(ctx context.Context, env *Env, args []string, opts Options) error {
			name, _ := opts.Arg("name")
			fmt.Fprintf(env.Stdout, "name=%s pair=%v v=%t a=%t args=%v\n",
				name, opts["pair"].Args, opts.Has("verbose"), opts.Has("all"), args)
			return nil
		},
	})
	files := &fakeFileCmd{fakeCmd{name: "files"}}
	require.NoError(t, ts.Register(files))
	ts.cmds["files"] = &files.fakeCmd
	return ts
}

func (ts *testShell) add(c *fakeCmd) {
	if err := ts.Register(c); err != nil {
		panic(err)
	}
	ts.cmds[c.name] = c
}

func (ts *testShell) reset() {
	ts.stdout.Reset()
	ts.stderr.Reset()
}
