package commands

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/brettbedarf/vfsh"
	"github.com/brettbedarf/vfsh/config"
	"github.com/brettbedarf/vfsh/filesystem"
	"github.com/brettbedarf/vfsh/shell"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	sh     *shell.Shell
	host   afero.Fs
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newFixture builds a shell for bob over a memory host with /data mounted
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	host := afero.NewMemMapFs()
	require.NoError(t, host.MkdirAll("/data/sub", 0o755))
	for name, content := range map[string]string{
		"/data/a.txt":     "apple\nbanana\ncherry\n",
		"/data/b.txt":     "Apple pie\n",
		"/data/sub/c.txt": "deep\n",
		"/data/skip.tmp":  "hidden\n",
	} {
		require.NoError(t, afero.WriteFile(host, name, []byte(content), 0o644))
	}

	cfg := config.NewDefaultConfig()
	cfg.User = config.UserConfig{Name: "bob", UID: 1000, GID: 1000, Home: "/home/bob"}
	cfg.Mounts = []config.MountConfig{{Name: "data", Path: "/data", Exclude: []string{"**/*.tmp"}}}
	cfg.PipelineTimeoutMs = 2000
	cfg.Aliases = nil

	fs, err := filesystem.NewFS(cfg, host)
	require.NoError(t, err)
	notes := "one\ntwo\nthree\n"
	_, err = fs.AddFileNode(&vfsh.FileCreateRequest{
		NodeRequest: vfsh.NodeRequest{Path: "/home/bob/notes.txt"},
		Content:     &notes,
	})
	require.NoError(t, err)

	f := &fixture{host: host, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	f.sh = shell.New(ctx, cfg, fs, f.stdout, f.stderr)
	require.NoError(t, Register(f.sh))
	return f
}

// run executes line with fresh output buffers
func (f *fixture) run(line string) int {
	return f.runContext(context.Background(), line)
}

func (f *fixture) runContext(ctx context.Context, line string) int {
	f.stdout.Reset()
	f.stderr.Reset()
	return f.sh.Execute(ctx, line)
}

type lineCase struct {
	name   string
	line   string
	code   int
	stdout string
	stderr string
}

// runCases checks exit code and both streams for each case in a fresh shell
func runCases(t *testing.T, cases []lineCase) {
	t.Helper()
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			code := f.run(tt.line)
			assert.Equal(t, tt.code, code, "stderr: %s", f.stderr.String())
			assert.Equal(t, tt.stdout, f.stdout.String())
			assert.Equal(t, tt.stderr, f.stderr.String())
		})
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	assert.Equal(t,
		[]string{"alias", "cat", "cd", "echo", "grep", "help", "ls", "pwd", "test", "wait", "wc"},
		f.sh.Commands().Names())
	assert.Error(t, Register(f.sh), "builtins register once")
}

func TestPipelines(t *testing.T) {
	t.Parallel()

	runCases(t, []lineCase{
		{name: "echo into grep", line: "echo hello | grep hel", stdout: "hello\n"},
		{name: "grep without match", line: "echo hello | grep xyz"},
		{name: "three stages", line: "cat /data/a.txt | grep an | wc -l", stdout: "      1\n"},
		{name: "alias in pipeline", line: "ll /data/sub | wc -l", stdout: "      1\n"},
		{name: "stdin redirect", line: "grep t < notes.txt", stdout: "two\nthree\n"},
		{
			name:   "unknown stage runs nothing",
			line:   "echo x | nope",
			code:   shell.ExitNotFound,
			stderr: "nope: command not found\n",
		},
		{
			name:   "rightmost failure sets the code",
			line:   "cat nope | wc -l",
			code:   2,
			stdout: "      0\n",
			stderr: "cat: 'nope' not found\n",
		},
	})
}

func TestOutputRedirect(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	require.Equal(t, shell.ExitOK, f.run("grep -v an /data/a.txt > /data/out.txt"), f.stderr.String())
	data, err := afero.ReadFile(f.host, "/data/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "apple\ncherry\n", string(data))

	assert.Equal(t, shell.ExitOK, f.run("cat /data/out.txt"))
	assert.Equal(t, "apple\ncherry\n", f.stdout.String())

	assert.Equal(t, shell.ExitFailure, f.run("echo x > /sys/x"))
	assert.Equal(t, "echo: /sys/x: operation not supported\n", f.stderr.String())
}

func TestWait(t *testing.T) {
	t.Parallel()

	runCases(t, []lineCase{
		{name: "fraction", line: "wait 0.01"},
		{name: "zero", line: "wait 0"},
		{
			name:   "not a number",
			line:   "wait soon",
			code:   shell.ExitFailure,
			stderr: "wait: invalid delay seconds 'soon'\n",
		},
		{
			name:   "negative",
			line:   "wait -- -1",
			code:   shell.ExitFailure,
			stderr: "wait: invalid delay seconds '-1'\n",
		},
		{
			name:   "missing argument",
			line:   "wait",
			code:   shell.ExitUsage,
			stderr: "wait: expected one argument\n",
		},
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)

		start := time.Now()
		code := f.runContext(ctx, "wait 10")
		assert.Equal(t, shell.ExitInterrupted, code)
		assert.Less(t, time.Since(start), 2*time.Second)
	})
}

func TestTest(t *testing.T) {
	t.Parallel()

	runCases(t, []lineCase{
		{name: "once", line: "test hi", stdout: "hi\n"},
		{name: "repeated", line: "test hi 3", stdout: "hi\nhi\nhi\n"},
		{name: "no newline with delay", line: "test -n x 2 0.001", stdout: "xx"},
		{name: "zero times", line: "test hi 0"},
		{
			name:   "bad repeat",
			line:   "test hi many",
			code:   shell.ExitUsage,
			stderr: "test: invalid repeat count 'many'\n",
		},
		{
			name:   "bad delay",
			line:   "test hi 2 later",
			code:   shell.ExitUsage,
			stderr: "test: invalid delay seconds 'later'\n",
		},
		{name: "no value", line: "test", code: shell.ExitUsage, stderr: "test: invalid arguments\n"},
		{name: "piped", line: "test y 4 | wc -l", stdout: "      4\n"},
	})
}
