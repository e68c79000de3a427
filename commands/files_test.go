package commands

import (
	"context"
	"strings"
	"testing"

	"github.com/brettbedarf/vfsh/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLs(t *testing.T) {
	t.Parallel()

	runCases(t, []lineCase{
		{name: "working directory", line: "ls", stdout: "notes.txt\n"},
		{name: "mirrored directory", line: "ls /data", stdout: "a.txt\nb.txt\nsub/\n"},
		{name: "directory itself", line: "ls -d /data", stdout: "data/\n"},
		{name: "root itself", line: "ls -d /", stdout: "/\n"},
		{name: "glob", line: "ls /data/*.txt", stdout: "a.txt\nb.txt\n"},
		{name: "relative parent", line: "ls ..", stdout: "bob/\n"},
		{
			name:   "several directories",
			line:   "ls /data /home",
			stdout: "/data:\na.txt\nb.txt\nsub/\n\n/home:\nbob/\n",
		},
		{
			name:   "missing path continues",
			line:   "ls nope notes.txt",
			code:   shell.ExitUsage,
			stdout: "notes.txt\n",
			stderr: "ls: nope: not found\n",
		},
	})
}

func TestLs_Root(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	require.Equal(t, shell.ExitOK, f.run("ls /"))
	assert.ElementsMatch(t, []string{"sys/", "data/", "home/"}, strings.Fields(f.stdout.String()))
}

func TestLs_Listing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	require.Equal(t, shell.ExitOK, f.run("ls -l /data/a.txt"))
	assert.Regexp(t, `^-rw-r--r--\s+20 \d{4}-\d\d-\d\d \d\d:\d\d a\.txt\n$`, f.stdout.String())

	require.Equal(t, shell.ExitOK, f.run("ls -le /data/a.txt"))
	assert.True(t, strings.HasSuffix(f.stdout.String(), " a.txt  /data/a.txt\n"), f.stdout.String())

	require.Equal(t, shell.ExitOK, f.run("ls --listing --directory /sys"))
	assert.Regexp(t, `^drwxr-xr-x\s+- .* sys/\n$`, f.stdout.String())

	require.Equal(t, shell.ExitOK, f.run("ls -e /data/a.txt"))
	assert.Equal(t, "a.txt\n", f.stdout.String(), "host paths only in long listings")
}

func TestCat(t *testing.T) {
	t.Parallel()

	runCases(t, []lineCase{
		{name: "one file", line: "cat notes.txt", stdout: "one\ntwo\nthree\n"},
		{name: "concatenates", line: "cat /data/b.txt ~/notes.txt", stdout: "Apple pie\none\ntwo\nthree\n"},
		{name: "stdin", line: "echo piped | cat", stdout: "piped\n"},
		{name: "empty stdin", line: "cat"},
		{name: "dynamic file", line: "cat /sys/uptime | wc -l", stdout: "      1\n"},
		{name: "not found", line: "cat nope", code: 2, stderr: "cat: 'nope' not found\n"},
		{
			name:   "ambiguous",
			line:   "cat /data/*.txt",
			code:   3,
			stderr: "cat: '/data/*.txt' matches 2 entries, select one\n",
		},
		{name: "directory", line: "cat /data", code: 4, stderr: "cat: '/data' is not a file\n"},
		{
			name:   "stops at the first failure",
			line:   "cat notes.txt nope /data/b.txt",
			code:   2,
			stdout: "one\ntwo\nthree\n",
			stderr: "cat: 'nope' not found\n",
		},
	})
}

func TestGrep(t *testing.T) {
	t.Parallel()

	runCases(t, []lineCase{
		{name: "file", line: "grep an /data/a.txt", stdout: "banana\n"},
		{name: "glob", line: "grep 'c*y' /data/a.txt", stdout: "cherry\n"},
		{name: "glob literal dot", line: "grep . /data/a.txt"},
		{name: "regexp", line: "grep '/^b.n/' /data/a.txt", stdout: "banana\n"},
		{name: "invert", line: "grep -v a /data/a.txt", stdout: "cherry\n"},
		{name: "count", line: "grep -c a /data/a.txt", stdout: "2\n"},
		{name: "count stdin", line: "cat /data/a.txt | grep --count e", stdout: "2\n"},
		{
			name:   "ignore case over files",
			line:   "grep -i apple /data/a.txt /data/b.txt",
			stdout: "/data/a.txt:apple\n/data/b.txt:Apple pie\n",
		},
		{
			name:   "glob over files",
			line:   "grep -ic P /data/*.txt",
			stdout: "/data/a.txt:1\n/data/b.txt:1\n",
		},
		{name: "no match is success", line: "grep zzz /data/a.txt"},
		{name: "missing pattern", line: "grep", code: shell.ExitUsage, stderr: "grep: missing pattern\n"},
		{
			name:   "directory",
			line:   "grep a /data",
			code:   shell.ExitUsage,
			stderr: "grep: /data: is a directory\n",
		},
		{
			name:   "missing file",
			line:   "grep a nope notes.txt",
			code:   shell.ExitUsage,
			stderr: "grep: nope: not found\n",
		},
	})

	t.Run("invalid regexp", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		assert.Equal(t, shell.ExitUsage, f.run("grep '/[/' notes.txt"))
		assert.True(t, strings.HasPrefix(f.stderr.String(), "grep: invalid pattern: "), f.stderr.String())
	})
}

func TestWc(t *testing.T) {
	t.Parallel()

	runCases(t, []lineCase{
		{name: "file", line: "wc notes.txt", stdout: "      3       3      14 /home/bob/notes.txt\n"},
		{name: "stdin lines", line: "cat notes.txt | wc -l", stdout: "      3\n"},
		{name: "characters not bytes", line: "echo héllo | wc -c", stdout: "      6\n"},
		{name: "last line without newline", line: "echo -n 'a b' | wc", stdout: "      0       2       3\n"},
		{
			name:   "total",
			line:   "wc -lw notes.txt /data/a.txt",
			stdout: "      3       3 /home/bob/notes.txt\n      3       3 /data/a.txt\n      6       6 total\n",
		},
		{
			name:   "directory",
			line:   "wc /data",
			code:   shell.ExitUsage,
			stderr: "wc: /data: is a directory\n",
		},
	})
}

func TestCdPwd(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	assert.Equal(t, shell.ExitOK, f.run("pwd"))
	assert.Equal(t, "/home/bob\n", f.stdout.String())

	assert.Equal(t, shell.ExitOK, f.run("cd /data/sub"))
	assert.Equal(t, shell.ExitOK, f.run("pwd"))
	assert.Equal(t, "/data/sub\n", f.stdout.String())
	assert.Equal(t, "bob@vfsh:/data/sub$ ", f.sh.Prompt())

	assert.Equal(t, shell.ExitOK, f.run("cd ../.."))
	assert.Equal(t, "/", f.sh.Cwd().FullName())

	assert.Equal(t, shell.ExitOK, f.run("cd d*"))
	assert.Equal(t, "/data", f.sh.Cwd().FullName())

	assert.Equal(t, shell.ExitFailure, f.run("cd nope"))
	assert.Equal(t, "cd: 'nope' not found\n", f.stderr.String())
	assert.Equal(t, shell.ExitFailure, f.run("cd a.txt"))
	assert.Equal(t, "cd: 'a.txt' is not a directory\n", f.stderr.String())
	assert.Equal(t, shell.ExitFailure, f.run("cd /*"))
	assert.Equal(t, "cd: '/*' matches more than one directory\n", f.stderr.String())
	assert.Equal(t, "/data", f.sh.Cwd().FullName(), "failures keep the directory")

	assert.Equal(t, shell.ExitUsage, f.run("cd a b"))
	assert.Equal(t, "cd: too many arguments\n", f.stderr.String())
	assert.Equal(t, shell.ExitUsage, f.run("pwd x"))
	assert.Equal(t, "pwd: too many arguments\n", f.stderr.String())

	assert.Equal(t, shell.ExitOK, f.run("cd"))
	assert.Equal(t, "/home/bob", f.sh.Cwd().FullName())
}

func TestEcho(t *testing.T) {
	t.Parallel()

	runCases(t, []lineCase{
		{name: "joins arguments", line: "echo a   b 'c  d'", stdout: "a b c  d\n"},
		{name: "no newline", line: "echo -n x", stdout: "x"},
		{name: "empty", line: "echo", stdout: "\n"},
		{name: "last exit code", line: "echo $?", stdout: "0\n"},
		{name: "dash after operand", line: "echo x -n", stdout: "x -n\n"},
	})
}

func TestAlias(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	assert.Equal(t, shell.ExitOK, f.run("alias"))
	assert.Equal(t, "ll=ls -l\n", f.stdout.String())

	assert.Equal(t, shell.ExitOK, f.run("alias lsd ls -d"))
	assert.Equal(t, shell.ExitOK, f.run("lsd /data"))
	assert.Equal(t, "data/\n", f.stdout.String())

	assert.Equal(t, shell.ExitOK, f.run("alias say echo 'two words'"))
	assert.Equal(t, shell.ExitOK, f.run("alias"))
	assert.Equal(t, "ll=ls -l\nlsd=ls -d\nsay=echo 'two words'\n", f.stdout.String())

	assert.Equal(t, shell.ExitFailure, f.run("alias x ll"))
	assert.Equal(t, "alias: alias for alias not allowed\n", f.stderr.String())
	assert.Equal(t, shell.ExitFailure, f.run("alias x alias y"))

	assert.Equal(t, shell.ExitOK, f.run("alias lsd"))
	assert.Equal(t, shell.ExitFailure, f.run("alias lsd"))
	assert.Equal(t, "alias: lsd: not found\n", f.stderr.String())
	assert.Equal(t, shell.ExitNotFound, f.run("lsd"))
}

func TestHelp(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	require.Equal(t, shell.ExitOK, f.run("help"))
	out := f.stdout.String()
	assert.Contains(t, out, "echo   [-n|--no-newline] [value...]\n")
	assert.Contains(t, out, "\npwd\n")
	assert.True(t, strings.HasSuffix(out, "wc     [-l|--lines] [-w|--words] [-c|--chars] [file...]\nexit\n"), out)

	require.Equal(t, shell.ExitOK, f.run("help grep"))
	assert.True(t, strings.HasPrefix(f.stdout.String(), "grep [-i|--ignore-case]"))
	assert.Contains(t, f.stdout.String(), "  --ignore-case, -i\n")

	assert.Equal(t, shell.ExitFailure, f.run("help nope"))
	assert.Equal(t, "help: no help for 'nope'\n", f.stderr.String())
	assert.Equal(t, shell.ExitUsage, f.run("help a b"))
}

func TestComplete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		line string
		want []string
	}{
		{"cat no", []string{"notes.txt"}},
		{"cat /data/", []string{"/data/a.txt", "/data/b.txt", "/data/sub/"}},
		{"cd /d", []string{"/data/"}},
		{"cd /data/", []string{"/data/sub/"}},
		{"cd /data/sub ", nil},
		{"ls /data/s", []string{"/data/sub/"}},
		{"ls --d", []string{"--directory"}},
		{"wc ~/", []string{"~/notes.txt"}},
		{"grep a", nil},
		{"grep a /data/a", []string{"/data/a.txt"}},
		{"help gr", []string{"grep"}},
		{"help grep ", nil},
		{"alias l", []string{"ll"}},
		{"alias x ec", []string{"echo"}},
		{"echo x ", nil},
		{"w", []string{"wait", "wc"}},
	}
	for _, tt := range tests {
		got, _ := f.sh.Complete(ctx, tt.line)
		if tt.want == nil {
			assert.Empty(t, got, tt.line)
		} else {
			assert.Equal(t, tt.want, got, tt.line)
		}
	}
}
