package shell

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brettbedarf/vfsh"
	"github.com/brettbedarf/vfsh/config"
	"github.com/brettbedarf/vfsh/filesystem"
	"github.com/brettbedarf/vfsh/internal/util"
	"github.com/kballard/go-shellquote"
)

// Shell is one interactive session over a VFS. Lines are executed one at a
// time; lines submitted while one runs wait in a FIFO queue.
type Shell struct {
	fs       *filesystem.FileSystem
	user     *vfsh.User
	host     string
	commands *Registry
	aliases  *Aliases

	stdout io.Writer
	stderr io.Writer

	timeout    time.Duration
	pipeBuffer int

	cwd      atomic.Pointer[filesystem.Node]
	lastExit atomic.Int32

	execMu sync.Mutex // one line at a time

	qmu     sync.Mutex
	queue   []queuedLine
	running bool
	idle    chan struct{} // closed while nothing is queued or running
	onIdle  func()
}

// queuedLine is a submitted line with the context it runs under
type queuedLine struct {
	ctx  context.Context
	line string
}

// New creates a shell for cfg's user over fs, starting in the user's home.
// stdout and stderr are the process-level streams of every pipeline.
func New(ctx context.Context, cfg *config.Config, fs *filesystem.FileSystem, stdout, stderr io.Writer) *Shell {
	logger := util.GetLogger("Shell.New")

	idle := make(chan struct{})
	close(idle)
	sh := &Shell{
		fs: fs,
		user: &vfsh.User{
			Name:  cfg.User.Name,
			UID:   cfg.User.UID,
			GID:   cfg.User.GID,
			Home:  cfg.User.Home,
			Admin: cfg.User.Admin,
		},
		host:       cfg.HostName,
		commands:   NewRegistry(),
		aliases:    NewAliases(),
		stdout:     newSyncWriter(stdout),
		stderr:     newSyncWriter(stderr),
		timeout:    cfg.PipelineTimeout(),
		pipeBuffer: cfg.PipeBuffer,
		idle:       idle,
	}
	sh.cwd.Store(fs.HomeDirectory(ctx, sh.user))

	_ = sh.aliases.Set("ll", []string{"ls", "-l"})
	for name, line := range cfg.Aliases {
		exp, err := shellquote.Split(line)
		if err == nil {
			err = sh.aliases.Set(name, exp)
		}
		if err != nil {
			logger.Warn().Err(err).Str("alias", name).Msg("Ignoring configured alias")
		}
	}
	return sh
}

func (sh *Shell) FS() *filesystem.FileSystem {
	return sh.fs
}

func (sh *Shell) User() *vfsh.User {
	return sh.user
}

func (sh *Shell) Commands() *Registry {
	return sh.commands
}

func (sh *Shell) Aliases() *Aliases {
	return sh.aliases
}

// Register adds builtins to the shell's registry
func (sh *Shell) Register(cmds ...Command) error {
	for _, c := range cmds {
		if err := sh.commands.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Cwd returns the working directory
func (sh *Shell) Cwd() *filesystem.Node {
	return sh.cwd.Load()
}

// Chdir changes the working directory; an empty path means "~"
func (sh *Shell) Chdir(ctx context.Context, path string) (*filesystem.Node, error) {
	if path == "" {
		path = "~"
	}
	dir, err := sh.fs.Directory(ctx, path, sh.user, sh.Cwd())
	if err != nil {
		return nil, err
	}
	sh.cwd.Store(dir)
	return dir, nil
}

// Resolve resolves path for the session user relative to the working
// directory
func (sh *Shell) Resolve(ctx context.Context, path string) ([]*filesystem.Node, error) {
	return sh.fs.Resolve(ctx, path, sh.user, sh.Cwd())
}

// LastExit returns the exit code of the last executed line
func (sh *Shell) LastExit() int {
	return int(sh.lastExit.Load())
}

// Prompt renders "user@host:path$ " with the home directory shown as "~".
// Admin users get "# ".
func (sh *Shell) Prompt() string {
	path := sh.Cwd().FullName()
	if home := sh.user.Home; home != "" && home != "/" {
		if path == home {
			path = "~"
		} else if rest, ok := strings.CutPrefix(path, home+"/"); ok {
			path = "~/" + rest
		}
	}
	end := "$ "
	if sh.user.Admin {
		end = "# "
	}
	return sh.user.Name + "@" + sh.host + ":" + path + end
}

// OnIdle sets a callback run each time the queue drains
func (sh *Shell) OnIdle(fn func()) {
	sh.qmu.Lock()
	sh.onIdle = fn
	sh.qmu.Unlock()
}

// Submit queues line for execution under ctx and returns immediately
func (sh *Shell) Submit(ctx context.Context, line string) {
	sh.qmu.Lock()
	sh.queue = append(sh.queue, queuedLine{ctx: ctx, line: line})
	if sh.running {
		sh.qmu.Unlock()
		return
	}
	sh.running = true
	sh.idle = make(chan struct{})
	sh.qmu.Unlock()

	go sh.drain()
}

func (sh *Shell) drain() {
	for {
		sh.qmu.Lock()
		if len(sh.queue) == 0 {
			sh.running = false
			idle, onIdle := sh.idle, sh.onIdle
			sh.qmu.Unlock()
			if onIdle != nil {
				onIdle()
			}
			close(idle)
			return
		}
		next := sh.queue[0]
		sh.queue = sh.queue[1:]
		sh.qmu.Unlock()

		sh.Execute(next.ctx, next.line)
	}
}

// Busy reports whether a line is running or queued
func (sh *Shell) Busy() bool {
	sh.qmu.Lock()
	defer sh.qmu.Unlock()
	return sh.running
}

// WaitIdle blocks until every submitted line has completed
func (sh *Shell) WaitIdle(ctx context.Context) error {
	sh.qmu.Lock()
	idle := sh.idle
	sh.qmu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
