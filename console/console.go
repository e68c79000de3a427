// Package console drives a shell from a line editor or a script
package console

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/brettbedarf/vfsh/config"
	"github.com/brettbedarf/vfsh/internal/util"
	"github.com/brettbedarf/vfsh/shell"
)

const confirmPrompt = "really exit (yes/no): "

// Console is an interactive session. Input is read while earlier lines
// still run; submitted lines queue in the shell.
type Console struct {
	sh          *shell.Shell
	rl          *readline.Instance
	confirmExit bool

	mu      sync.Mutex
	parent  context.Context
	lineCtx context.Context
	cancel  context.CancelFunc
	release func() bool
}

// Setup builds the shell a console runs. It receives the editor's output
// streams so command output does not clobber the input line.
type Setup func(stdout, stderr io.Writer) (*shell.Shell, error)

// New opens the line editor and builds the shell with setup
func New(ctx context.Context, cfg *config.Config, setup Setup) (*Console, error) {
	c := &Console{confirmExit: cfg.ConfirmExit, parent: ctx}
	c.lineCtx, c.cancel = context.WithCancel(ctx)

	comp := &completer{ctx: ctx}
	rl, err := readline.NewEx(&readline.Config{
		AutoComplete:    comp,
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		c.cancel()
		return nil, err
	}
	sh, err := setup(rl.Stdout(), rl.Stderr())
	if err != nil {
		c.cancel()
		rl.Close()
		return nil, err
	}
	comp.sh = sh
	c.sh, c.rl = sh, rl
	c.release = context.AfterFunc(ctx, func() { rl.Close() })

	rl.SetPrompt(sh.Prompt())
	sh.OnIdle(func() {
		rl.SetPrompt(sh.Prompt())
		rl.Refresh()
	})
	return c, nil
}

// Run reads lines until exit, end of input or ctx ends. It returns the
// exit code of the last executed line.
func (c *Console) Run() int {
	logger := util.GetLogger("Console.Run")
	defer func() {
		c.release()
		c.rl.Close()
		c.mu.Lock()
		c.cancel()
		c.mu.Unlock()
	}()

	for {
		line, err := c.rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			c.interrupt()
			continue
		case errors.Is(err, io.EOF):
			if c.sh.WaitIdle(c.parent) != nil {
				return shell.ExitInterrupted
			}
			return c.sh.LastExit()
		case err != nil:
			logger.Error().Err(err).Msg("Reading input failed")
			return shell.ExitInternal
		}
		if c.parent.Err() != nil {
			return shell.ExitInterrupted
		}

		if strings.TrimSpace(line) == "exit" {
			if c.exit() {
				return c.sh.LastExit()
			}
			continue
		}
		c.mu.Lock()
		ctx := c.lineCtx
		c.mu.Unlock()
		c.sh.Submit(ctx, line)
	}
}

// interrupt cancels the running line and everything queued behind it
func (c *Console) interrupt() {
	if !c.sh.Busy() {
		return
	}
	c.mu.Lock()
	c.cancel()
	c.lineCtx, c.cancel = context.WithCancel(c.parent)
	c.mu.Unlock()
}

// exit waits for queued lines, then asks for confirmation when enabled
func (c *Console) exit() bool {
	if err := c.sh.WaitIdle(c.parent); err != nil {
		return true
	}
	if !c.confirmExit {
		return true
	}

	c.rl.SetPrompt(confirmPrompt)
	defer c.rl.SetPrompt(c.sh.Prompt())
	for {
		answer, err := c.rl.Readline()
		if err != nil {
			return errors.Is(err, io.EOF)
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "yes", "y":
			return true
		case "no", "n":
			return false
		}
	}
}
