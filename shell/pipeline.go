package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/brettbedarf/vfsh/internal/util"
	"github.com/brettbedarf/vfsh/pipe"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ExitInterrupted is returned when the caller's context ends a pipeline
const ExitInterrupted = 130

type stage struct {
	pc      *ParsedCommand
	env     *Env
	in      *pipe.Sink   // stdin pipe; already ended for the first stage
	out     *pipe.Source // pipe to the next stage; nil for the last
	closers []io.Closer  // redirection targets
}

// Execute runs one input line to completion and returns its exit code,
// which "$?" expands to afterwards. Failures are reported on the shell's
// stderr; they never end the session.
func (sh *Shell) Execute(ctx context.Context, line string) int {
	sh.execMu.Lock()
	defer sh.execMu.Unlock()

	if strings.TrimSpace(line) == "" {
		return sh.LastExit()
	}
	code := sh.execute(ctx, line)
	sh.lastExit.Store(int32(code))
	return code
}

func (sh *Shell) execute(ctx context.Context, line string) int {
	logger := util.GetLogger("Shell.Execute")

	tokens, err := Tokenize(line, sh.LastExit())
	if err != nil {
		fmt.Fprintf(sh.stderr, "vfsh: %v\n", err)
		return ExitUsage
	}
	groups, err := splitPipes(tokens)
	if err != nil {
		fmt.Fprintf(sh.stderr, "vfsh: %v\n", err)
		return ExitUsage
	}
	if len(groups) == 0 {
		return sh.LastExit()
	}

	// parse everything first: nothing runs if any stage is invalid
	stages := make([]*stage, len(groups))
	names := make([]string, len(groups))
	for i, g := range groups {
		pc := sh.parseStage(g)
		if !pc.Valid {
			return sh.parseFailure(pc)
		}
		stages[i] = &stage{pc: pc}
		names[i] = pc.Name
	}

	id := uuid.New().String()
	logger.Debug().Str("line", id).Strs("stages", names).Msg("Starting pipeline")

	sh.wire(stages)
	for _, st := range stages {
		if err := sh.openRedirects(ctx, st); err != nil {
			fmt.Fprintf(sh.stderr, "%s: %v\n", st.pc.Name, err)
			for _, s := range stages {
				s.finish()
			}
			return ExitFailure
		}
	}
	return sh.dispatch(ctx, id, stages)
}

func (sh *Shell) parseFailure(pc *ParsedCommand) int {
	name := pc.Name
	if name == "" {
		name = "vfsh"
	}
	fmt.Fprintf(sh.stderr, "%s: %v\n", name, pc.Err)
	if errors.Is(pc.Err, ErrUnknownCommand) {
		return ExitNotFound
	}
	return ExitUsage
}

// wire connects the stages right to left: each stage's stdout feeds the
// stdin pipe of the stage after it
func (sh *Shell) wire(stages []*stage) {
	for i := len(stages) - 1; i >= 0; i-- {
		st := stages[i]
		env := &Env{Stdout: sh.stdout, Stderr: sh.stderr, Shell: sh}
		if i < len(stages)-1 {
			st.out = pipe.NewSource(stages[i+1].in, true)
			env.Stdout = st.out
		}
		if i > 0 {
			st.in = pipe.NewSink(sh.pipeBuffer)
		} else {
			st.in = pipe.EmptySink()
		}
		env.Stdin = st.in

		for _, dup := range st.pc.Redirect.Dups {
			switch dup {
			case "1>&2":
				env.Stdout = env.Stderr
			case "2>&1":
				env.Stderr = env.Stdout
			}
		}
		st.env = env
	}
}

// openRedirects replaces the stage's streams with the VFS nodes named by
// its file redirections
func (sh *Shell) openRedirects(ctx context.Context, st *stage) error {
	r := st.pc.Redirect
	if r.Stdin != "" {
		rc, err := sh.fs.OpenReader(ctx, r.Stdin, sh.user, sh.Cwd())
		if err != nil {
			return err
		}
		st.closers = append(st.closers, rc)
		st.env.Stdin = rc
	}
	if r.Stdout != "" {
		wc, err := sh.fs.OpenWriter(ctx, r.Stdout, sh.user, sh.Cwd())
		if err != nil {
			return err
		}
		st.closers = append(st.closers, wc)
		st.env.Stdout = wc
	}
	if r.Stderr != "" {
		wc, err := sh.fs.OpenWriter(ctx, r.Stderr, sh.user, sh.Cwd())
		if err != nil {
			return err
		}
		st.closers = append(st.closers, wc)
		st.env.Stderr = wc
	}
	return nil
}

// finish ends the stage's output pipe, stops reading its input pipe and
// closes redirection targets
func (st *stage) finish() error {
	if st.out != nil {
		st.out.Close()
	}
	if st.in != nil {
		st.in.Close()
	}
	var errs []error
	for _, c := range st.closers {
		errs = append(errs, c.Close())
	}
	st.closers = nil
	return errors.Join(errs...)
}

func (sh *Shell) dispatch(ctx context.Context, id string, stages []*stage) int {
	logger := util.GetLogger("Shell.dispatch")

	var cancel context.CancelFunc
	if sh.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, sh.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	codes := make([]int, len(stages))
	var g errgroup.Group
	for i, st := range stages {
		g.Go(func() error {
			err := sh.runStage(ctx, st)
			if ctx.Err() != nil {
				// the line was given up on; stay quiet
				st.finish()
				return err
			}
			codes[i] = sh.report(id, st, err)
			if cerr := st.finish(); cerr != nil {
				fmt.Fprintf(sh.stderr, "%s: %v\n", st.pc.Name, cerr)
				if codes[i] == ExitOK {
					codes[i] = ExitFailure
				}
				err = errors.Join(err, cerr)
			}
			return err
		})
	}
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var werr error
	select {
	case werr = <-done:
	case <-ctx.Done():
	}
	if ctx.Err() != nil {
		// unblock stages stuck on a pipe; they finish on their own
		for _, st := range stages {
			st.in.Close()
			if st.out != nil {
				st.out.Close()
			}
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			logger.Warn().Str("line", id).Dur("timeout", sh.timeout).Msg("Pipeline timed out")
			fmt.Fprintf(sh.stderr, "vfsh: %v\n", ErrHanging)
			return ExitInternal
		}
		return ExitInterrupted
	}
	if werr != nil {
		logger.Debug().Str("line", id).Err(werr).Msg("Pipeline finished with errors")
	}

	code := ExitOK
	for i := len(codes) - 1; i >= 0; i-- {
		if codes[i] != ExitOK {
			code = codes[i]
			break
		}
	}
	logger.Debug().Str("line", id).Int("exit", code).Msg("Pipeline done")
	return code
}

func (sh *Shell) runStage(ctx context.Context, st *stage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger := util.GetLogger("Shell.runStage")
			logger.Error().Str("cmd", st.pc.Name).
				Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Command panicked")
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return st.pc.Command.Execute(ctx, st.env, st.pc.Args, newOptions(st.pc.Options))
}

// report prints a stage failure and maps it to an exit code
func (sh *Shell) report(id string, st *stage, err error) int {
	name := st.pc.Name
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &exitErr):
		if exitErr.Err != nil {
			fmt.Fprintf(st.env.Stderr, "%s: %v\n", name, exitErr.Err)
		}
		return exitErr.Code
	case st.out != nil && errors.Is(err, pipe.ErrClosedPipe):
		// the next stage stopped reading
		return ExitOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ExitInternal
	case isUserError(err):
		fmt.Fprintf(st.env.Stderr, "%s: %v\n", name, err)
		return ExitFailure
	default:
		logger := util.GetLogger("Shell.report")
		logger.Error().Str("line", id).Str("cmd", name).Err(err).Msg("Command failed")
		fmt.Fprintf(st.env.Stderr, "%s: internal error: %v\n", name, err)
		return ExitInternal
	}
}
