package commands

import (
	"context"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/brettbedarf/vfsh/shell"
)

// parseSeconds reads a non-negative, possibly fractional, number of seconds
func parseSeconds(s string) (time.Duration, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return time.Duration(v * float64(time.Second)), true
}

// sleep waits d or until ctx ends
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait delays for a number of seconds
type Wait struct {
	noOptions
}

func (*Wait) Name() string {
	return "wait"
}

func (*Wait) Syntax() string {
	return "<seconds>"
}

func (*Wait) Help() string {
	return "delay processing for the given seconds"
}

func (*Wait) Execute(ctx context.Context, env *shell.Env, args []string, opts shell.Options) error {
	if len(args) != 1 {
		return shell.Failf(shell.ExitUsage, "expected one argument")
	}
	d, ok := parseSeconds(args[0])
	if !ok {
		return shell.Failf(shell.ExitFailure, "invalid delay seconds '%s'", args[0])
	}
	return sleep(ctx, d)
}

// Test prints a value repeatedly with a delay in between
type Test struct{}

func (*Test) Name() string {
	return "test"
}

func (*Test) Syntax() string {
	return "[-n|--no-newline] <value> [<repeat> [<delay>]]"
}

func (*Test) Help() string {
	return "print value repeat times (default 1), waiting delay seconds in between"
}

func (*Test) Options() []shell.OptionSpec {
	return []shell.OptionSpec{{Long: "no-newline", Short: 'n'}}
}

func (*Test) Execute(ctx context.Context, env *shell.Env, args []string, opts shell.Options) error {
	if len(args) < 1 || len(args) > 3 {
		return shell.Failf(shell.ExitUsage, "invalid arguments")
	}
	repeat := 1
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return shell.Failf(shell.ExitUsage, "invalid repeat count '%s'", args[1])
		}
		repeat = n
	}
	var delay time.Duration
	if len(args) > 2 {
		d, ok := parseSeconds(args[2])
		if !ok {
			return shell.Failf(shell.ExitUsage, "invalid delay seconds '%s'", args[2])
		}
		delay = d
	}

	value := args[0]
	if !opts.Has("no-newline") {
		value += "\n"
	}
	for i := range repeat {
		if i > 0 {
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(env.Stdout, value); err != nil {
			return err
		}
	}
	return nil
}
