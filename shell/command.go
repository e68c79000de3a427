package shell

import (
	"context"
	"io"
	"slices"
)

// Command is a builtin the shell can dispatch to
type Command interface {
	Name() string
	// Syntax is the one-line usage shown by help, without the name
	Syntax() string
	Help() string
	Options() []OptionSpec
	// Execute runs the command. A nil error is exit code 0; use
	// [ExitError] for other codes.
	Execute(ctx context.Context, env *Env, args []string, opts Options) error
}

// Completer is implemented by commands that complete their own arguments.
// args are the arguments before the word being completed.
type Completer interface {
	Complete(ctx context.Context, sh *Shell, args []string, partial string) []string
}

// OptionSpec declares one option of a command
type OptionSpec struct {
	Long   string
	Short  rune // 0 for none
	ArgCnt int  // arguments consumed after the option
}

// Option is one parsed option occurrence
type Option struct {
	Name  string // long name of the matched spec, or the raw text when unknown
	Short rune
	Args  []string
	Valid bool
}

// Options maps the long name of every valid option given to its occurrence.
// A repeated option keeps the last one.
type Options map[string]Option

func newOptions(opts []Option) Options {
	m := make(Options, len(opts))
	for _, o := range opts {
		if o.Valid {
			m[o.Name] = o
		}
	}
	return m
}

func (o Options) Has(name string) bool {
	_, ok := o[name]
	return ok
}

// Arg returns the first argument of the named option
func (o Options) Arg(name string) (string, bool) {
	opt, ok := o[name]
	if !ok || len(opt.Args) == 0 {
		return "", false
	}
	return opt.Args[0], true
}

func findLong(specs []OptionSpec, long string) (OptionSpec, bool) {
	i := slices.IndexFunc(specs, func(s OptionSpec) bool { return s.Long == long })
	if i < 0 {
		return OptionSpec{}, false
	}
	return specs[i], true
}

func findShort(specs []OptionSpec, short rune) (OptionSpec, bool) {
	i := slices.IndexFunc(specs, func(s OptionSpec) bool { return s.Short != 0 && s.Short == short })
	if i < 0 {
		return OptionSpec{}, false
	}
	return specs[i], true
}

// Env is the per-stage environment handed to a command
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Shell  *Shell
}
