package shell

import (
	"fmt"
	"strings"
)

// ParsedCommand is the parse result of one pipeline stage
type ParsedCommand struct {
	Name     string // command word after alias expansion
	Alias    string // the alias that was expanded, if any
	Command  Command
	Options  []Option
	Args     []string
	Redirect Redirections
	Valid    bool
	Err      error // first problem found when not Valid
}

// parseStage resolves the command of one stage and splits its tokens into
// options, positional arguments and redirections
func (sh *Shell) parseStage(tokens []Token) *ParsedCommand {
	tokens, alias := sh.aliases.expand(tokens)
	pc := &ParsedCommand{Alias: alias}
	if len(tokens) == 0 || tokens[0].Op {
		pc.Err = fmt.Errorf("%w: missing command", ErrRedirect)
		return pc
	}
	pc.Name = tokens[0].Text

	var specs []OptionSpec
	if cmd, ok := sh.commands.Lookup(pc.Name); ok {
		pc.Command = cmd
		specs = cmd.Options()
	}

	rest := tokens[1:]
	pc.Options, rest = parseOptions(specs, rest)
	args, redirect, rerr := extractRedirections(rest)
	pc.Args, pc.Redirect = args, redirect

	switch {
	case pc.Command == nil:
		pc.Err = ErrUnknownCommand
	case invalidOption(pc.Options) != nil:
		pc.Err = invalidOption(pc.Options)
	case rerr != nil:
		pc.Err = rerr
	default:
		pc.Valid = true
	}
	return pc
}

// parseOptions consumes the leading option tokens. Parsing stops at the
// first operand, at "-" or after "--".
func parseOptions(specs []OptionSpec, tokens []Token) ([]Option, []Token) {
	var opts []Option
	i := 0
	for i < len(tokens) {
		t := tokens[i]
		if t.Op || !strings.HasPrefix(t.Text, "-") || t.Text == "-" {
			break
		}
		if t.Text == "--" {
			i++
			break
		}
		i++

		if long, ok := strings.CutPrefix(t.Text, "--"); ok {
			spec, found := findLong(specs, long)
			if !found {
				opts = append(opts, Option{Name: long})
				continue
			}
			opt, n := takeArgs(spec, tokens[i:])
			opts = append(opts, opt)
			i += n
			continue
		}

		for _, short := range t.Text[1:] {
			spec, found := findShort(specs, short)
			if !found {
				opts = append(opts, Option{Name: string(short), Short: short})
				continue
			}
			opt, n := takeArgs(spec, tokens[i:])
			opt.Short = short
			opts = append(opts, opt)
			i += n
		}
	}
	return opts, tokens[i:]
}

// takeArgs consumes exactly spec.ArgCnt words for an option. A shortfall
// leaves the option invalid and consumes nothing.
func takeArgs(spec OptionSpec, rest []Token) (Option, int) {
	opt := Option{Name: spec.Long}
	if spec.ArgCnt == 0 {
		opt.Valid = true
		return opt, 0
	}
	if len(rest) < spec.ArgCnt {
		return opt, 0
	}
	for _, t := range rest[:spec.ArgCnt] {
		if t.Op {
			return opt, 0
		}
	}
	opt.Args = words(rest[:spec.ArgCnt])
	opt.Valid = true
	return opt, spec.ArgCnt
}

func invalidOption(opts []Option) error {
	for _, o := range opts {
		if o.Valid {
			continue
		}
		if o.Short != 0 {
			return fmt.Errorf("%w -%c", ErrInvalidOption, o.Short)
		}
		return fmt.Errorf("%w --%s", ErrInvalidOption, o.Name)
	}
	return nil
}
