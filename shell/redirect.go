package shell

import "fmt"

// Redirections of one stage. Dups holds "1>&2" and "2>&1" in the order
// they were given.
type Redirections struct {
	Stdin  string
	Stdout string
	Stderr string
	Dups   []string
}

// Empty reports whether no redirection was given
func (r Redirections) Empty() bool {
	return r.Stdin == "" && r.Stdout == "" && r.Stderr == "" && len(r.Dups) == 0
}

// extractRedirections removes redirection operators and their paths from
// tokens. The last occurrence of each file redirection wins.
func extractRedirections(tokens []Token) ([]string, Redirections, error) {
	var r Redirections
	args := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if !t.Op {
			args = append(args, t.Text)
			continue
		}
		switch t.Text {
		case "1>&2", "2>&1":
			r.Dups = append(r.Dups, t.Text)
			continue
		}
		if i+1 >= len(tokens) || tokens[i+1].Op || tokens[i+1].Text == "" {
			return args, r, fmt.Errorf("%w: missing path after %s", ErrRedirect, t.Text)
		}
		path := tokens[i+1].Text
		i++
		switch t.Text {
		case "<":
			r.Stdin = path
		case ">", "1>":
			r.Stdout = path
		case "2>":
			r.Stderr = path
		default:
			return args, r, fmt.Errorf("%w: unexpected %s", ErrRedirect, t.Text)
		}
	}
	return args, r, nil
}
