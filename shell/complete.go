package shell

import (
	"context"
	"slices"
	"strings"
)

var fileRedirects = []string{"<", ">", "1>", "2>"}

// Complete returns the candidates for the word at the end of line along
// with that word as typed. Candidates are whole words, escaped so the
// tokenizer reads them back unchanged.
func (sh *Shell) Complete(ctx context.Context, line string) ([]string, string) {
	l := &lexer{line: line, lastExit: sh.LastExit(), keepLast: true}
	l.run()
	raw, word := "", ""
	if l.inToken {
		raw, word = line[l.start:], l.buf.String()
	}

	tokens := l.tokens
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Op && tokens[i].Text == "|" {
			tokens = tokens[i+1:]
			break
		}
	}

	cands := sh.complete(ctx, tokens, word)
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, escapeWord(c))
	}
	return out, raw
}

func (sh *Shell) complete(ctx context.Context, tokens []Token, word string) []string {
	if len(tokens) == 0 {
		return sh.completeCommand(word)
	}
	if last := tokens[len(tokens)-1]; last.Op && slices.Contains(fileRedirects, last.Text) {
		return sh.CompletePath(ctx, word, false)
	}

	tokens, _ = sh.aliases.expand(tokens)
	if tokens[0].Op {
		return nil
	}
	cmd, ok := sh.commands.Lookup(tokens[0].Text)
	if !ok {
		return nil
	}
	specs := cmd.Options()
	opts, rest := parseOptions(specs, tokens[1:])
	inOptions := len(rest) == 0 && !slices.ContainsFunc(tokens[1:], func(t Token) bool {
		return !t.Op && t.Text == "--"
	})
	if inOptions {
		if long, ok := strings.CutPrefix(word, "--"); ok {
			return completeLong(specs, newOptions(opts), long)
		}
		if strings.HasPrefix(word, "-") {
			return completeShort(specs, newOptions(opts), word)
		}
	}

	if c, ok := cmd.(Completer); ok {
		args, _, _ := extractRedirections(rest)
		return c.Complete(ctx, sh, args, word)
	}
	return nil
}

// completeCommand matches command names, aliases and exit by prefix
func (sh *Shell) completeCommand(prefix string) []string {
	names := append(sh.commands.Names(), sh.aliases.Names()...)
	names = append(names, "exit")
	slices.Sort(names)
	names = slices.Compact(names)
	return slices.DeleteFunc(names, func(n string) bool {
		return !strings.HasPrefix(n, prefix)
	})
}

func completeLong(specs []OptionSpec, used Options, prefix string) []string {
	var out []string
	for _, s := range specs {
		if !used.Has(s.Long) && strings.HasPrefix(s.Long, prefix) {
			out = append(out, "--"+s.Long)
		}
	}
	return out
}

// completeShort appends each unused short option to word
func completeShort(specs []OptionSpec, used Options, word string) []string {
	var out []string
	for _, s := range specs {
		if s.Short == 0 || used.Has(s.Long) || strings.ContainsRune(word[1:], s.Short) {
			continue
		}
		out = append(out, word+string(s.Short))
	}
	return out
}

// CompletePath completes word as a VFS path relative to the working
// directory. The last segment is a literal prefix. Directories end in "/".
func (sh *Shell) CompletePath(ctx context.Context, word string, dirsOnly bool) []string {
	if word == "~" {
		return []string{"~/"}
	}
	dir, base := "", word
	if i := strings.LastIndex(word, "/"); i >= 0 {
		dir, base = word[:i+1], word[i+1:]
	}
	parent := "."
	switch dir {
	case "":
	case "/":
		parent = "/"
	default:
		parent = strings.TrimSuffix(dir, "/")
	}
	pdir, err := sh.fs.Directory(ctx, parent, sh.user, sh.Cwd())
	if err != nil {
		return nil
	}
	children, err := pdir.List(ctx)
	if err != nil {
		return nil
	}
	var out []string
	for _, n := range children {
		if !strings.HasPrefix(n.Name(), base) {
			continue
		}
		switch {
		case n.IsDir():
			out = append(out, dir+n.Name()+"/")
		case !dirsOnly:
			out = append(out, dir+n.Name())
		}
	}
	slices.Sort(out)
	return out
}

// escapeWord backslash-escapes the bytes the tokenizer treats specially
func escapeWord(w string) string {
	if !strings.ContainsAny(w, " \t'\"\\|<>$") {
		return w
	}
	var b strings.Builder
	for i := 0; i < len(w); i++ {
		if strings.IndexByte(" \t'\"\\|<>$", w[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(w[i])
	}
	return b.String()
}
