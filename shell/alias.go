package shell

import (
	"fmt"
	"slices"
	"strings"

	"github.com/puzpuzpuz/xsync/v4"
)

// Aliases maps an alias name to the words replacing it. Expansion is not
// recursive.
type Aliases struct {
	m *xsync.Map[string, []string]
}

func NewAliases() *Aliases {
	return &Aliases{m: xsync.NewMap[string, []string]()}
}

// Set defines or replaces an alias. An expansion starting with "alias" or
// with another alias is rejected.
func (a *Aliases) Set(name string, expansion []string) error {
	if name == "" || strings.ContainsAny(name, " \t/|<>") {
		return fmt.Errorf("invalid alias name %q", name)
	}
	if len(expansion) == 0 || expansion[0] == "" {
		return fmt.Errorf("empty expansion for alias %s", name)
	}
	if expansion[0] == "alias" {
		return ErrAliasForAlias
	}
	if _, ok := a.m.Load(expansion[0]); ok {
		return ErrAliasForAlias
	}
	a.m.Store(name, slices.Clone(expansion))
	return nil
}

// Delete removes an alias and reports whether it existed
func (a *Aliases) Delete(name string) bool {
	_, ok := a.m.LoadAndDelete(name)
	return ok
}

func (a *Aliases) Get(name string) ([]string, bool) {
	exp, ok := a.m.Load(name)
	if !ok {
		return nil, false
	}
	return slices.Clone(exp), true
}

// Names returns all alias names sorted
func (a *Aliases) Names() []string {
	names := make([]string, 0, a.m.Size())
	a.m.Range(func(name string, _ []string) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}

// expand rewrites the first word when it names an alias
func (a *Aliases) expand(tokens []Token) ([]Token, string) {
	if len(tokens) == 0 || tokens[0].Op {
		return tokens, ""
	}
	exp, ok := a.m.Load(tokens[0].Text)
	if !ok {
		return tokens, ""
	}
	out := make([]Token, 0, len(exp)+len(tokens)-1)
	for _, w := range exp {
		out = append(out, Token{Text: w})
	}
	return append(out, tokens[1:]...), tokens[0].Text
}
