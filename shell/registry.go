package shell

import (
	"fmt"
	"slices"

	"github.com/puzpuzpuz/xsync/v4"
)

// Registry holds the commands a shell can dispatch to, keyed by name
type Registry struct {
	commands *xsync.Map[string, Command]
}

func NewRegistry() *Registry {
	return &Registry{commands: xsync.NewMap[string, Command]()}
}

// Register adds cmd. The first command registered under a name wins.
func (r *Registry) Register(cmd Command) error {
	if _, loaded := r.commands.LoadOrStore(cmd.Name(), cmd); loaded {
		return fmt.Errorf("command %s already registered", cmd.Name())
	}
	return nil
}

func (r *Registry) Lookup(name string) (Command, bool) {
	return r.commands.Load(name)
}

// Names returns the registered command names sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, r.commands.Size())
	r.commands.Range(func(name string, _ Command) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}
