package filesystem

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/brettbedarf/vfsh"
)

// Kind tags the node variant
type Kind uint8

const (
	KindDirectory Kind = iota
	KindStaticFile
	KindDynamicFile
	KindExternalFile
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindStaticFile:
		return "static file"
	case KindDynamicFile:
		return "dynamic file"
	case KindExternalFile:
		return "external file"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ContentFunc produces a dynamic file's content on every read
type ContentFunc func(ctx context.Context) (string, error)

// Node is a VFS entry. Only the fields of its Kind are populated.
type Node struct {
	name   string // immutable
	parent *Node  // set once when attached
	kind   Kind   // immutable

	mu       sync.RWMutex // Protects the fields below
	stat     Stat
	children []*Node // KindDirectory, listing order

	content  string           // KindStaticFile
	generate ContentFunc      // KindDynamicFile
	adapter  vfsh.FileAdapter // KindExternalFile
	host     *hostRef         // set on OS mirrored nodes
}

// NewDirectory creates an empty, unattached directory
func NewDirectory(name string) *Node {
	return &Node{
		name: name,
		kind: KindDirectory,
		stat: newStat(os.ModeDir|0o755, -1),
	}
}

// NewStaticFile creates a read-only file holding content
func NewStaticFile(name, content string) *Node {
	return &Node{
		name:    name,
		kind:    KindStaticFile,
		stat:    newStat(0o444, int64(len(content))),
		content: content,
	}
}

// NewDynamicFile creates a read-only file whose content is generated per read
func NewDynamicFile(name string, fn ContentFunc) *Node {
	return &Node{
		name:     name,
		kind:     KindDynamicFile,
		stat:     newStat(0o444, -1),
		generate: fn,
	}
}

// NewExternalFile creates a file backed by adapter
func NewExternalFile(name string, adapter vfsh.FileAdapter) *Node {
	perm := os.FileMode(0o444)
	if adapter.Writable() {
		perm = 0o644
	}
	return &Node{
		name:    name,
		kind:    KindExternalFile,
		stat:    newStat(perm, -1),
		adapter: adapter,
	}
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) Kind() Kind {
	return n.kind
}

// Parent returns nil for the root and for unattached nodes
func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) IsDir() bool {
	return n.kind == KindDirectory
}

func (n *Node) IsRoot() bool {
	return n.parent == nil && n.kind == KindDirectory
}

// Stat returns a metadata snapshot
func (n *Node) Stat() Stat {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.stat
}

func (n *Node) setStat(st Stat) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stat = st
}

// FullName joins names from the root down to this node
func (n *Node) FullName() string {
	if n.parent == nil {
		if n.kind == KindDirectory {
			return "/"
		}
		return n.name
	}
	var parts []string
	for cur := n; cur.parent != nil; cur = cur.parent {
		parts = append(parts, cur.name)
	}
	slices.Reverse(parts)
	return "/" + strings.Join(parts, "/")
}

// HostPath returns the OS path of a mirrored node, or "" for pure VFS nodes
func (n *Node) HostPath() string {
	if n.host == nil {
		return ""
	}
	return n.host.path
}

// CanRead reports whether Open can succeed
func (n *Node) CanRead() bool {
	switch n.kind {
	case KindStaticFile, KindDynamicFile, KindExternalFile:
		return true
	default:
		return false
	}
}

// CanWrite reports whether Create can succeed
func (n *Node) CanWrite() bool {
	return n.kind == KindExternalFile && n.adapter.Writable()
}

// CanList reports whether the node has children
func (n *Node) CanList() bool {
	return n.kind == KindDirectory
}

// Children returns a snapshot of the children without refreshing
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.children)
}

// List refreshes mirrored directories and returns a snapshot of the children
func (n *Node) List(ctx context.Context) ([]*Node, error) {
	if !n.CanList() {
		return nil, &PathError{Op: "list", Path: n.FullName(), Err: ErrNotDirectory}
	}
	if err := n.Refresh(ctx); err != nil {
		return nil, err
	}
	return n.Children(), nil
}

// Child returns the direct child named name
func (n *Node) Child(name string) (*Node, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.childLocked(name)
}

func (n *Node) childLocked(name string) (*Node, bool) {
	for _, c := range n.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// AddChild appends child to the listing and makes n its parent.
// Mirrored directories manage their own children and reject it.
func (n *Node) AddChild(child *Node) error {
	if !n.IsDir() {
		return &PathError{Op: "add", Path: n.FullName(), Err: ErrNotDirectory}
	}
	if n.host != nil {
		return &PathError{Op: "add", Path: n.FullName(), Err: ErrNotSupported}
	}
	if child.parent != nil {
		return fmt.Errorf("node %q already attached to %s", child.name, child.parent.FullName())
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.childLocked(child.name); ok {
		return &PathError{Op: "add", Path: joinPath(n.FullName(), child.name), Err: ErrExists}
	}
	n.insertChildLocked(len(n.children), child)
	return nil
}

// RemoveChild detaches the child named name. The detached node keeps its
// parent link so its FullName stays printable.
func (n *Node) RemoveChild(name string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, c := range n.children {
		if c.name == name {
			n.removeChildLocked(i)
			return true
		}
	}
	return false
}

// insertChildLocked places child at index i.
// Caller must hold n.mu.Lock().
func (n *Node) insertChildLocked(i int, child *Node) {
	child.parent = n
	n.children = slices.Insert(n.children, i, child)
}

// Caller must hold n.mu.Lock().
func (n *Node) removeChildLocked(i int) *Node {
	child := n.children[i]
	n.children = slices.Delete(n.children, i, i+1)
	return child
}

func joinPath(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}
