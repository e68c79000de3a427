package filesystem

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/brettbedarf/vfsh"
	"github.com/brettbedarf/vfsh/internal/util"
	"github.com/spf13/afero"
)

// hostRef ties a node to a path on a host filesystem
type hostRef struct {
	fs      afero.Fs
	path    string
	root    string   // mount base, for exclude matching
	exclude []string // doublestar patterns relative to root
}

// NewHostDirectory creates a directory mirroring path on fs. Its children are
// reconciled with the host listing before every query.
func NewHostDirectory(name string, fs afero.Fs, path string, exclude []string) *Node {
	n := NewDirectory(name)
	n.host = &hostRef{fs: fs, path: path, root: path, exclude: exclude}
	if fi, err := fs.Stat(path); err == nil {
		n.stat = statFromFileInfo(fi)
	}
	return n
}

func (h *hostRef) child(name string) *hostRef {
	return &hostRef{fs: h.fs, path: filepath.Join(h.path, name), root: h.root, exclude: h.exclude}
}

func (h *hostRef) excluded(path string) bool {
	rel, err := filepath.Rel(h.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range h.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// mirrorable skips symlinks, devices, sockets and pipes
func mirrorable(mode os.FileMode) bool {
	return mode.IsDir() || mode.IsRegular()
}

func (h *hostRef) newNode(name string, fi os.FileInfo) *Node {
	ref := h.child(name)
	var n *Node
	if fi.IsDir() {
		n = NewDirectory(name)
	} else {
		n = NewExternalFile(name, &hostFile{fs: ref.fs, path: ref.path})
	}
	n.host = ref
	n.stat = statFromFileInfo(fi)
	return n
}

// Refresh reconciles a mirrored directory with its host listing. Entries
// still present keep their identity; other nodes are left alone.
func (n *Node) Refresh(ctx context.Context) error {
	if n.host == nil || n.kind != KindDirectory {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := util.GetLogger("Node.Refresh")

	// afero.ReadDir returns entries sorted by name
	infos, err := afero.ReadDir(n.host.fs, n.host.path)
	if err != nil {
		logger.Debug().Err(err).Str("host", n.host.path).Msg("Failed to read host directory")
		return &PathError{Op: "refresh", Path: n.FullName(), Err: err}
	}
	want := make([]string, 0, len(infos))
	byName := make(map[string]os.FileInfo, len(infos))
	for _, fi := range infos {
		if !mirrorable(fi.Mode()) || n.host.excluded(filepath.Join(n.host.path, fi.Name())) {
			continue
		}
		want = append(want, fi.Name())
		byName[fi.Name()] = fi
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	have := make([]string, len(n.children))
	for i, c := range n.children {
		have[i] = c.name
	}
	edits := DiffSorted(have, want)
	for _, e := range edits {
		switch e.Op {
		case EditInsert:
			n.insertChildLocked(e.Index, n.host.newNode(e.Name, byName[e.Name]))
		case EditRemove:
			n.removeChildLocked(e.Index)
		}
	}
	replaced := 0
	for i, c := range n.children {
		fi, ok := byName[c.name]
		if !ok {
			continue
		}
		if fi.IsDir() != c.IsDir() {
			// a file became a directory or the reverse: a new entry under the old name
			repl := n.host.newNode(c.name, fi)
			repl.parent = n
			n.children[i] = repl
			replaced++
			continue
		}
		c.setStat(statFromFileInfo(fi))
	}
	if len(edits) > 0 || replaced > 0 {
		logger.Trace().Str("path", n.FullName()).Int("edits", len(edits)).Int("replaced", replaced).
			Msg("Refreshed mirrored directory")
	}
	return nil
}

// createHostFile creates or truncates name in a mirrored directory and
// refreshes the listing so the new node is visible
func (n *Node) createHostFile(ctx context.Context, name string) (io.WriteCloser, error) {
	if n.host == nil {
		return nil, &PathError{Op: "create", Path: joinPath(n.FullName(), name), Err: ErrNotSupported}
	}
	ref := n.host.child(name)
	if n.host.excluded(ref.path) {
		return nil, &PathError{Op: "create", Path: joinPath(n.FullName(), name), Err: ErrNotSupported}
	}
	wc, err := (&hostFile{fs: ref.fs, path: ref.path}).Create(ctx)
	if err != nil {
		return nil, &PathError{Op: "create", Path: joinPath(n.FullName(), name), Err: err}
	}
	if err := n.Refresh(ctx); err != nil {
		wc.Close()
		return nil, err
	}
	return wc, nil
}

// hostFile implements [vfsh.FileAdapter] over an afero filesystem
type hostFile struct {
	fs   afero.Fs
	path string
}

func (f *hostFile) Open(ctx context.Context) (io.ReadCloser, error) {
	return f.fs.Open(f.path)
}

func (f *hostFile) Create(ctx context.Context) (io.WriteCloser, error) {
	return f.fs.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
}

func (f *hostFile) Writable() bool {
	return true
}

func (f *hostFile) GetMeta(ctx context.Context) (*vfsh.FileMetadata, error) {
	fi, err := f.fs.Stat(f.path)
	if err != nil {
		return nil, err
	}
	mtime := fi.ModTime()
	return &vfsh.FileMetadata{Size: fi.Size(), LastModified: &mtime}, nil
}

var _ vfsh.FileAdapter = (*hostFile)(nil)
