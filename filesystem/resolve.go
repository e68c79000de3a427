package filesystem

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/brettbedarf/vfsh"
	"github.com/brettbedarf/vfsh/internal/util"
)

// Resolve returns every node matching path. Absolute paths start at the
// root, "~" and "~/..." at the user's home, anything else at start (the root
// when start is nil). An empty path yields start itself.
func (fs *FileSystem) Resolve(ctx context.Context, path string, user *vfsh.User, start *Node) ([]*Node, error) {
	logger := util.GetLogger("FS.Resolve")

	dir, rest := fs.origin(ctx, path, user, start)
	nodes, err := fs.resolveIn(ctx, dir, rest)
	if err != nil {
		logger.Trace().Str("path", path).Err(err).Msg("Resolution failed")
		var pe *PathError
		if errors.As(err, &pe) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &PathError{Op: "resolve", Path: path, Err: err}
	}
	return nodes, nil
}

// origin picks the directory resolution starts from and the remaining path
func (fs *FileSystem) origin(ctx context.Context, path string, user *vfsh.User, start *Node) (*Node, string) {
	switch {
	case strings.HasPrefix(path, "/"):
		return fs.root, strings.TrimLeft(path, "/")
	case path == "~":
		return fs.HomeDirectory(ctx, user), ""
	case strings.HasPrefix(path, "~/"):
		return fs.HomeDirectory(ctx, user), strings.TrimLeft(path[2:], "/")
	case start == nil:
		return fs.root, path
	default:
		return start, path
	}
}

func (fs *FileSystem) resolveIn(ctx context.Context, dir *Node, path string) ([]*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if path == "" {
		return []*Node{dir}, nil
	}
	seg, rest, _ := strings.Cut(path, "/")
	rest = strings.TrimLeft(rest, "/")

	switch seg {
	case ".":
		return fs.resolveIn(ctx, dir, rest)
	case "..":
		parent := dir.Parent()
		if parent == nil {
			return nil, ErrNotFound
		}
		return fs.resolveIn(ctx, parent, rest)
	}

	if !dir.IsDir() {
		return nil, ErrNotFound
	}
	match, err := fs.segmentMatcher(seg)
	if err != nil {
		return nil, err
	}
	children, err := dir.List(ctx)
	if err != nil {
		return nil, err
	}
	var matches []*Node
	for _, c := range children {
		if match(c.name) {
			matches = append(matches, c)
		}
	}

	switch {
	case len(matches) > 0 && rest == "":
		return matches, nil
	case len(matches) == 1 && matches[0].IsDir():
		return fs.resolveIn(ctx, matches[0], rest)
	default:
		// nothing matched, ambiguous descent, or a file with a suffix left
		return nil, ErrNotFound
	}
}

// Lookup resolves path to exactly one node
func (fs *FileSystem) Lookup(ctx context.Context, path string, user *vfsh.User, start *Node) (*Node, error) {
	nodes, err := fs.Resolve(ctx, path, user, start)
	if err != nil {
		return nil, err
	}
	if len(nodes) > 1 {
		return nil, &PathError{Op: "lookup", Path: path, Err: ErrAmbiguous}
	}
	return nodes[0], nil
}

// Directory resolves path to exactly one directory
func (fs *FileSystem) Directory(ctx context.Context, path string, user *vfsh.User, start *Node) (*Node, error) {
	n, err := fs.Lookup(ctx, path, user, start)
	if err != nil {
		return nil, err
	}
	if !n.IsDir() {
		return nil, &PathError{Op: "lookup", Path: path, Err: ErrNotDirectory}
	}
	return n, nil
}

// HomeDirectory returns the user's home, falling back to the root when it
// does not resolve to a directory
func (fs *FileSystem) HomeDirectory(ctx context.Context, user *vfsh.User) *Node {
	if user == nil || user.Home == "" || !strings.HasPrefix(user.Home, "/") {
		return fs.root
	}
	dir, err := fs.Directory(ctx, user.Home, nil, fs.root)
	if err != nil {
		logger := util.GetLogger("FS.HomeDirectory")
		logger.Debug().Str("user", user.Name).Str("home", user.Home).Err(err).
			Msg("Home not found, using root")
		return fs.root
	}
	return dir
}

// OpenReader opens the single node at path for reading
func (fs *FileSystem) OpenReader(ctx context.Context, path string, user *vfsh.User, start *Node) (io.ReadCloser, error) {
	n, err := fs.Lookup(ctx, path, user, start)
	if err != nil {
		return nil, err
	}
	return n.Open(ctx)
}

// OpenWriter opens the single node at path for writing, replacing its
// content. A missing final segment is created when its parent directory is
// mirrored from the host.
func (fs *FileSystem) OpenWriter(ctx context.Context, path string, user *vfsh.User, start *Node) (io.WriteCloser, error) {
	n, err := fs.Lookup(ctx, path, user, start)
	if err == nil {
		return n.Create(ctx)
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	dirPath, name := splitLast(path)
	if name == "" || name == "." || name == ".." || HasGlob(name) {
		return nil, err
	}
	parent, perr := fs.Directory(ctx, dirPath, user, start)
	if perr != nil {
		return nil, err
	}
	return parent.createHostFile(ctx, name)
}

// splitLast splits path before its last segment, keeping "/" for
// top level absolute paths
func splitLast(path string) (dir, name string) {
	path = strings.TrimRight(path, "/")
	i := strings.LastIndex(path, "/")
	switch {
	case i < 0:
		return "", path
	case i == 0:
		return "/", path[1:]
	default:
		return path[:i], path[i+1:]
	}
}
