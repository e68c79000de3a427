package filesystem

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/brettbedarf/vfsh"
	"github.com/brettbedarf/vfsh/config"
	"github.com/brettbedarf/vfsh/internal/util"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/spf13/afero"
)

// FileSystem owns one VFS tree. Every shell session gets its own instance.
type FileSystem struct {
	root    *Node
	started time.Time
	globs   *xsync.Map[string, *regexp.Regexp] // compiled wildcard segments
}

// New creates a filesystem holding only an empty root directory
func New() *FileSystem {
	return &FileSystem{
		root:    NewDirectory(""),
		started: time.Now(),
		globs:   xsync.NewMap[string, *regexp.Regexp](),
	}
}

// NewFS builds the standard tree: /sys, the configured host mounts and the
// user's home directory. hostFs backs the mounts; nil means the OS.
func NewFS(cfg *config.Config, hostFs afero.Fs) (*FileSystem, error) {
	logger := util.GetLogger("NewFS")
	if hostFs == nil {
		hostFs = afero.NewOsFs()
	}

	fs := New()
	if err := fs.addSysNodes(); err != nil {
		return nil, err
	}
	for _, m := range cfg.Mounts {
		if err := fs.Mount(NewHostDirectory(m.Name, hostFs, m.Path, m.Exclude)); err != nil {
			return nil, fmt.Errorf("mount %s: %w", m.Name, err)
		}
		logger.Debug().Str("name", m.Name).Str("host", m.Path).Msg("Mounted host directory")
	}
	if home := cfg.User.Home; strings.HasPrefix(home, "/") && home != "/" {
		if _, err := fs.AddDirNode(&vfsh.DirCreateRequest{NodeRequest: vfsh.NodeRequest{
			Path:     home,
			Type:     vfsh.DirNodeType,
			Perms:    0o755,
			OwnerUID: uint32(cfg.User.UID),
			OwnerGID: uint32(cfg.User.GID),
		}}); err != nil {
			logger.Warn().Err(err).Str("home", home).Msg("Failed to create home directory")
		}
	}
	return fs, nil
}

func (fs *FileSystem) Root() *Node {
	return fs.root
}

// Mount attaches n at the root
func (fs *FileSystem) Mount(n *Node) error {
	return fs.root.AddChild(n)
}

func (fs *FileSystem) addSysNodes() error {
	sys := NewDirectory("sys")
	if err := fs.root.AddChild(sys); err != nil {
		return err
	}
	version := NewDynamicFile("version", func(ctx context.Context) (string, error) {
		return fmt.Sprintf("vfsh %s\nstarted %s\n%s\n",
			vfsh.Version, fs.started.Format(time.RFC3339), runtime.Version()), nil
	})
	uptime := NewDynamicFile("uptime", func(ctx context.Context) (string, error) {
		return time.Since(fs.started).Truncate(time.Second).String() + "\n", nil
	})
	for _, n := range []*Node{version, uptime} {
		if err := sys.AddChild(n); err != nil {
			return err
		}
	}
	return nil
}

// AddDirNode adds all missing directories in the request's path starting at
// the root and returns the leaf, like `mkdir -p`. Existing directories are
// reused; a file in the way is an error.
func (fs *FileSystem) AddDirNode(req *vfsh.DirCreateRequest) (*Node, error) {
	logger := util.GetLogger("FS.AddDirNode")

	cur := fs.root
	newCnt := 0
	for name := range strings.SplitSeq(strings.Trim(req.Path, "/"), "/") {
		if name == "" || name == "." {
			continue
		}
		if child, ok := cur.Child(name); ok {
			if !child.IsDir() {
				return nil, &PathError{Op: "mkdir", Path: req.Path, Err: ErrNotDirectory}
			}
			cur = child
			continue
		}
		dir := NewDirectory(name)
		dir.stat = statFromRequest(&req.NodeRequest, dir.stat)
		if err := cur.AddChild(dir); err != nil {
			return nil, err
		}
		newCnt++
		cur = dir
	}
	if newCnt > 0 {
		logger.Debug().Str("path", req.Path).Int("created", newCnt).Msg("Created directories")
	}
	return cur, nil
}

// AddFileNode adds a file node, creating missing parent directories. Content
// makes a static file; otherwise the highest priority source backs an
// external file. An existing node at the path is an error.
func (fs *FileSystem) AddFileNode(req *vfsh.FileCreateRequest) (*Node, error) {
	logger := util.GetLogger("FS.AddFileNode")

	dirPath, name := path.Split(strings.TrimLeft(req.Path, "/"))
	if name == "" {
		return nil, fmt.Errorf("file request without a name: %q", req.Path)
	}
	parent := fs.root
	if dirPath != "" {
		dirReq := vfsh.DirCreateRequest{NodeRequest: req.NodeRequest}
		dirReq.Path = dirPath
		dirReq.Perms = 0o755
		dNode, err := fs.AddDirNode(&dirReq)
		if err != nil {
			logger.Error().Err(err).Str("path", dirPath).Msg("Failed to create file's ancestor directory(s)")
			return nil, err
		}
		parent = dNode
	}

	var node *Node
	switch {
	case req.Content != nil:
		node = NewStaticFile(name, *req.Content)
	case len(req.Sources) > 0:
		sources := slices.Clone(req.Sources)
		slices.SortStableFunc(sources, func(a, b vfsh.FileSource) int { return cmp.Compare(a.Priority, b.Priority) })
		node = NewExternalFile(name, sources[0].FileAdapter)
	default:
		return nil, fmt.Errorf("no content or valid sources for %s", req.Path)
	}
	size := node.stat.Size
	node.stat = statFromRequest(&req.NodeRequest, node.stat)
	node.stat.Size = size

	if err := parent.AddChild(node); err != nil {
		logger.Debug().Err(err).Str("path", req.Path).Msg("Failed to add file")
		return nil, err
	}
	logger.Debug().Str("path", req.Path).Str("kind", node.kind.String()).Msg("Added new file node")
	return node, nil
}

// statFromRequest applies the request's metadata on top of base
func statFromRequest(req *vfsh.NodeRequest, base Stat) Stat {
	st := base
	if req.Perms != 0 {
		st.Mode = base.Mode.Type() | (os.FileMode(req.Perms) & os.ModePerm)
	}
	st.UID = int(req.OwnerUID)
	st.GID = int(req.OwnerGID)
	if !req.Atime.IsZero() {
		st.Atime = req.Atime
	}
	if !req.Mtime.IsZero() {
		st.Mtime = req.Mtime
	}
	if !req.Ctime.IsZero() {
		st.Ctime = req.Ctime
		st.Birthtime = req.Ctime
	}
	return st
}
