// Package server exports a VFS tree through FUSE
package server

import (
	"context"
	"errors"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/brettbedarf/vfsh/config"
	"github.com/brettbedarf/vfsh/filesystem"
	"github.com/brettbedarf/vfsh/internal/util"
)

// Export is a mounted read-only view of a VFS tree
type Export struct {
	server     *fuse.Server
	mountPoint string
}

// Mount exports vfs at mountPoint and returns once the kernel has the mount.
func Mount(vfs *filesystem.FileSystem, mountPoint string, opts config.ExportOptions) (*Export, error) {
	logger := util.GetLogger("Export.Mount")

	ttl := config.ExportAttrTTL
	root := &exportNode{node: vfs.Root()}
	srv, err := fs.Mount(mountPoint, root, &fs.Options{
		MountOptions: fuse.MountOptions{
			Name:    opts.Name,
			FsName:  opts.FsName,
			Debug:   opts.Debug,
			Options: []string{"ro"},
			Logger:  util.NewLogLogger("FuseServer", util.DebugLevel),
		},
		EntryTimeout: &ttl,
		AttrTimeout:  &ttl,
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("mountPoint", mountPoint).Msg("VFS exported")
	return &Export{server: srv, mountPoint: mountPoint}, nil
}

func (e *Export) MountPoint() string {
	return e.mountPoint
}

// Wait blocks until the export is unmounted
func (e *Export) Wait() {
	e.server.Wait()
}

// Unmount cleanly unmounts the filesystem.
func (e *Export) Unmount() error {
	if e.server == nil {
		return nil
	}
	return e.server.Unmount()
}

// exportNode serves one VFS node to the kernel
type exportNode struct {
	fs.Inode
	node *filesystem.Node
}

var (
	_ fs.NodeLookuper  = (*exportNode)(nil)
	_ fs.NodeReaddirer = (*exportNode)(nil)
	_ fs.NodeGetattrer = (*exportNode)(nil)
	_ fs.NodeOpener    = (*exportNode)(nil)
)

func fileMode(n *filesystem.Node) uint32 {
	if n.IsDir() {
		return fuse.S_IFDIR
	}
	return fuse.S_IFREG
}

// Lookup resolves name among the children, refreshing mirrored
// directories first. Known children keep their inode.
func (e *exportNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	logger := util.GetLogger("Export.Lookup")

	children, err := e.node.List(ctx)
	if err != nil {
		logger.Debug().Err(err).Str("dir", e.node.FullName()).Msg("List failed")
		return nil, toErrno(err)
	}
	for _, c := range children {
		if c.Name() != name {
			continue
		}
		out.Attr = c.Stat().FuseAttr()
		if ch := e.GetChild(name); ch != nil {
			if en, ok := ch.Operations().(*exportNode); ok && en.node == c {
				return ch, fs.OK
			}
		}
		return e.NewInode(ctx, &exportNode{node: c}, fs.StableAttr{Mode: fileMode(c)}), fs.OK
	}
	return nil, syscall.ENOENT
}

func (e *exportNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	children, err := e.node.List(ctx)
	if err != nil {
		return nil, toErrno(err)
	}
	entries := make([]fuse.DirEntry, 0, len(children))
	for _, c := range children {
		entries = append(entries, fuse.DirEntry{Name: c.Name(), Mode: fileMode(c)})
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (e *exportNode) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Attr = e.node.Stat().FuseAttr()
	return fs.OK
}

// Open snapshots the content. Sizes of dynamic and remote files are not
// known up front, so reads bypass the page cache.
func (e *exportNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_TRUNC|syscall.O_APPEND) != 0 {
		return nil, 0, syscall.EROFS
	}
	if !e.node.CanRead() {
		return nil, 0, syscall.EISDIR
	}
	data, err := e.node.ReadAll(ctx)
	if err != nil {
		logger := util.GetLogger("Export.Open")
		logger.Debug().Err(err).Str("path", e.node.FullName()).Msg("Read failed")
		return nil, 0, toErrno(err)
	}
	if len(data) > config.MaxExportFileSize {
		return nil, 0, syscall.EFBIG
	}
	return &snapshot{data: data}, fuse.FOPEN_DIRECT_IO, fs.OK
}

// snapshot is the content of one open file
type snapshot struct {
	data []byte
}

var _ fs.FileReader = (*snapshot)(nil)

func (s *snapshot) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	if off >= int64(len(s.data)) {
		return fuse.ReadResultData(nil), fs.OK
	}
	end := min(off+int64(len(dest)), int64(len(s.data)))
	return fuse.ReadResultData(s.data[off:end]), fs.OK
}

func toErrno(err error) syscall.Errno {
	switch {
	case err == nil:
		return fs.OK
	case errors.Is(err, filesystem.ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, filesystem.ErrNotDirectory):
		return syscall.ENOTDIR
	case errors.Is(err, filesystem.ErrIsDirectory):
		return syscall.EISDIR
	case errors.Is(err, filesystem.ErrNotSupported):
		return syscall.ENOTSUP
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return syscall.EINTR
	default:
		return syscall.EIO
	}
}
