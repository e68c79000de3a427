package filesystem

import (
	"os"
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"
)

// Stat is a snapshot of node metadata. Size is -1 when it is not known
// without producing the content (directories, dynamic files).
// UID and GID are -1 when the backing store has no owner information.
type Stat struct {
	Size      int64
	Mode      os.FileMode
	UID       int
	GID       int
	Atime     time.Time
	Mtime     time.Time
	Ctime     time.Time
	Birthtime time.Time
}

func newStat(mode os.FileMode, size int64) Stat {
	now := time.Now()
	return Stat{
		Size:      size,
		Mode:      mode,
		Atime:     now,
		Mtime:     now,
		Ctime:     now,
		Birthtime: now,
	}
}

// TypeChar returns the ls style type indicator
func (s Stat) TypeChar() byte {
	m := s.Mode
	switch {
	case m.IsDir():
		return 'd'
	case m.IsRegular():
		return '-'
	case m&os.ModeSymlink != 0:
		return 'l'
	case m&os.ModeCharDevice != 0:
		return 'c'
	case m&os.ModeDevice != 0:
		return 'b'
	case m&os.ModeNamedPipe != 0:
		return 'f'
	case m&os.ModeSocket != 0:
		return 's'
	default:
		return '?'
	}
}

// FuseAttr converts the snapshot to FUSE wire attributes.
// Unknown sizes are reported as 0; readers must use direct IO.
func (s Stat) FuseAttr() fuse.Attr {
	mode := uint32(s.Mode.Perm())
	if s.Mode.IsDir() {
		mode |= fuse.S_IFDIR
	} else {
		mode |= fuse.S_IFREG
	}
	attr := fuse.Attr{
		Size:    uint64(max(s.Size, 0)),
		Mode:    mode,
		Nlink:   1,
		Blksize: 4096,
	}
	if s.UID >= 0 && s.GID >= 0 {
		attr.Owner = fuse.Owner{Uid: uint32(s.UID), Gid: uint32(s.GID)}
	}
	attr.SetTimes(&s.Atime, &s.Mtime, &s.Ctime)
	return attr
}

// statFromFileInfo copies host metadata; owner and extra times come from
// the platform specific part when the backing fs exposes them
func statFromFileInfo(fi os.FileInfo) Stat {
	st := Stat{
		Size:      fi.Size(),
		Mode:      fi.Mode(),
		UID:       -1,
		GID:       -1,
		Atime:     fi.ModTime(),
		Mtime:     fi.ModTime(),
		Ctime:     fi.ModTime(),
		Birthtime: fi.ModTime(),
	}
	if fi.IsDir() {
		st.Size = -1
	}
	fillSysStat(&st, fi)
	return st
}
