package filesystem

import (
	"os"
	"syscall"
	"time"
)

func fillSysStat(st *Stat, fi os.FileInfo) {
	sys, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	st.UID = int(sys.Uid)
	st.GID = int(sys.Gid)
	st.Atime = time.Unix(sys.Atim.Unix())
	st.Ctime = time.Unix(sys.Ctim.Unix())
	// linux stat has no birth time
	st.Birthtime = st.Ctime
}
