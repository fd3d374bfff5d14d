//go:build unix

package reopenx

import (
	"os"
	"syscall"
)

var (
	// fileOwner 读取句柄的属主。它是一个变量，这样测试时可以对其进行模拟。
	fileOwner = func(f *os.File) (uid, gid int, ok bool) {
		info, err := f.Stat()
		if err != nil {
			return 0, 0, false
		}
		stat, ok := info.Sys().(*syscall.Stat_t)
		if !ok {
			return 0, 0, false
		}
		return int(stat.Uid), int(stat.Gid), true
	}

	// chownFile 修改句柄的属主。它是一个变量，这样测试时可以对其进行模拟。
	chownFile = (*os.File).Chown
)

// inheritOwner 把 prev 的属主与属组复制给 next，两者已经一致时什么也不做。
func inheritOwner(prev, next *os.File) error {
	uid, gid, ok := fileOwner(prev)
	if !ok {
		return nil
	}
	nuid, ngid, ok := fileOwner(next)
	if ok && nuid == uid && ngid == gid {
		return nil
	}
	return chownFile(next, uid, gid)
}
