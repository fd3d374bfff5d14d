//go:build linux

package reopenx

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// maxIovecs 是单次 writev(2) 可接受的缓冲区数量上限（IOV_MAX）。
const maxIovecs = 1024

// writev 用 writev(2) 把 bufs 写入 file，处理短写、EINTR 与 EAGAIN，直到全部写完或出错。
// 与 (*os.File).Write 一样，对管道这类可轮询的句柄会阻塞等待而不是返回 EAGAIN。
func writev(file *os.File, bufs [][]byte) (int, error) {
	rc, err := file.SyscallConn()
	if err != nil {
		return 0, err
	}

	bufs = dropEmpty(bufs)

	var total int
	var werr error
	cerr := rc.Write(func(fd uintptr) bool {
		for len(bufs) > 0 {
			batch := bufs
			if len(batch) > maxIovecs {
				batch = batch[:maxIovecs]
			}

			n, err := unix.Writev(int(fd), batch)
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if n > 0 {
				total += n
				bufs = consume(bufs, n)
			}
			// 管道或 FIFO 以非阻塞方式注册在 poller 上，写满时交还 poller 等待可写，
			// 已写出的进度保留在 total 与 bufs 中
			if errors.Is(err, unix.EAGAIN) {
				return false
			}
			if err != nil {
				werr = &os.PathError{Op: "writev", Path: file.Name(), Err: err}
				return true
			}
			if n == 0 {
				werr = io.ErrShortWrite
				return true
			}
		}
		return true
	})
	if werr != nil {
		return total, werr
	}
	return total, cerr
}

// dropEmpty 去掉长度为 0 的缓冲区，返回新的切片，不修改调用方的数据。
func dropEmpty(bufs [][]byte) [][]byte {
	out := make([][]byte, 0, len(bufs))
	for _, b := range bufs {
		if len(b) > 0 {
			out = append(out, b)
		}
	}
	return out
}

// consume 跳过已经写出的 n 个字节。bufs 中不含空缓冲区。
func consume(bufs [][]byte, n int) [][]byte {
	for n > 0 && len(bufs) > 0 {
		if n < len(bufs[0]) {
			bufs[0] = bufs[0][n:]
			return bufs
		}
		n -= len(bufs[0])
		bufs = bufs[1:]
	}
	return bufs
}
