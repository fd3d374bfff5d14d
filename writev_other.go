//go:build !linux

package reopenx

import "os"

// writev 依次写入每个缓冲区。os.File.Write 保证要么写完要么返回错误。
func writev(file *os.File, bufs [][]byte) (int, error) {
	var total int
	for _, b := range bufs {
		n, err := file.Write(b)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
