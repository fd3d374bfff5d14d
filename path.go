package reopenx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxFilenameLen 是大多数文件系统允许的单个文件名最大长度。
const maxFilenameLen = 255

// normalizePath 校验并规范化 File 使用的路径。
//
// 相对路径在 Open 时就被转换为绝对路径，这样进程之后切换工作目录，
// 重开仍然落在同一个位置。父目录不会被创建。
//
// 参数:
//   - path: 调用方传入的文件路径
//
// 返回值:
//   - string: 清理后的绝对路径
//   - error: 路径为空、指向目录或文件名不合法时返回错误
func normalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("path cannot be empty")
	}

	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("path contains NUL byte: %q", path)
	}

	// 以分隔符结尾的路径只能指向目录
	if strings.HasSuffix(path, string(os.PathSeparator)) || strings.HasSuffix(path, "/") {
		return "", fmt.Errorf("path names a directory: %s", path)
	}

	// 在转换为绝对路径之前检查，"." 与 ".." 此时还能被识别出来
	if err := validateFilename(filepath.Base(filepath.Clean(path))); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("unable to resolve absolute path: %w", err)
	}

	return abs, nil
}

// validateFilename 检查路径最后一段是否可以作为文件名。
func validateFilename(filename string) error {
	switch filename {
	case "", ".", "..", string(os.PathSeparator):
		return fmt.Errorf("path names a directory: %q", filename)
	}

	if len(filename) > maxFilenameLen {
		return fmt.Errorf("filename exceeds %d bytes: %d", maxFilenameLen, len(filename))
	}

	return nil
}
