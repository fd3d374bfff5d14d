// internal.go 包含 File 的内部实现：打开文件、按需重开、关闭句柄。

package reopenx

import (
	"fmt"
	"os"
)

const (
	// fileFlags 是构造与重开共用的打开方式：只写、追加、不存在则创建。
	fileFlags = os.O_WRONLY | os.O_APPEND | os.O_CREATE

	// defaultFilePerm 是新建文件的默认权限模式
	defaultFilePerm = 0o644
)

var (
	// openFile 打开日志文件。它是一个变量，这样测试时可以对其进行模拟。
	openFile = func(name string, mode os.FileMode) (*os.File, error) {
		return os.OpenFile(name, fileFlags, mode)
	}

	// syncFile 把句柄内容同步到存储。它是一个变量，这样测试时可以对其进行模拟。
	syncFile = (*os.File).Sync
)

// reopenIfNeeded 消费轮转标志，必要时同步旧句柄并在同一路径重开。
// 调用方必须持有 f.mu。
//
// 新句柄先打开，成功后才关闭旧句柄，因此任何失败都保留原句柄；
// 失败时标志被重新置位，下一次写入会再次尝试轮转。
//
// 返回值:
//   - error: 同步或重开失败时返回包装了 ErrSync / ErrOpen 的错误
func (f *File) reopenIfNeeded() error {
	// 读取并清除标志，期间到达的多次通知合并为这一次重开
	if !f.rotate.Swap(false) {
		return nil
	}

	// 先把旧句柄的内容同步到存储
	if err := syncFile(f.file); err != nil {
		// 重新置位，下一次写入再次尝试
		f.rotate.Store(true)
		f.metrics.observeReopen(f.path, resultSyncError)
		return fmt.Errorf("reopenx: %w %s: %w", ErrSync, f.path, err)
	}

	// 在原路径打开新句柄，此时旧句柄仍然有效
	next, err := openFile(f.path, f.mode)
	if err != nil {
		f.rotate.Store(true)
		f.metrics.observeReopen(f.path, resultOpenError)
		return fmt.Errorf("reopenx: %w %s: %w", ErrOpen, f.path, err)
	}

	prev := f.file
	if f.keepOwner {
		// 属主无法复制时新文件仍然可用，只记录警告
		if err := inheritOwner(prev, next); err != nil {
			f.logger.Warn("failed to copy owner to reopened file", "path", f.path, "error", err)
		}
	}
	// 替换句柄，然后释放旧句柄
	f.file = next
	// 旧句柄已经同步过，关闭错误不影响新句柄的使用
	_ = prev.Close()

	f.metrics.observeReopen(f.path, resultOK)
	f.logger.Debug("reopened log file", "path", f.path)
	return nil
}

// closeLocked 注销通知并关闭当前句柄。调用方必须持有 f.mu。
func (f *File) closeLocked() error {
	// 先注销登记，之后的通知不会再触及标志
	f.notifier.Unregister(f.token)
	// 已经手动注销，不再需要 GC 兜底
	f.cleanup.Stop()

	// 置空句柄，之后的写入返回 ErrClosed
	file := f.file
	f.file = nil
	if err := file.Close(); err != nil {
		return fmt.Errorf("reopenx: failed to close %s: %w", f.path, err)
	}
	return nil
}
