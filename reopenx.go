// Package reopenx 提供一个可自行重开的追加写文件。
//
// 它面向外部日志轮转工具（例如 logrotate）：工具先把日志文件移走，
// 再向进程发送 SIGHUP。File 收到通知后不会立即动手，而是在下一次写入前
// 同步旧句柄并在原路径重新打开，随后的内容落在新文件中。
//
// reopenx 可以与任何能够写入 io.Writer 的日志包配合使用，包括标准库的 log 与 log/slog。
//
// reopenx 不负责格式化、缓冲、按大小或时间轮转、压缩，也不协调多个进程同时写入同一个文件。
package reopenx

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"gitee.com/MM-Q/reopenx/notify"
)

// 编译时接口实现检查
var (
	_ io.WriteCloser  = (*File)(nil)
	_ io.StringWriter = (*File)(nil)
)

// File 是一个 io.WriteCloser，总是写入同一个路径，并在收到轮转通知后重开该路径。
//
// 轮转请求来自 Notifier（默认是进程级的 SIGHUP）。通知方只把共享标志置为 true，
// 同步与重开都在下一次 Write 或 WriteVectored 中完成；两次写入之间的多次通知合并为一次重开。
// Flush 与 Sync 从不触发重开。
//
// File 的方法可以被多个 goroutine 并发调用。
type File struct {
	// path 是规范化后的绝对路径，生命周期内不变
	path string
	// mode 是新建文件时使用的权限
	mode os.FileMode

	// mu 保护 file，序列化写入与句柄替换
	mu   sync.Mutex
	file *os.File

	// rotate 与通知方共享，单独分配以免登记关系让 File 无法被回收
	rotate   *atomic.Bool
	notifier Notifier
	token    notify.Token
	cleanup  runtime.Cleanup

	logger    *slog.Logger
	metrics   *Metrics
	keepOwner bool
}

// registration 是 GC 兜底清理需要的全部状态，不能引用 File 本身。
type registration struct {
	notifier Notifier
	token    notify.Token
}

// Open 以追加模式打开 path（不存在则创建），并向通知子系统登记轮转标志。
//
// 父目录不会被创建。登记失败时已经打开的文件会先被关闭再返回错误，
// 不会留下泄漏的句柄或登记。
//
// 参数:
//   - path: 日志文件路径，相对路径会被转换为绝对路径
//   - opts: 可选配置
//
// 返回值:
//   - *File: 持有一个打开句柄与一个有效登记的实例
//   - error: 包装了 ErrOpen 或 ErrRegister 的错误
func Open(path string, opts ...Option) (*File, error) {
	// 先应用默认值，再依次应用调用方的选项
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	// 规范化路径，之后的重开都使用这个绝对路径
	name, err := normalizePath(path)
	if err != nil {
		return nil, fmt.Errorf("reopenx: %w %s: %w", ErrOpen, path, err)
	}

	// 以追加模式打开文件，父目录不存在时直接失败
	file, err := openFile(name, o.mode)
	if err != nil {
		return nil, fmt.Errorf("reopenx: %w %s: %w", ErrOpen, name, err)
	}

	// 登记轮转标志，失败时关闭刚打开的文件
	rotate := new(atomic.Bool)
	tok, err := o.notifier.Register(rotate)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("reopenx: %w %s: %w", ErrRegister, name, err)
	}

	f := &File{
		path:      name,
		mode:      o.mode,
		file:      file,
		rotate:    rotate,
		notifier:  o.notifier,
		token:     tok,
		logger:    o.logger,
		metrics:   o.metrics,
		keepOwner: o.keepOwner,
	}

	// 调用方忘记 Close 时，回收 File 也会注销登记
	f.cleanup = runtime.AddCleanup(f, func(r registration) {
		r.notifier.Unregister(r.token)
	}, registration{notifier: o.notifier, token: tok})

	return f, nil
}

// Write 实现 io.Writer。
// 如果自上次写入以来收到过轮转通知，先同步并重开文件；重开失败时本次写入不会落到旧句柄上。
func (f *File) Write(p []byte) (n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return 0, ErrClosed
	}

	// 有待处理的轮转请求时先重开，失败则本次写入不落盘
	if err := f.reopenIfNeeded(); err != nil {
		return 0, err
	}

	// 写入错误原样返回
	n, err = f.file.Write(p)
	f.metrics.observeWrite(f.path, n)
	return n, err
}

// WriteVectored 把多个缓冲区按顺序写入文件，轮转处理与 Write 相同。
// 在 Linux 上使用 writev(2)。与 Write 一样，只有出错时才会返回少于总长度的字节数。
func (f *File) WriteVectored(bufs [][]byte) (n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return 0, ErrClosed
	}

	if err := f.reopenIfNeeded(); err != nil {
		return 0, err
	}

	n, err = writev(f.file, bufs)
	f.metrics.observeWrite(f.path, n)
	return n, err
}

// WriteString 实现 io.StringWriter。
func (f *File) WriteString(s string) (n int, err error) {
	return f.Write([]byte(s))
}

// Flush 把缓冲内容交给底层句柄。*os.File 没有用户态缓冲，因此只在关闭后返回 ErrClosed。
// Flush 不检查也不清除轮转标志。
func (f *File) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return ErrClosed
	}
	return nil
}

// Sync 把当前句柄的内容持久化到存储。需要在关闭前确保数据落盘的调用方应先调用 Sync。
func (f *File) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return ErrClosed
	}
	return f.file.Sync()
}

// Rotate 在进程内请求一次轮转，效果与收到通知相同：重开发生在下一次写入时。
func (f *File) Rotate() {
	f.rotate.Store(true)
}

// Name 返回 File 写入的绝对路径。
func (f *File) Name() string {
	return f.path
}

// Close 注销通知登记并关闭当前句柄。只有第一次调用生效，之后返回 nil。
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}
	return f.closeLocked()
}
