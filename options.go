package reopenx

import (
	"log/slog"
	"os"
	"sync/atomic"
	"syscall"

	"gitee.com/MM-Q/reopenx/notify"
)

// Notifier 是 File 依赖的通知子系统。
//
// Register 登记共享标志，事件发生时通知方只做一件事：flag.Store(true)。
// Unregister 交回登记时得到的句柄，从 File 的角度看它不会失败。
// notify.Registry 与 notify.Watcher 都实现了该接口。
type Notifier interface {
	Register(flag *atomic.Bool) (notify.Token, error)
	Unregister(tok notify.Token)
}

// Option 配置 Open 的行为。
type Option func(*options)

type options struct {
	mode     os.FileMode
	notifier Notifier
	logger   *slog.Logger
	metrics  *Metrics

	// keepOwner 为 true 时，重开得到的新文件继承旧文件的属主
	keepOwner bool
}

func defaultOptions() *options {
	return &options{
		mode:     defaultFilePerm,
		notifier: notify.For(syscall.SIGHUP),
		logger:   slog.New(slog.DiscardHandler),
	}
}

// WithFileMode 设置新建文件时使用的权限，默认 0644。已存在的文件不受影响。
func WithFileMode(mode os.FileMode) Option {
	return func(o *options) {
		if mode != 0 {
			o.mode = mode
		}
	}
}

// WithNotifier 替换默认的 SIGHUP 通知源。
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithLogger 设置接收重开事件的 logger（Debug 级别）。
// 影响写入的错误从不在内部记录，而是返回给调用方；只有属主复制失败会记录为 Warn。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics 让 File 把写入与重开计入 m。
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithKeepOwner 让重开时新建的文件继承旧文件的属主与属组。
//
// 适用于以 root 运行、日志文件却属于其他用户的场景。只在类 Unix 系统上生效，
// 并且需要进程有权限执行 chown；失败时新文件照常使用。
func WithKeepOwner() Option {
	return func(o *options) {
		o.keepOwner = true
	}
}
