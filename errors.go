package reopenx

import "errors"

// 错误分类。返回的错误同时包装分类与底层原因，
// 可以用 errors.Is 分别判断，例如 errors.Is(err, ErrOpen) 与 errors.Is(err, fs.ErrNotExist)。
// 写入本身的错误按原样返回，不做包装。
var (
	// ErrOpen 表示路径无法打开或创建（构造时或轮转重开时）。
	ErrOpen = errors.New("open failed")

	// ErrSync 表示轮转前对旧句柄的落盘同步失败。
	ErrSync = errors.New("sync failed")

	// ErrRegister 表示无法向通知子系统登记。
	ErrRegister = errors.New("notification registration failed")

	// ErrClosed 表示在 Close 之后继续使用 File。
	ErrClosed = errors.New("reopenx: file already closed")
)
