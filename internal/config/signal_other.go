//go:build !unix

package config

import (
	"fmt"
	"os"
	"strings"
	"syscall"
)

// ParseSignal 在非 Unix 平台上只接受 syscall 包定义的少数信号名。
// 除 os.Interrupt 外这些信号不会真正投递，重开通常改用 watch 模式。
func ParseSignal(name string) (os.Signal, error) {
	switch strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(name)), "SIG") {
	case "", "HUP":
		return syscall.SIGHUP, nil
	case "INT":
		return syscall.SIGINT, nil
	case "TERM":
		return syscall.SIGTERM, nil
	default:
		return nil, fmt.Errorf("unknown signal %q", name)
	}
}
