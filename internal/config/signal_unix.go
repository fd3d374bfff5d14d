//go:build unix

package config

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// ParseSignal 把 "SIGHUP"、"hup"、"USR1" 之类的名字解析为信号。
func ParseSignal(name string) (os.Signal, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if n == "" {
		return unix.SIGHUP, nil
	}
	if !strings.HasPrefix(n, "SIG") {
		n = "SIG" + n
	}
	sig := unix.SignalNum(n)
	if sig == 0 {
		return nil, fmt.Errorf("unknown signal %q", name)
	}
	switch sig {
	case unix.SIGKILL, unix.SIGSTOP:
		return nil, fmt.Errorf("signal %s cannot be caught", n)
	}
	return sig, nil
}
