// reopencat 把标准输入逐行追加到一个文件，并在收到轮转通知后重开该文件。
//
// 典型用法是放在不支持重开日志的程序后面：
//
//	app 2>&1 | reopencat --signal SIGHUP /var/log/app.log
//
// logrotate 移走文件后向 reopencat 发送 SIGHUP 即可，或者使用 --watch 让它自行发现文件被移走。
package main

import (
	"fmt"
	"os"
	stdruntime "runtime"
	"runtime/debug"

	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "reopencat:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	build := "unknown"
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				build = setting.Value
				break
			}
		}
	}

	cli.VersionPrinter = func(cCtx *cli.Context) {
		fmt.Printf("version=%s, build=%s, go=%s\n", cCtx.App.Version, build, stdruntime.Version())
	}

	return &cli.App{
		Name:      "reopencat",
		Usage:     "append stdin to a file that reopens itself after log rotation",
		UsageText: "reopencat [options] PATH",
		Version:   version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "The path to the YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "mode",
				Value: "0644",
				Usage: "Permission bits used when the file is created",
			},
			&cli.StringFlag{
				Name:  "signal",
				Value: "SIGHUP",
				Usage: "The signal that requests a reopen",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Reopen when the file is moved or removed instead of waiting for a signal",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "Diagnostic log level: debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: "text",
				Usage: "Diagnostic log format: text or json",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9100",
			},
		},
		Action: run,
	}
}
