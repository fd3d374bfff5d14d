package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"gitee.com/MM-Q/reopenx"
	"gitee.com/MM-Q/reopenx/internal/config"
	"gitee.com/MM-Q/reopenx/notify"
)

// readBufferSize 是单次写入的上限，超过它的行被拆成多段写出。
const readBufferSize = 64 * 1024

func run(cCtx *cli.Context) error {
	cfg, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := fileOptions(cfg)
	if err != nil {
		return err
	}
	opts = append(opts, reopenx.WithLogger(logger))

	// watch 模式下由文件监视代替信号触发重开
	if cfg.Watch {
		w, err := notify.NewWatcher(cfg.Path)
		if err != nil {
			return err
		}
		defer w.Close()
		go logWatchErrors(ctx, w, logger)
		opts = append(opts, reopenx.WithNotifier(w))
	}

	if addr := cCtx.String("metrics-addr"); addr != "" {
		m := reopenx.NewMetrics("reopencat")
		reg := prometheus.NewRegistry()
		reg.MustRegister(m)
		srv := serveMetrics(addr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		opts = append(opts, reopenx.WithMetrics(m))
	}

	f, err := reopenx.Open(cfg.Path, opts...)
	if err != nil {
		return err
	}
	logger.Info("writing stdin", slog.String("path", f.Name()), slog.Bool("watch", cfg.Watch))

	// 标准输入的读取无法被取消，收到退出信号时直接放弃等待
	done := make(chan error, 1)
	go func() {
		done <- pump(os.Stdin, f)
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	return errors.Join(err, f.Sync(), f.Close())
}

// loadConfig 合并配置文件、命令行参数与位置参数，并校验结果。
func loadConfig(cCtx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := cCtx.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cCtx.IsSet("mode") {
		cfg.Mode = cCtx.String("mode")
	}
	if cCtx.IsSet("signal") {
		cfg.Signal = cCtx.String("signal")
	}
	if cCtx.IsSet("watch") {
		cfg.Watch = cCtx.Bool("watch")
	}
	if cCtx.IsSet("log-level") {
		cfg.Log.Level = cCtx.String("log-level")
	}
	if cCtx.IsSet("log-format") {
		cfg.Log.Format = cCtx.String("log-format")
	}

	switch cCtx.NArg() {
	case 0:
	case 1:
		cfg.Path = cCtx.Args().First()
	default:
		return cfg, fmt.Errorf("expected one PATH argument, got %d", cCtx.NArg())
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// fileOptions 把配置中的权限与信号转换为 reopenx 选项。
// watch 模式下不解析信号，通知源由调用方另行提供。
func fileOptions(cfg config.Config) ([]reopenx.Option, error) {
	mode, err := cfg.FileMode()
	if err != nil {
		return nil, err
	}
	opts := []reopenx.Option{reopenx.WithFileMode(mode)}

	if !cfg.Watch {
		sig, err := config.ParseSignal(cfg.Signal)
		if err != nil {
			return nil, err
		}
		opts = append(opts, reopenx.WithNotifier(notify.For(sig)))
	}
	return opts, nil
}

// newLogger 创建写到 w 的诊断日志。
func newLogger(c config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(c.Format)) {
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler), nil
}

// pump 把 r 按行复制到 w。行尾保留，超过缓冲区的长行分段写出，
// 这样重开只会发生在行边界或长行的分段之间。
func pump(r io.Reader, w io.Writer) error {
	br := bufio.NewReaderSize(r, readBufferSize)
	for {
		line, err := br.ReadSlice('\n')
		if len(line) > 0 {
			if _, werr := w.Write(line); werr != nil {
				return werr
			}
		}

		switch {
		case err == nil, errors.Is(err, bufio.ErrBufferFull):
		case errors.Is(err, io.EOF):
			return nil
		default:
			return err
		}
	}
}

func logWatchErrors(ctx context.Context, w *notify.Watcher, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-w.Errors():
			logger.Warn("watcher error", slog.String("path", w.Path()), slog.String("error", err.Error()))
		}
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", slog.String("addr", addr), slog.String("error", err.Error()))
		}
	}()
	return srv
}
