// Package config 加载 reopencat 的 YAML 配置。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 是 reopencat 的完整配置，命令行参数会覆盖文件中的同名项。
type Config struct {
	// Path 是输出文件路径
	Path string `yaml:"path"`
	// Mode 是新建文件的权限，八进制字符串，例如 "0644"
	Mode string `yaml:"mode"`
	// Signal 是触发重开的信号名，例如 "SIGHUP" 或 "USR1"
	Signal string `yaml:"signal"`
	// Watch 为 true 时改用文件监视触发重开，忽略 Signal
	Watch bool `yaml:"watch"`

	Log LogConfig `yaml:"log"`
}

// LogConfig 控制 reopencat 自身的诊断日志（写到 stderr）。
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default 返回默认配置。
func Default() Config {
	return Config{
		Mode:   "0644",
		Signal: "SIGHUP",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load 读取 path 指向的 YAML 文件，未出现的字段保留默认值。
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

// Validate 检查配置是否完整可用。
func (c Config) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return errors.New("output path is required")
	}
	if _, err := c.FileMode(); err != nil {
		return err
	}
	if !c.Watch {
		if _, err := ParseSignal(c.Signal); err != nil {
			return err
		}
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Format)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log format '%s' is not supported", c.Log.Format)
	}
	return nil
}

// FileMode 解析八进制权限字符串，空字符串表示 0644。
func (c Config) FileMode() (os.FileMode, error) {
	s := strings.TrimSpace(c.Mode)
	if s == "" {
		return 0o644, nil
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0o"), 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid file mode %q: %w", c.Mode, err)
	}
	if v == 0 || v > 0o777 {
		return 0, fmt.Errorf("invalid file mode %q", c.Mode)
	}
	return os.FileMode(v), nil
}

// ParseLevel 解析日志级别，空字符串表示 info。
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", s)
	}
}
