package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is the process configuration, read from a TOML file with every
// field optional.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

type StoreConfig struct {
	Path     string `toml:"path"`
	InMemory bool   `toml:"in_memory"`
}

type ServerConfig struct {
	Addr    string `toml:"addr"`
	Workers int    `toml:"workers"`
}

// LogConfig selects the log level and an optional rotated file target.
// An empty File logs to stderr.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Store:  StoreConfig{Path: "quetzal.db"},
		Server: ServerConfig{Addr: "localhost:7878", Workers: 4},
		Log:    LogConfig{Level: "info", MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 28},
	}
}

// Load reads path over the defaults. Unknown keys are rejected so typos
// surface at startup instead of silently keeping a default.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config key %q in %s", undecoded[0], path)
	}
	return cfg, nil
}

// NewLogger builds a zap logger per the log configuration.
func (l LogConfig) NewLogger() (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", l.Level, err)
	}

	var sink zapcore.WriteSyncer
	if l.File != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   l.File,
			MaxSize:    l.MaxSizeMB,
			MaxBackups: l.MaxBackups,
			MaxAge:     l.MaxAgeDays,
		})
	} else {
		sink = zapcore.AddSync(os.Stderr)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), sink, level)
	return zap.New(core), nil
}
