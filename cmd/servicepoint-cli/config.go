package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/pior/servicepoint"
	"github.com/pior/servicepoint/protocol"
)

// EnvLogLevel overrides the log level from the config file.
const EnvLogLevel = "SERVICEPOINT_LOG_LEVEL"

type cliConfig struct {
	Addr          string
	WebSocket     string
	Compression   servicepoint.CompressionCode
	FramePacing   time.Duration
	SkipUnchanged bool
	LogLevel      zerolog.Level
}

func defaultConfig() cliConfig {
	return cliConfig{
		Addr:          "172.23.42.29:2342",
		Compression:   servicepoint.Lzma,
		FramePacing:   servicepoint.FramePacing,
		SkipUnchanged: true,
		LogLevel:      zerolog.InfoLevel,
	}
}

// servicepoint.toml key mapping to cliConfig.
type fileConfig struct {
	Addr          string `toml:"addr"`
	WebSocket     string `toml:"websocket"`
	Compression   string `toml:"compression"`
	FramePacing   string `toml:"frame_pacing"`
	SkipUnchanged bool   `toml:"skip_unchanged"`
	LogLevel      string `toml:"log_level"`
}

// loadConfigFile overlays the keys set in path onto cfg.
func loadConfigFile(path string, cfg cliConfig) (cliConfig, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return cliConfig{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("websocket") {
		cfg.WebSocket = strings.TrimSpace(raw.WebSocket)
	}
	if meta.IsDefined("compression") {
		code, err := protocol.ParseCompressionName(raw.Compression)
		if err != nil {
			return cliConfig{}, fmt.Errorf("load config: %w", err)
		}
		cfg.Compression = code
	}
	if meta.IsDefined("frame_pacing") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.FramePacing))
		if err != nil {
			return cliConfig{}, fmt.Errorf("load config: frame_pacing: %w", err)
		}
		cfg.FramePacing = d
	}
	if meta.IsDefined("skip_unchanged") {
		cfg.SkipUnchanged = raw.SkipUnchanged
	}
	if meta.IsDefined("log_level") {
		lvl, ok := parseLevel(raw.LogLevel)
		if !ok {
			return cliConfig{}, fmt.Errorf("load config: unknown log_level %q", raw.LogLevel)
		}
		cfg.LogLevel = lvl
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cliConfig{}, fmt.Errorf("load config: unknown keys %v", undecoded)
	}
	return cfg, nil
}

func applyEnv(cfg *cliConfig) {
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.LogLevel = lvl
	}
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}
