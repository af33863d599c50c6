package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cuemby/iscsigw/pkg/log"
)

// Config is the runtime configuration of iscsigw
type Config struct {
	DataDir           string
	LogLevel          log.Level
	LogJSON           bool
	ReconcileInterval time.Duration
	MetricsAddr       string
	DNSServers        []string
	Hosts             map[string]string
	TemplateDir       string
	FSID              string
	MonHost           string
	Pools             []string
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() Config {
	return Config{
		DataDir:           "./iscsigw-data",
		LogLevel:          log.InfoLevel,
		ReconcileInterval: 10 * time.Second,
		MetricsAddr:       "127.0.0.1:9095",
		Hosts:             map[string]string{},
		Pools:             []string{"rbd"},
	}
}

type fileConfig struct {
	DataDir           string            `toml:"data_dir"`
	LogLevel          string            `toml:"log_level"`
	LogJSON           bool              `toml:"log_json"`
	ReconcileInterval string            `toml:"reconcile_interval"`
	MetricsAddr       string            `toml:"metrics_addr"`
	DNSServers        []string          `toml:"dns_servers"`
	Hosts             map[string]string `toml:"hosts"`
	TemplateDir       string            `toml:"template_dir"`
	FSID              string            `toml:"fsid"`
	MonHost           string            `toml:"mon_host"`
	Pools             []string          `toml:"pools"`
}

// Load reads a TOML file on top of DefaultConfig. Keys absent from the file
// keep their defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}

	if meta.IsDefined("data_dir") {
		cfg.DataDir = strings.TrimSpace(raw.DataDir)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = log.ParseLevel(strings.TrimSpace(raw.LogLevel))
	}
	if meta.IsDefined("log_json") {
		cfg.LogJSON = raw.LogJSON
	}
	if meta.IsDefined("reconcile_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ReconcileInterval))
		if err != nil {
			return Config{}, fmt.Errorf("parse reconcile_interval: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("reconcile_interval must be positive, got %s", d)
		}
		cfg.ReconcileInterval = d
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("dns_servers") {
		cfg.DNSServers = normalizeList(raw.DNSServers)
	}
	if meta.IsDefined("hosts") {
		for name, ip := range raw.Hosts {
			cfg.Hosts[strings.TrimSpace(name)] = strings.TrimSpace(ip)
		}
	}
	if meta.IsDefined("template_dir") {
		cfg.TemplateDir = strings.TrimSpace(raw.TemplateDir)
	}
	if meta.IsDefined("fsid") {
		cfg.FSID = strings.TrimSpace(raw.FSID)
	}
	if meta.IsDefined("mon_host") {
		cfg.MonHost = strings.TrimSpace(raw.MonHost)
	}
	if meta.IsDefined("pools") {
		cfg.Pools = normalizeList(raw.Pools)
	}

	if cfg.DataDir == "" {
		return Config{}, fmt.Errorf("data_dir must not be empty")
	}
	return cfg, nil
}

// LogConfig returns the logger settings
func (c Config) LogConfig() log.Config {
	return log.Config{Level: c.LogLevel, JSONOutput: c.LogJSON}
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
