// Package config holds the query core's process configuration: where to
// find the indexer's KV store, how to reach the node daemon, and the
// handful of knobs the query facade itself needs.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
)

// Config is the query core's effective configuration.
type Config struct {
	Network      string `json:"network"`
	KVPath       string `json:"kv_path"`
	DaemonRPCURL string `json:"daemon_rpc_url"`
	ListenAddr   string `json:"listen_addr"`
	LogLevel     string `json:"log_level"`
	PrefixLen    int    `json:"prefix_len"`
	MaxTrackedTx int    `json:"max_tracked_txs"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// DefaultDataDir is the per-user data directory, falling back to a
// relative path when the home directory cannot be resolved.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".rubin-query"
	}
	return filepath.Join(home, ".rubin-query")
}

// DefaultConfig returns the configuration a freshly started query process
// uses absent any flags or environment overrides.
func DefaultConfig() Config {
	return Config{
		Network:      "mainnet",
		KVPath:       filepath.Join(DefaultDataDir(), "index.db"),
		DaemonRPCURL: "http://127.0.0.1:8332",
		ListenAddr:   "127.0.0.1:50001",
		LogLevel:     "info",
		PrefixLen:    8,
		MaxTrackedTx: 300_000,
	}
}

// Validate reports whether cfg is usable, checking each field before any
// component is constructed from it.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Network) == "" {
		return errors.New("network is required")
	}
	if strings.TrimSpace(cfg.KVPath) == "" {
		return errors.New("kv_path is required")
	}
	if strings.TrimSpace(cfg.DaemonRPCURL) == "" {
		return errors.New("daemon_rpc_url is required")
	}
	if err := validateAddr(cfg.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen_addr: %w", err)
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	if cfg.PrefixLen <= 0 || cfg.PrefixLen > 32 {
		return fmt.Errorf("prefix_len must be in (0,32], got %d", cfg.PrefixLen)
	}
	if cfg.MaxTrackedTx <= 0 {
		return errors.New("max_tracked_txs must be > 0")
	}
	return nil
}

func validateAddr(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return errors.New("empty address")
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if strings.TrimSpace(port) == "" {
		return errors.New("missing port")
	}
	if strings.Contains(host, " ") {
		return errors.New("invalid host")
	}
	return nil
}
