// Package config loads the aggregator's configuration from environment
// variables, optionally overlaid with a TOML file whose non-empty values
// take precedence over the environment.
package config

import (
	"fmt"
	"os"

	"github.com/naoina/toml"
)

// Config holds every external knob the aggregator reads at startup.
type Config struct {
	WSURL        string `toml:"ws_url"`
	RPCURL       string `toml:"rpc_url"`
	RPCUsername  string `toml:"rpc_username"`
	RPCPassword  string `toml:"rpc_password"`
	MemcacheHost string `toml:"memcache_host"`
	MemcachePort string `toml:"memcache_port"`
	BlockExplorer string `toml:"block_explorer"`

	// HTTPAddr is the listen address for the client-facing HTTP/WS server.
	// Defaults to ":8080".
	HTTPAddr string `toml:"http_addr"`
}

// ErrMissingWSURL and ErrMissingRPCURL are the two fatal config errors: a
// missing WS_URL or RPC_URL aborts startup.
var (
	ErrMissingWSURL  = fmt.Errorf("config: WS_URL is required")
	ErrMissingRPCURL = fmt.Errorf("config: RPC_URL is required")
)

// FromEnv reads configuration from the process environment.
func FromEnv() Config {
	cfg := Config{
		WSURL:         os.Getenv("WS_URL"),
		RPCURL:        os.Getenv("RPC_URL"),
		RPCUsername:   os.Getenv("RPC_USERNAME"),
		RPCPassword:   os.Getenv("RPC_PASSWORD"),
		MemcacheHost:  os.Getenv("MEMCACHE_HOST"),
		MemcachePort:  os.Getenv("MEMCACHE_PORT"),
		BlockExplorer: os.Getenv("BLOCK_EXPLORER"),
		HTTPAddr:      ":8080",
	}
	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}
	return cfg
}

// LoadFile overlays a TOML config file onto cfg; zero-value fields in the
// file leave the existing value in cfg untouched.
func LoadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	var overlay Config
	if err := toml.NewDecoder(f).Decode(&overlay); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	mergeNonEmpty(&cfg.WSURL, overlay.WSURL)
	mergeNonEmpty(&cfg.RPCURL, overlay.RPCURL)
	mergeNonEmpty(&cfg.RPCUsername, overlay.RPCUsername)
	mergeNonEmpty(&cfg.RPCPassword, overlay.RPCPassword)
	mergeNonEmpty(&cfg.MemcacheHost, overlay.MemcacheHost)
	mergeNonEmpty(&cfg.MemcachePort, overlay.MemcachePort)
	mergeNonEmpty(&cfg.BlockExplorer, overlay.BlockExplorer)
	mergeNonEmpty(&cfg.HTTPAddr, overlay.HTTPAddr)
	return nil
}

func mergeNonEmpty(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// Validate enforces the fatal-config rule: WS_URL and RPC_URL are required.
func (c Config) Validate() error {
	if c.WSURL == "" {
		return ErrMissingWSURL
	}
	if c.RPCURL == "" {
		return ErrMissingRPCURL
	}
	return nil
}

// UsesMemcache reports whether a memcache-backed cache should be used for
// the election store instead of the in-process LRU.
func (c Config) UsesMemcache() bool { return c.MemcacheHost != "" }

// MemcacheAddr joins host and port (defaulting the port to 11211).
func (c Config) MemcacheAddr() string {
	port := c.MemcachePort
	if port == "" {
		port = "11211"
	}
	return fmt.Sprintf("%s:%s", c.MemcacheHost, port)
}
