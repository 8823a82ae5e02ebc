// Package config resolves the listener settings once at startup.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultHost binds every interface.
	DefaultHost = "0.0.0.0"
	// DefaultPort is used when PORT is unset or empty.
	DefaultPort = 8000
)

// Config holds the HTTP listener settings.
type Config struct {
	Host string
	Port int

	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int
}

// Default returns the settings used when nothing is overridden.
func Default() Config {
	return Config{
		Host:              DefaultHost,
		Port:              DefaultPort,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		MaxHeaderBytes:    64 << 10,
	}
}

// Addr is the host:port the listener binds.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Load reads an optional .env file from the working directory and applies
// HOST and PORT overrides on top of Default. Values already present in the
// environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an environment lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if host, ok := lookup("HOST"); ok && host != "" {
		cfg.Host = host
	}
	if raw, ok := lookup("PORT"); ok && raw != "" {
		port, err := parsePort(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	return cfg, nil
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid PORT %q: %w", raw, err)
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("invalid PORT %q: out of range 0-65535", raw)
	}
	return port, nil
}
