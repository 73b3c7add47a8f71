package config

import (
	"os"
	"strconv"
)

// DefaultPort is used when PORT is unset or not a usable port number.
const DefaultPort = 8080

// Config holds the service configuration resolved from the environment.
type Config struct {
	Port int
}

// FromEnv resolves configuration from the process environment.
func FromEnv() Config {
	return Load(os.LookupEnv)
}

// Load resolves configuration using lookup to read variables. An empty,
// non-numeric or out-of-range PORT falls back to DefaultPort.
func Load(lookup func(string) (string, bool)) Config {
	cfg := Config{Port: DefaultPort}

	raw, ok := lookup("PORT")
	if !ok || raw == "" {
		return cfg
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return cfg
	}
	cfg.Port = port
	return cfg
}

// Addr returns the listen address for all interfaces, e.g. ":8080".
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
