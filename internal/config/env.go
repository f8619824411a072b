// Package config provides environment-variable loading for every service,
// each prefixed with its own name (e.g. TRANSMITTER_*, DRYRUN_*).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Source reads environment variables for a single service, prefixed by name.
type Source struct {
	Prefix string
}

func New(prefix string) *Source {
	return &Source{Prefix: prefix}
}

func (s *Source) key(name string) string {
	return s.Prefix + "_" + name
}

func (s *Source) String(name, def string) string {
	if v := os.Getenv(s.key(name)); v != "" {
		return v
	}
	return def
}

// Require aborts the process with a diagnostic if the variable is unset,
// per the fatal-startup policy for required configuration.
func (s *Source) Require(name string) string {
	v := os.Getenv(s.key(name))
	if v == "" {
		fmt.Fprintf(os.Stderr, "fatal: required environment variable %s is not set\n", s.key(name))
		os.Exit(1)
	}
	return v
}

func (s *Source) Int(name string, def int) int {
	v := os.Getenv(s.key(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (s *Source) Duration(name string, def time.Duration) time.Duration {
	v := os.Getenv(s.key(name))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func (s *Source) Float64(name string, def float64) float64 {
	v := os.Getenv(s.key(name))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func (s *Source) Bool(name string, def bool) bool {
	v := os.Getenv(s.key(name))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Bind returns the host:port the service should listen on, from
// <PREFIX>_BIND_ADDR, defaulting to ":8080".
func (s *Source) Bind() string {
	return s.String("BIND_ADDR", ":8080")
}
