// Package env reads typed configuration values from the process environment,
// falling back to an explicit default when a variable is unset or empty.
package env

import (
	"os"
	"strconv"
	"time"
)

// String returns the raw environment variable value, or def when unset/empty.
func String(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Int parses the environment variable as an integer, panicking on malformed
// (but present) values so misconfiguration fails fast at startup.
func Int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic("invalid int value for " + key + ": " + v)
	}
	return n
}

// Bool parses the environment variable as a bool ("true"/"1"/"false"/"0"/...).
func Bool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic("invalid bool value for " + key + ": " + v)
	}
	return b
}

// Float64 parses the environment variable as a float64.
func Float64(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		panic("invalid float value for " + key + ": " + v)
	}
	return f
}

// Duration interprets the environment variable as a count of seconds and
// returns the equivalent time.Duration.
func Duration(key string, defSeconds int) time.Duration {
	return time.Duration(Int(key, defSeconds)) * time.Second
}
