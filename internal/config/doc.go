// Package config loads and validates the YAML configuration for the tensile
// tester host tools. A loaded Config is treated as immutable; the optional
// file watcher produces a fresh value on every successful reload.
package config
