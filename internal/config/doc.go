// Package config loads and validates application settings from environment
// variables and an optional config.yaml file.
package config
