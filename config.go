package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gosnmp/gosnmp"

	"printscout/scanner"
)

// Config is the full configuration for a discovery/collection run. Every
// knob the engine exposes lives here and is passed down explicitly; there
// is no process-wide mutable configuration.
type Config struct {
	SNMP      SNMPConfig      `toml:"snmp"`
	Discovery DiscoveryConfig `toml:"discovery"`
	Monitor   MonitorConfig   `toml:"monitor"`
	Database  DatabaseConfig  `toml:"database"`
	Logging   LoggingConfig   `toml:"logging"`
	// TargetsFile is the subnets list: one "cidr,location" per line.
	TargetsFile string `toml:"targets_file"`
}

// SNMPConfig holds SNMP client settings
type SNMPConfig struct {
	Community string `toml:"community"`
	TimeoutMs int    `toml:"timeout_ms"`
	Retries   int    `toml:"retries"`
}

// DiscoveryConfig holds sweep and probe pool settings
type DiscoveryConfig struct {
	LivenessWorkers   int    `toml:"liveness_workers"`
	LivenessTimeoutMs int    `toml:"liveness_timeout_ms"`
	LivenessPorts     []int  `toml:"liveness_ports"`
	ProbeWorkers      int    `toml:"probe_workers"`
	MaxSupplyIndex    int    `toml:"max_supply_index"`
}

// MonitorConfig controls the periodic sampling loop for known printers
type MonitorConfig struct {
	Enabled         bool `toml:"enabled"`
	IntervalMinutes int  `toml:"interval_minutes"`
}

// DatabaseConfig holds the SQLite database location
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig holds log level and output directory
type LoggingConfig struct {
	Level string `toml:"level"`
	Dir   string `toml:"dir"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		SNMP: SNMPConfig{
			Community: "public",
			TimeoutMs: 2000,
			Retries:   1,
		},
		Discovery: DiscoveryConfig{
			LivenessWorkers:   100,
			LivenessTimeoutMs: 100,
			LivenessPorts:     []int{80, 443, 515, 9100},
			ProbeWorkers:      20,
			MaxSupplyIndex:    9,
		},
		Monitor: MonitorConfig{
			Enabled:         false,
			IntervalMinutes: 60,
		},
		Database: DatabaseConfig{
			Path: "printscout.db",
		},
		Logging: LoggingConfig{
			Level: "INFO",
			Dir:   "",
		},
		TargetsFile: "subnets.txt",
	}
}

// probeConfig converts the SNMP section into the scanner's probe settings.
func (c *Config) probeConfig() scanner.ProbeConfig {
	return scanner.ProbeConfig{
		Community: c.SNMP.Community,
		Version:   gosnmp.Version2c,
		Timeout:   time.Duration(c.SNMP.TimeoutMs) * time.Millisecond,
		Retries:   c.SNMP.Retries,
	}
}

// pipelineConfig converts the Discovery section into pipeline settings.
func (c *Config) pipelineConfig() scanner.PipelineConfig {
	return scanner.PipelineConfig{
		Liveness: scanner.LivenessConfig{
			Workers: c.Discovery.LivenessWorkers,
			Ports:   c.Discovery.LivenessPorts,
			Timeout: time.Duration(c.Discovery.LivenessTimeoutMs) * time.Millisecond,
		},
		ProbeWorkers:   c.Discovery.ProbeWorkers,
		MaxSupplyIndex: c.Discovery.MaxSupplyIndex,
	}
}

// configSearchPaths returns an ordered list of paths to search for the
// config file: system directory, user config directory, executable
// directory, then the working directory.
func configSearchPaths(filename string) []string {
	var searchPaths []string

	switch runtime.GOOS {
	case "windows":
		searchPaths = append(searchPaths, filepath.Join(os.Getenv("ProgramData"), "PrintScout", filename))
	case "darwin":
		searchPaths = append(searchPaths, filepath.Join("/Library/Application Support", "PrintScout", filename))
	default:
		searchPaths = append(searchPaths, filepath.Join("/etc/printscout", filename))
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		switch runtime.GOOS {
		case "windows":
			searchPaths = append(searchPaths, filepath.Join(homeDir, "AppData", "Local", "PrintScout", filename))
		case "darwin":
			searchPaths = append(searchPaths, filepath.Join(homeDir, "Library", "Application Support", "PrintScout", filename))
		default:
			searchPaths = append(searchPaths, filepath.Join(homeDir, ".config", "printscout", filename))
		}
	}

	if exePath, err := os.Executable(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(filepath.Dir(exePath), filename))
	}

	searchPaths = append(searchPaths, filepath.Join(".", filename))
	return searchPaths
}

// LoadConfig reads printscout.toml from the first search path that has one
// and overlays it on the defaults. A missing file is not an error; the
// defaults stand.
func LoadConfig() (*Config, string, error) {
	cfg := DefaultConfig()

	for _, path := range configSearchPaths("printscout.toml") {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, path, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return cfg, path, nil
	}

	return cfg, "", nil
}
