// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/imggate/internal/config"
)

func runConfigCLI(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage()
		return 0
	}

	switch args[0] {
	case "validate":
		return runConfigValidate(args[1:])
	case "dump":
		return runConfigDump(args[1:])
	case "write":
		return runConfigWrite(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand: %s\n\n", args[0])
		printConfigUsage()
		return 2
	}
}

func printConfigUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  imggate config validate [--file|-f config.yaml]")
	fmt.Fprintln(os.Stderr, "  imggate config dump --effective [--file|-f config.yaml] [--format=yaml|json]")
	fmt.Fprintln(os.Stderr, "  imggate config write [--file|-f config.yaml] [--out path]")
}

func resolveDefaultConfigPath() string {
	dataDir := strings.TrimSpace(os.Getenv("IMGGATE_DATA"))
	if dataDir == "" {
		dataDir = "/tmp"
	}
	autoPath := filepath.Join(dataDir, "config.yaml")
	if _, err := os.Stat(autoPath); err == nil {
		return autoPath
	}
	return ""
}

func runConfigValidate(args []string) int {
	fs := flag.NewFlagSet("imggate config validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var file string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	configPath := strings.TrimSpace(file)
	if configPath == "" {
		configPath = resolveDefaultConfigPath()
	}
	if configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required (no default config.yaml found in $IMGGATE_DATA)")
		return 2
	}

	loader := config.NewLoader(configPath, version)
	if _, err := loader.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error in %s:\n  %v\n", configPath, err)
		return 1
	}

	fmt.Printf("✓ %s is valid\n", configPath)
	return 0
}

func runConfigDump(args []string) int {
	fs := flag.NewFlagSet("imggate config dump", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var file string
	var format string
	var effective bool

	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	fs.StringVar(&format, "format", "yaml", "output format: yaml or json")
	fs.BoolVar(&effective, "effective", false, "dump effective configuration (defaults + file + env)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if !effective {
		fmt.Fprintln(os.Stderr, "Error: --effective is required")
		return 2
	}

	configPath := strings.TrimSpace(file)
	if configPath == "" {
		configPath = resolveDefaultConfigPath()
	}
	if configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required (no default config.yaml found in $IMGGATE_DATA)")
		return 2
	}

	loader := config.NewLoader(configPath, version)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error in %s:\n  %v\n", configPath, err)
		return 1
	}

	fileCfg := fileConfigFromAppConfig(cfg)
	redactFileConfigSecrets(&fileCfg)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(fileCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode YAML: %v\n", err)
			return 1
		}
		_ = enc.Close()
		return 0
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(fileCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unsupported format: %s (use yaml or json)\n", format)
		return 2
	}
}

// runConfigWrite materializes the effective configuration (defaults + file +
// env) back to disk, e.g. to bootstrap a config file for an ENV-only
// deployment. The write is atomic.
func runConfigWrite(args []string) int {
	fs := flag.NewFlagSet("imggate config write", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var file string
	var out string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	fs.StringVar(&out, "out", "", "destination path (default: $IMGGATE_DATA/config.yaml)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	configPath := strings.TrimSpace(file)
	if configPath == "" {
		configPath = resolveDefaultConfigPath()
	}

	outPath := strings.TrimSpace(out)
	if outPath == "" {
		dataDir := strings.TrimSpace(os.Getenv("IMGGATE_DATA"))
		if dataDir == "" {
			dataDir = "/tmp"
		}
		outPath = filepath.Join(dataDir, "config.yaml")
	}

	loader := config.NewLoader(configPath, version)
	cfg, err := loader.Load()
	if err != nil {
		if configPath == "" {
			fmt.Fprintf(os.Stderr, "Configuration error:\n  %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Configuration error in %s:\n  %v\n", configPath, err)
		}
		return 1
	}

	if err := config.NewManager(outPath).Save(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outPath, err)
		return 1
	}

	fmt.Printf("✓ wrote effective configuration to %s\n", outPath)
	return 0
}

func fileConfigFromAppConfig(cfg config.AppConfig) config.FileConfig {
	maxBodyBytes := cfg.ImageMaxBodyBytes
	upstreamRate := cfg.UpstreamRate
	upstreamBurst := cfg.UpstreamBurst
	rateLimitEnabled := cfg.RateLimitEnabled
	rateLimitRPM := cfg.RateLimitRPM
	metricsEnabled := cfg.MetricsEnabled
	cacheMaxEntries := cfg.CacheMaxEntries
	telemetryEnabled := cfg.TelemetryEnabled
	telemetrySampling := cfg.TelemetrySampling

	experimental := make(map[string]bool, len(cfg.Experimental))
	for name, enabled := range cfg.Experimental {
		experimental[name] = enabled
	}

	return config.FileConfig{
		Version:      cfg.Version,
		DataDir:      cfg.DataDir,
		LogLevel:     cfg.LogLevel,
		LogService:   cfg.LogService,
		Experimental: experimental,
		Images: config.ImagesConfig{
			Domains:       append([]string(nil), cfg.ImageDomains...),
			FetchTimeout:  cfg.ImageFetchTimeout.String(),
			MaxBodyBytes:  &maxBodyBytes,
			UserAgent:     cfg.ImageUserAgent,
			UpstreamRate:  &upstreamRate,
			UpstreamBurst: &upstreamBurst,
		},
		Server: config.ServerFileConfig{
			ListenAddr:      cfg.ListenAddr,
			ReadTimeout:     cfg.ReadTimeout.String(),
			WriteTimeout:    cfg.WriteTimeout.String(),
			IdleTimeout:     cfg.IdleTimeout.String(),
			ShutdownTimeout: cfg.ShutdownTimeout.String(),
			RateLimit: config.RateLimitConfig{
				Enabled:           &rateLimitEnabled,
				RequestsPerMinute: &rateLimitRPM,
			},
		},
		Metrics: config.MetricsConfig{
			Enabled:    &metricsEnabled,
			ListenAddr: cfg.MetricsAddr,
		},
		Cache: config.CacheFileConfig{
			Backend:    cfg.CacheBackend,
			Path:       cfg.CachePath,
			TTL:        cfg.CacheTTL.String(),
			MaxEntries: &cacheMaxEntries,
			Redis: config.RedisConfig{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			},
		},
		Telemetry: config.TelemetryFileConfig{
			Enabled:      &telemetryEnabled,
			Exporter:     cfg.TelemetryExporter,
			Endpoint:     cfg.TelemetryEndpoint,
			SamplingRate: &telemetrySampling,
		},
	}
}

func redactFileConfigSecrets(cfg *config.FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.Cache.Redis.Password != "" {
		cfg.Cache.Redis.Password = "***"
	}
}
