// Package config handles loading and validation of the governor configuration.
//
// Resolution order, lowest to highest precedence:
//  1. Built-in platform defaults
//  2. The YAML file at GOVERNOR_CONFIG (default /etc/governor/config.yaml), if present
//  3. GOVERNOR_ALLOWLIST / GOVERNOR_AUDIT_LOG environment variables
//
// LoadElevated skips every environment lookup and reads only the system file.
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/NielsdaWheelz/governor/internal/errors"
)

// Environment variables consulted during resolution.
const (
	EnvConfig    = "GOVERNOR_CONFIG"
	EnvAllowlist = "GOVERNOR_ALLOWLIST"
	EnvAuditLog  = "GOVERNOR_AUDIT_LOG"
)

// DefaultConfigPath is the config file location when GOVERNOR_CONFIG is unset.
const DefaultConfigPath = "/etc/governor/config.yaml"

// systemConfigPath is the only file LoadElevated reads. Tests repoint it.
var systemConfigPath = DefaultConfigPath

// AuditLogOff disables the audit log when used as audit_log_path.
const AuditLogOff = "off"

// Default allowlist locations. The darwin path is shared with the daemon-cli front end.
const (
	DarwinAllowlistPath = "/Library/Application Support/daemon-cli/allowlist.json"
	UnixAllowlistPath   = "/var/lib/governor/allowlist.json"
)

// auditLogName is the audit log file name placed next to the allowlist by default.
const auditLogName = "events.jsonl"

// Env abstracts environment variable lookup for testing.
type Env interface {
	Get(key string) string
}

// OSEnv implements Env using os.Getenv.
type OSEnv struct{}

// Get implements Env.
func (OSEnv) Get(key string) string { return os.Getenv(key) }

// MapEnv implements Env over a map.
type MapEnv map[string]string

// Get implements Env.
func (m MapEnv) Get(key string) string { return m[key] }

// Config is the resolved governor configuration.
type Config struct {
	// AllowlistPath is the absolute path of allowlist.json.
	AllowlistPath string
	// AuditLogPath is the absolute path of the JSONL audit log; empty disables it.
	AuditLogPath string
	// Quarantine enables best-effort clearing of com.apple.quarantine before runs.
	Quarantine bool
	// EnforceRunAs makes a root executor drop to the job's run_as account.
	EnforceRunAs bool
	// TraceFile, when set, receives OpenTelemetry spans.
	TraceFile string

	// Source is the config file that was read, or "" when defaults were used.
	Source string
}

// fileConfig is the on-disk YAML shape. Pointers distinguish unset from zero.
type fileConfig struct {
	AllowlistPath *string `yaml:"allowlist_path"`
	AuditLogPath  *string `yaml:"audit_log_path"`
	Quarantine    *bool   `yaml:"quarantine"`
	EnforceRunAs  *bool   `yaml:"enforce_run_as"`
	TraceFile     *string `yaml:"trace_file"`
}

// Default returns the built-in configuration for goos.
func Default(goos string) Config {
	allowlist := UnixAllowlistPath
	if goos == "darwin" {
		allowlist = DarwinAllowlistPath
	}
	return Config{
		AllowlistPath: allowlist,
		AuditLogPath:  filepath.Join(filepath.Dir(allowlist), auditLogName),
		Quarantine:    true,
	}
}

// ConfigPath returns the config file path selected by env.
func ConfigPath(env Env) string {
	if p := env.Get(EnvConfig); p != "" {
		return p
	}
	return DefaultConfigPath
}

// Load resolves the configuration for goos from defaults, the config file, and env.
// A missing config file is not an error. A file that exists but cannot be read,
// parsed, or validated returns E_INVALID_CONFIG.
func Load(env Env, goos string) (Config, error) {
	return load(env, goos, ConfigPath(env))
}

// LoadElevated resolves the configuration for a process running as root on
// behalf of another account. Only the built-in defaults and the system config
// file are consulted; GOVERNOR_* environment variables are ignored.
func LoadElevated(goos string) (Config, error) {
	return load(MapEnv{}, goos, systemConfigPath)
}

func load(env Env, goos, path string) (Config, error) {
	cfg := Default(goos)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		fc, perr := parse(data)
		if perr != nil {
			return Config{}, errors.WrapWithDetails(errors.EInvalidConfig,
				"invalid config file: "+perr.Error(), perr, map[string]string{"config": path})
		}
		apply(&cfg, fc)
		cfg.Source = path
	case os.IsNotExist(err):
		// defaults
	default:
		return Config{}, errors.WrapWithDetails(errors.EInvalidConfig,
			"failed to read config file", err, map[string]string{"config": path})
	}

	if p := env.Get(EnvAllowlist); p != "" {
		// Keep the audit log beside a relocated allowlist unless it was set explicitly.
		if cfg.AuditLogPath == filepath.Join(filepath.Dir(cfg.AllowlistPath), auditLogName) {
			cfg.AuditLogPath = filepath.Join(filepath.Dir(p), auditLogName)
		}
		cfg.AllowlistPath = p
	}
	if p := env.Get(EnvAuditLog); p != "" {
		cfg.AuditLogPath = p
	}
	if cfg.AuditLogPath == AuditLogOff {
		cfg.AuditLogPath = ""
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parse decodes YAML strictly; unknown keys are rejected.
func parse(data []byte) (fileConfig, error) {
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if stderrors.Is(err, io.EOF) {
			// Empty document.
			return fileConfig{}, nil
		}
		return fileConfig{}, err
	}
	return fc, nil
}

func apply(cfg *Config, fc fileConfig) {
	if fc.AllowlistPath != nil {
		defaultAudit := filepath.Join(filepath.Dir(cfg.AllowlistPath), auditLogName)
		cfg.AllowlistPath = *fc.AllowlistPath
		if fc.AuditLogPath == nil && cfg.AuditLogPath == defaultAudit {
			cfg.AuditLogPath = filepath.Join(filepath.Dir(cfg.AllowlistPath), auditLogName)
		}
	}
	if fc.AuditLogPath != nil {
		cfg.AuditLogPath = *fc.AuditLogPath
	}
	if fc.Quarantine != nil {
		cfg.Quarantine = *fc.Quarantine
	}
	if fc.EnforceRunAs != nil {
		cfg.EnforceRunAs = *fc.EnforceRunAs
	}
	if fc.TraceFile != nil {
		cfg.TraceFile = *fc.TraceFile
	}
}

// Validate checks a resolved configuration.
// Every configured path must be absolute: governor runs as root from launchd
// and sudo, where the working directory is not meaningful.
func Validate(cfg Config) error {
	checks := []struct {
		key      string
		value    string
		required bool
	}{
		{"allowlist_path", cfg.AllowlistPath, true},
		{"audit_log_path", cfg.AuditLogPath, false},
		{"trace_file", cfg.TraceFile, false},
	}
	for _, c := range checks {
		if c.value == "" {
			if c.required {
				return errors.NewWithDetails(errors.EInvalidConfig, c.key+" must not be empty",
					map[string]string{"config": cfg.Source})
			}
			continue
		}
		if !filepath.IsAbs(c.value) {
			return errors.NewWithDetails(errors.EInvalidConfig, c.key+" must be an absolute path: "+c.value,
				map[string]string{"config": cfg.Source})
		}
	}
	return nil
}
