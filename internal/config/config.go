// Package config loads the page builder's YAML configuration.
//
// A config file only needs the keys it changes; everything else keeps the
// value from Default. Path values may reference ${HOME} and ${DATA_DIR}, the
// latter being the configured dataDir.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted when no --config flag is
// given.
const EnvVar = "PAGEBUILDER_CONFIG"

type Config struct {
	// DataDir holds the database and, by default, component definitions.
	DataDir string `yaml:"dataDir"`

	// DBPath is the sqlite database file.
	DBPath string `yaml:"dbPath"`

	// ComponentsDir holds YAML component definitions loaded at startup.
	// Missing directories are skipped.
	ComponentsDir string `yaml:"componentsDir"`

	// WatchComponents re-loads definitions when files in ComponentsDir change.
	WatchComponents bool `yaml:"watchComponents"`

	Log       LogConfig       `yaml:"log"`
	History   HistoryConfig   `yaml:"history"`
	Revisions RevisionsConfig `yaml:"revisions"`
	MCP       MCPConfig       `yaml:"mcp"`
}

type LogConfig struct {
	// Level is a zap level name: debug, info, warn or error.
	Level string `yaml:"level"`
}

type HistoryConfig struct {
	// Limit bounds in-memory undo depth of an editor session.
	Limit int `yaml:"limit"`
}

type RevisionsConfig struct {
	// Max is the number of revisions kept per page. Zero keeps all.
	Max int `yaml:"max"`

	// PruneSchedule is a cron schedule for background pruning. Empty disables
	// it.
	PruneSchedule string `yaml:"pruneSchedule"`
}

type MCPConfig struct {
	AutoApprove bool `yaml:"autoApprove"`

	// ApprovalTimeout is a Go duration string such as "2m".
	ApprovalTimeout string `yaml:"approvalTimeout"`
}

func Default() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".local", "share", "pagebuilder")
	return &Config{
		DataDir:       dataDir,
		DBPath:        "${DATA_DIR}/pagebuilder.db",
		ComponentsDir: "${DATA_DIR}/components",
		Log:           LogConfig{Level: "info"},
		History:       HistoryConfig{Limit: 50},
		Revisions: RevisionsConfig{
			Max:           200,
			PruneSchedule: "@every 1h",
		},
		MCP: MCPConfig{ApprovalTimeout: "2m"},
	}
}

// Load reads the file at path, or the file named by PAGEBUILDER_CONFIG when
// path is empty. With neither, it returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, cfg.Validate()
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("dbPath is required"))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.History.Limit < 0 {
		errs = append(errs, errors.New("history.limit must not be negative"))
	}
	if c.Revisions.Max < 0 {
		errs = append(errs, errors.New("revisions.max must not be negative"))
	}
	if c.Revisions.PruneSchedule != "" {
		if _, err := cron.ParseStandard(c.Revisions.PruneSchedule); err != nil {
			errs = append(errs, fmt.Errorf("revisions.pruneSchedule: %w", err))
		}
	}
	if c.MCP.ApprovalTimeout != "" {
		if d, err := time.ParseDuration(c.MCP.ApprovalTimeout); err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("mcp.approvalTimeout: %q is not a positive duration", c.MCP.ApprovalTimeout))
		}
	}
	return errors.Join(errs...)
}

// ApprovalTimeout returns the parsed approval timeout, zero when unset.
func (c *Config) ApprovalTimeout() time.Duration {
	d, _ := time.ParseDuration(c.MCP.ApprovalTimeout)
	return d
}

func (c *Config) expandVariables() {
	vars := map[string]string{"HOME": os.Getenv("HOME")}
	c.DataDir = expandVars(c.DataDir, vars)
	vars["DATA_DIR"] = c.DataDir
	c.DBPath = expandVars(c.DBPath, vars)
	c.ComponentsDir = expandVars(c.ComponentsDir, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars replaces ${NAME} and ${NAME:-default}. Unknown names fall back
// to the environment, then to the default.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if v, ok := vars[parts[1]]; ok && v != "" {
			return v
		}
		if v := os.Getenv(parts[1]); v != "" {
			return v
		}
		return parts[2]
	})
}
