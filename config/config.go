package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brettbedarf/vfsh/internal/util"
	"gopkg.in/yaml.v3"
)

// Verbosity values accepted from the CLI and config files
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl = util.WarnLevel

	DefaultHostName = "vfsh"

	// DefaultPipelineTimeoutMs is the watchdog window for one input line
	DefaultPipelineTimeoutMs = 5000

	// DefaultPipeBuffer is the number of written units an adapter holds
	// before its writer blocks
	DefaultPipeBuffer = 64

	DefaultConfirmExit = true

	DefaultUserName = "user"
	DefaultUserID   = 1000
	DefaultUserHome = "/home/user"

	DefaultMountName = "osfs"
)

// Config contains runtime configuration values for the shell.
type Config struct {
	ExportOptions

	LogLvl            util.LogLevel     // Internal log level (Default warn)
	LogFile           string            // Log destination; stderr when empty
	HostName          string            // Host shown in the prompt (Default "vfsh")
	User              UserConfig        // Session user
	Mounts            []MountConfig     // Host directories mirrored at the VFS root (Default osfs -> OS temp dir)
	NodesFile         string            // Optional node definition file (JSON or YAML)
	PipelineTimeoutMs int               // Watchdog per input line in ms; 0 disables (Default 5000)
	PipeBuffer        int               // Units buffered per pipe adapter (Default 64)
	HistoryFile       string            // Line editor history; none when empty
	ConfirmExit       bool              // Ask before leaving an interactive session (Default true)
	Aliases           map[string]string // Extra aliases on top of the builtin ll
}

// UserConfig describes the session user
type UserConfig struct {
	Name  string `yaml:"name" json:"name"`
	UID   int    `yaml:"uid" json:"uid"`
	GID   int    `yaml:"gid" json:"gid"`
	Home  string `yaml:"home" json:"home"`
	Admin bool   `yaml:"admin,omitempty" json:"admin,omitempty"`
}

// PipelineTimeout returns the watchdog window as a duration
func (c *Config) PipelineTimeout() time.Duration {
	return time.Duration(c.PipelineTimeoutMs) * time.Millisecond
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	LogLvl            *int              `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	LogFile           *string           `yaml:"log_file,omitempty" json:"log_file,omitempty"`
	HostName          *string           `yaml:"host_name,omitempty" json:"host_name,omitempty"`
	User              *UserConfig       `yaml:"user,omitempty" json:"user,omitempty"`
	Mounts            *[]MountConfig    `yaml:"mounts,omitempty" json:"mounts,omitempty"`
	NodesFile         *string           `yaml:"nodes_file,omitempty" json:"nodes_file,omitempty"`
	PipelineTimeoutMs *int              `yaml:"pipeline_timeout_ms,omitempty" json:"pipeline_timeout_ms,omitempty"`
	PipeBuffer        *int              `yaml:"pipe_buffer,omitempty" json:"pipe_buffer,omitempty"`
	HistoryFile       *string           `yaml:"history_file,omitempty" json:"history_file,omitempty"`
	ConfirmExit       *bool             `yaml:"confirm_exit,omitempty" json:"confirm_exit,omitempty"`
	Aliases           map[string]string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	MountPoint        *string           `yaml:"mount_point,omitempty" json:"mount_point,omitempty"`
	FsName            *string           `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name              *string           `yaml:"name,omitempty" json:"name,omitempty"`
	Debug             *bool             `yaml:"fuse_debug,omitempty" json:"fuse_debug,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		ExportOptions: ExportOptions{
			FsName: DefaultFsName,
			Name:   DefaultName,
		},
		LogLvl:   DefaultLogLvl,
		HostName: DefaultHostName,
		User: UserConfig{
			Name: DefaultUserName,
			UID:  DefaultUserID,
			GID:  DefaultUserID,
			Home: DefaultUserHome,
		},
		Mounts:            []MountConfig{{Name: DefaultMountName, Path: os.TempDir()}},
		PipelineTimeoutMs: DefaultPipelineTimeoutMs,
		PipeBuffer:        DefaultPipeBuffer,
		ConfirmExit:       DefaultConfirmExit,
		Aliases:           map[string]string{},
	}
}

// NewConfig returns the defaults with override applied; override may be nil
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// VerboseToLogLevel maps CLI verbosity 1 (error) .. 5 (trace) to a log level.
// Out of range values are clamped.
func VerboseToLogLevel(verbose int) util.LogLevel {
	logLvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return logLvls[util.Clamp(verbose, ErrorVerbose, TraceVerbose)-1]
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = VerboseToLogLevel(*override.LogLvl)
	}
	if override.LogFile != nil {
		c.LogFile = *override.LogFile
	}
	if override.HostName != nil {
		c.HostName = *override.HostName
	}
	if override.User != nil {
		c.User = *override.User
	}
	if override.Mounts != nil {
		c.Mounts = *override.Mounts
	}
	if override.NodesFile != nil {
		c.NodesFile = *override.NodesFile
	}
	if override.PipelineTimeoutMs != nil {
		c.PipelineTimeoutMs = max(*override.PipelineTimeoutMs, 0)
	}
	if override.PipeBuffer != nil {
		c.PipeBuffer = max(*override.PipeBuffer, 1)
	}
	if override.HistoryFile != nil {
		c.HistoryFile = *override.HistoryFile
	}
	if override.ConfirmExit != nil {
		c.ConfirmExit = *override.ConfirmExit
	}
	if len(override.Aliases) > 0 {
		if c.Aliases == nil {
			c.Aliases = map[string]string{}
		}
		maps.Copy(c.Aliases, override.Aliases)
	}
	if override.MountPoint != nil {
		c.MountPoint = *override.MountPoint
	}
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
	if override.Debug != nil {
		c.Debug = *override.Debug
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
