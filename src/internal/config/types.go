package config

import (
	"path/filepath"
	"time"

	"github.com/maksimkurb/keen-threatfeed/src/internal/utils"
)

const (
	StateBackendFile    = "file"
	StateBackendLevelDB = "leveldb"

	MSG_TMPL_MODULE  = "module"
	MSG_TMPL_MESSAGE = "message"
)

const (
	DefaultFeedName             = "ThreatIntelligence"
	DefaultFeedURL              = "https://raw.githubusercontent.com/frenky-strasak/StratosphereLinuxIPS/frenky_develop/modules/ThreatInteligence/malicious_ips_files/malicious_ips.txt"
	DefaultProbeURL             = "https://github.com/"
	DefaultOutputFile           = "malicious_ips_files/malicious_ips.txt"
	DefaultStatePath            = "threatfeed.state"
	DefaultMessageFormat        = "[{{module}}] {{message}}"
	DefaultUpdatePeriod         = 86400
	DefaultTimeoutSeconds       = 10
	DefaultCheckIntervalSeconds = 300
)

type Config struct {
	// General holds storage and reporting settings.
	General *GeneralConfig `toml:"general"`
	// Feed describes the remote blocklist and how often it may be refreshed.
	Feed *FeedConfig `toml:"feed"`
	// Service holds settings for the long-running service mode.
	Service *ServiceConfig `toml:"service,omitempty"`

	_absConfigFilePath string
}

type GeneralConfig struct {
	// StateBackend selects where refresh state is persisted: "file" (TOML, default) or "leveldb".
	StateBackend string `toml:"state_backend" json:"state_backend" validate:"omitempty,oneof=file leveldb"`
	// StatePath is the state file (or LevelDB directory) path, relative to the config file.
	StatePath string `toml:"state_path" json:"state_path" validate:"required"`
	// MessageFormat is the status message template. Available variables: {{module}}, {{message}}.
	MessageFormat string `toml:"message_format" json:"message_format" validate:"message_template"`
}

type FeedConfig struct {
	// Name is the module name used in status messages.
	Name string `toml:"name" json:"name"`
	// URL is the blocklist URL. Its ETag header is used for change detection.
	URL string `toml:"url" json:"url" validate:"required,url"`
	// ProbeURL is a well-known host used to check connectivity before the feed is queried.
	ProbeURL string `toml:"probe_url" json:"probe_url" validate:"required,url"`
	// OutputFile is the local path of the downloaded list, relative to the config file.
	OutputFile string `toml:"output_file" json:"output_file" validate:"required"`
	// UpdatePeriod is the minimum number of seconds between refreshes. Zero, negative or non-numeric disables updating.
	UpdatePeriod any `toml:"update_period" json:"update_period"`
	// TimeoutSeconds bounds every HTTP request (default: 10).
	TimeoutSeconds int `toml:"timeout_seconds" json:"timeout_seconds" validate:"gte=0"`
}

type ServiceConfig struct {
	// CheckIntervalSeconds is how often service mode invokes a refresh (default: 300).
	CheckIntervalSeconds int `toml:"check_interval_seconds" json:"check_interval_seconds" validate:"gte=0"`
	// ListenAddr is the HTTP API listen address (host:port). Empty disables the API.
	ListenAddr string `toml:"listen_addr" json:"listen_addr" validate:"hostport_or_empty"`
}

// DefaultConfig returns a configuration that mirrors the built-in feed.
func DefaultConfig() *Config {
	return &Config{
		General: &GeneralConfig{
			StateBackend:  StateBackendFile,
			StatePath:     DefaultStatePath,
			MessageFormat: DefaultMessageFormat,
		},
		Feed: &FeedConfig{
			Name:           DefaultFeedName,
			URL:            DefaultFeedURL,
			ProbeURL:       DefaultProbeURL,
			OutputFile:     DefaultOutputFile,
			UpdatePeriod:   int64(DefaultUpdatePeriod),
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Service: &ServiceConfig{
			CheckIntervalSeconds: DefaultCheckIntervalSeconds,
		},
	}
}

func (c *Config) GetConfigDir() string {
	return filepath.Dir(c._absConfigFilePath)
}

func (c *Config) GetAbsStatePath() string {
	return utils.GetAbsolutePath(c.General.StatePath, c.GetConfigDir())
}

func (c *Config) GetAbsOutputFile() string {
	return utils.GetAbsolutePath(c.Feed.OutputFile, c.GetConfigDir())
}

func (f *FeedConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

func (s *ServiceConfig) CheckInterval() time.Duration {
	return time.Duration(s.CheckIntervalSeconds) * time.Second
}
