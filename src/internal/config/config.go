package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/maksimkurb/keen-threatfeed/src/internal/log"
)

func LoadConfig(configPath string) (*Config, error) {
	configFile, err := absConfigPath(configPath)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configFile)
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(content, &config); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			log.Errorf("%s", derr.String())
			row, col := derr.Position()
			log.Errorf("Error at line %d, column %d", row, col)
			return nil, fmt.Errorf("failed to parse config file")
		}
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config._absConfigFilePath = configFile
	config.applyDefaults()

	log.Debugf("Configuration file path: %s", configFile)
	log.Debugf("State path: %s", config.GetAbsStatePath())
	log.Debugf("Feed output file: %s", config.GetAbsOutputFile())

	return &config, nil
}

// SetConfigPath binds the configuration to a file so relative paths resolve against it.
func (c *Config) SetConfigPath(configPath string) error {
	configFile, err := absConfigPath(configPath)
	if err != nil {
		return err
	}
	c._absConfigFilePath = configFile
	return nil
}

func (c *Config) SerializeConfig() (*bytes.Buffer, error) {
	buf := bytes.Buffer{}
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return &buf, nil
}

func (c *Config) WriteConfig() error {
	config, err := c.SerializeConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.GetConfigDir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(c._absConfigFilePath, config.Bytes(), 0644)
}

// applyDefaults fills in sections and fields that were omitted from the file.
// UpdatePeriod is left as-is: an absent period disables refreshing.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.General == nil {
		c.General = defaults.General
	}
	if c.General.StateBackend == "" {
		c.General.StateBackend = StateBackendFile
	}
	if c.General.StatePath == "" {
		c.General.StatePath = DefaultStatePath
	}
	if c.General.MessageFormat == "" {
		c.General.MessageFormat = DefaultMessageFormat
	}

	if c.Feed == nil {
		c.Feed = &FeedConfig{}
	}
	if c.Feed.Name == "" {
		c.Feed.Name = DefaultFeedName
	}
	if c.Feed.ProbeURL == "" {
		c.Feed.ProbeURL = DefaultProbeURL
	}
	if c.Feed.OutputFile == "" {
		c.Feed.OutputFile = DefaultOutputFile
	}
	if c.Feed.TimeoutSeconds == 0 {
		c.Feed.TimeoutSeconds = DefaultTimeoutSeconds
	}

	if c.Service == nil {
		c.Service = defaults.Service
	}
	if c.Service.CheckIntervalSeconds == 0 {
		c.Service.CheckIntervalSeconds = DefaultCheckIntervalSeconds
	}
}

func absConfigPath(configPath string) (string, error) {
	configFile := filepath.Clean(configPath)
	if filepath.IsAbs(configFile) {
		return configFile, nil
	}
	path, err := filepath.Abs(configFile)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return path, nil
}
