// Package config handles configuration file parsing and validation for keen-threatfeed.
//
// The configuration is a TOML file with three sections:
//   - general: where refresh state is persisted and how status messages look
//   - feed: the remote blocklist URL, connectivity probe URL, output file and update period
//   - service: check interval and HTTP API address for service mode
//
// Relative paths are resolved against the directory of the configuration file.
//
//	cfg, err := config.LoadConfig("/opt/etc/keen-threatfeed/keen-threatfeed.toml")
//	if err != nil {
//	    log.Fatalf("%v", err)
//	}
//	if err := cfg.ValidateConfig(); err != nil {
//	    log.Fatalf("%v", err)
//	}
package config
