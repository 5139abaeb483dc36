package commands

import (
	"fmt"

	"github.com/maksimkurb/keen-threatfeed/src/internal/config"
	"github.com/maksimkurb/keen-threatfeed/src/internal/feed"
	"github.com/maksimkurb/keen-threatfeed/src/internal/log"
	"github.com/maksimkurb/keen-threatfeed/src/internal/sink"
	"github.com/maksimkurb/keen-threatfeed/src/internal/state"
)

// loadAndValidateConfigOrFail loads configuration from file and validates it.
func loadAndValidateConfigOrFail(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %v", err)
	}

	if err := cfg.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %v", err)
	}

	return cfg, nil
}

// feedApp holds the refresh components built from a configuration.
type feedApp struct {
	store       state.Store
	remote      *feed.HTTPRemote
	coordinator *feed.Coordinator
}

// newFeedApp opens the state store and wires a coordinator whose messages are
// formatted with the configured template and passed to messages.
func newFeedApp(cfg *config.Config, messages sink.Sink, opts ...feed.Option) (*feedApp, error) {
	store, err := state.Open(cfg.General.StateBackend, cfg.GetAbsStatePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	remote := feed.NewHTTPRemote(feed.HTTPRemoteConfig{
		FeedURL:    cfg.Feed.URL,
		ProbeURL:   cfg.Feed.ProbeURL,
		OutputPath: cfg.GetAbsOutputFile(),
		Timeout:    cfg.Feed.Timeout(),
	})

	formatted := sink.NewTemplate(cfg.General.MessageFormat, cfg.Feed.Name, messages)

	return &feedApp{
		store:       store,
		remote:      remote,
		coordinator: feed.NewCoordinator(store, formatted, remote, opts...),
	}, nil
}

func (a *feedApp) Close() {
	if err := a.store.Close(); err != nil {
		log.Warnf("Failed to close state store: %v", err)
	}
}
