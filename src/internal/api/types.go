package api

import (
	"time"

	"github.com/maksimkurb/keen-threatfeed/src/internal/feed"
	"github.com/maksimkurb/keen-threatfeed/src/internal/sink"
)

// DataResponse wraps successful responses with a "data" field.
type DataResponse struct {
	Data any `json:"data"`
}

// StatusResponse describes the persisted refresh state of the feed.
type StatusResponse struct {
	Feed    FeedInfo            `json:"feed"`
	State   feed.PersistedState `json:"state"`
	Enabled bool                `json:"enabled"`
	// NextEligible is nil when refreshing is disabled or a refresh is due now.
	NextEligible *time.Time   `json:"next_eligible,omitempty"`
	LastResult   *feed.Result `json:"last_result,omitempty"`
}

// FeedInfo identifies the configured feed.
type FeedInfo struct {
	Name         string  `json:"name"`
	URL          string  `json:"url"`
	UpdatePeriod float64 `json:"update_period_seconds"`
	OutputFile   string  `json:"output_file"`
}

// RefreshRequest optionally overrides the configured update period for one cycle.
type RefreshRequest struct {
	Period any `json:"period,omitempty"`
}

// RefreshResponse returns the result of an on-demand cycle.
type RefreshResponse struct {
	Result feed.Result `json:"result"`
}

// MessagesResponse returns recent user-facing messages, oldest first.
type MessagesResponse struct {
	Messages []sink.Entry `json:"messages"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}
