package feed

import (
	"fmt"
	"math"
	"time"
)

// Outcome is the category of a single refresh cycle.
type Outcome int

const (
	// OutcomeDisabled means the update period was missing, non-numeric or not positive.
	OutcomeDisabled Outcome = iota
	// OutcomeUpToDate means the period has not elapsed since the last update.
	OutcomeUpToDate
	// OutcomeUnchanged means the remote ETag equals the stored one, so nothing was downloaded.
	OutcomeUnchanged
	// OutcomeConnectivityFailure means the probe host could not be reached.
	OutcomeConnectivityFailure
	// OutcomeValidatorUnavailable means the remote ETag could not be read.
	OutcomeValidatorUnavailable
	// OutcomeDownloaded means the feed was fetched and written to disk.
	OutcomeDownloaded
	// OutcomeDownloadFailed means the feed changed but could not be fetched or written.
	OutcomeDownloadFailed
)

var outcomeNames = map[Outcome]string{
	OutcomeDisabled:             "disabled",
	OutcomeUpToDate:             "up_to_date",
	OutcomeUnchanged:            "unchanged",
	OutcomeConnectivityFailure:  "connectivity_failure",
	OutcomeValidatorUnavailable: "validator_unavailable",
	OutcomeDownloaded:           "downloaded",
	OutcomeDownloadFailed:       "download_failed",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	for outcome, name := range outcomeNames {
		if name == string(text) {
			*o = outcome
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Skipped reports whether no download was needed.
func (o Outcome) Skipped() bool {
	return o == OutcomeUpToDate || o == OutcomeUnchanged
}

// Succeeded reports whether the cycle checked the remote feed and the local copy is current.
func (o Outcome) Succeeded() bool {
	return o == OutcomeDownloaded || o == OutcomeUnchanged
}

// Result describes one refresh cycle in more detail than its Outcome.
type Result struct {
	Outcome       Outcome       `json:"outcome"`
	Token         string        `json:"etag,omitempty"`
	PreviousToken string        `json:"previous_etag,omitempty"`
	CheckedAt     time.Time     `json:"checked_at"`
	Duration      time.Duration `json:"duration_ns"`
	Message       string        `json:"message"`
	Error         string        `json:"error,omitempty"`
	Err           error         `json:"-"`
}

// PersistedState is a snapshot of what the store holds for the feed.
type PersistedState struct {
	Token         string    `json:"etag,omitempty"`
	HasToken      bool      `json:"has_etag"`
	LastUpdate    time.Time `json:"last_update"`
	HasLastUpdate bool      `json:"has_last_update"`
}

// NextEligible returns the earliest time a refresh with the given period will
// download again. The zero time means a refresh is eligible now.
func (s PersistedState) NextEligible(period float64) time.Time {
	if !s.HasLastUpdate {
		return time.Time{}
	}
	nanos := period * float64(time.Second)
	if nanos >= math.MaxInt64 {
		return s.LastUpdate.Add(time.Duration(math.MaxInt64))
	}
	return s.LastUpdate.Add(time.Duration(nanos))
}
