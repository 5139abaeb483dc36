package feed

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/maksimkurb/keen-threatfeed/src/internal/log"
)

// State is persisted under this section with the keys below.
const (
	StateSection      = "threat_intelligence"
	KeyValidatorToken = "etag"
	KeyLastUpdate     = "last_update"
)

const (
	msgDisabled           = "Updating is not allowed."
	msgUpToDate           = "Threat intelligence data is up to date. No downloading."
	msgConnectivityFailed = "Cannot connect to %s. Check your connection. Downloading of threat intelligence data is aborted."
	msgValidatorMissing   = "Downloading of threat intelligence data is aborted. We do not have access to %s."
	msgDownloadFailed     = "An error occurred during downloading threat intelligence data. Updating was aborted."
	msgSucceeded          = "Updating was successful."
)

// Store is a durable string store addressed by section and key.
type Store interface {
	Get(section, key string) (string, bool)
	Set(section, key, value string) error
}

// MessageSink receives one human-readable status message per refresh cycle.
type MessageSink interface {
	Send(message string)
}

// Remote is the feed endpoint together with the host used to check connectivity.
type Remote interface {
	// CheckConnectivity reaches the probe host. Any error aborts the cycle.
	CheckConnectivity(ctx context.Context) error
	// FetchValidator returns the feed's current ETag without downloading the body.
	// It returns false when the ETag cannot be obtained for any reason.
	FetchValidator(ctx context.Context) (string, bool)
	// Download fetches the feed and stores it at the configured local path.
	Download(ctx context.Context) error
	ProbeURL() string
	FeedURL() string
}

// Coordinator decides whether the local feed copy needs refreshing and does so.
// Calls must be serialized by the caller; see Serialized.
type Coordinator struct {
	store  Store
	sink   MessageSink
	remote Remote
	now    func() time.Time
}

type Option func(*Coordinator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

func NewCoordinator(store Store, sink MessageSink, remote Remote, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:  store,
		sink:   sink,
		remote: remote,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh runs one refresh cycle. periodInput is the minimum number of seconds
// between downloads, in any form ParsePeriod accepts.
func (c *Coordinator) Refresh(ctx context.Context, periodInput any) Outcome {
	return c.RefreshDetailed(ctx, periodInput).Outcome
}

// RefreshDetailed is Refresh returning the full Result.
//
// Exactly one message is sent to the sink per call. Persisted state is only
// written for fields that changed in this cycle, and nothing is written when
// the connectivity probe fails or ctx is cancelled during the cycle.
func (c *Coordinator) RefreshDetailed(ctx context.Context, periodInput any) Result {
	period, ok := ParsePeriod(periodInput)
	if !ok {
		log.Debugf("Update period %v is not a positive number, updating is disabled", periodInput)
		return c.report(Result{Outcome: OutcomeDisabled})
	}

	now := c.now()
	if !c.eligible(period, now) {
		return c.report(Result{Outcome: OutcomeUpToDate, CheckedAt: now})
	}

	res, token := c.attempt(ctx)
	res.CheckedAt = now
	res.Duration = c.now().Sub(now)

	switch {
	case res.Outcome == OutcomeConnectivityFailure:
	case ctx.Err() != nil:
		log.Warnf("Refresh was cancelled, state is left unchanged: %v", ctx.Err())
	default:
		c.persist(token, now)
	}

	return c.report(res)
}

// State returns what the store currently holds for the feed.
func (c *Coordinator) State() PersistedState {
	var st PersistedState
	st.Token, st.HasToken = c.store.Get(StateSection, KeyValidatorToken)
	if last, ok := c.lastUpdate(); ok {
		st.LastUpdate = fromUnixSeconds(last)
		st.HasLastUpdate = true
	}
	return st
}

func (c *Coordinator) eligible(period float64, now time.Time) bool {
	last, ok := c.lastUpdate()
	if !ok {
		log.Debugf("No previous update recorded, refresh is due")
		return true
	}
	return last+period < unixSeconds(now)
}

func (c *Coordinator) lastUpdate() (float64, bool) {
	raw, ok := c.store.Get(StateSection, KeyLastUpdate)
	if !ok {
		return 0, false
	}
	last, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(last) {
		log.Warnf("Ignoring unreadable last update timestamp %q", raw)
		return 0, false
	}
	return last, true
}

// attempt runs the conditional download. The returned token is the ETag seen
// during this cycle, or "" if none was obtained. It is returned even when the
// download itself fails.
func (c *Coordinator) attempt(ctx context.Context) (Result, string) {
	if err := c.remote.CheckConnectivity(ctx); err != nil {
		log.Errorf("Connectivity check against %s failed: %v", c.remote.ProbeURL(), err)
		return Result{Outcome: OutcomeConnectivityFailure, Err: err}, ""
	}

	previous, hasPrevious := c.store.Get(StateSection, KeyValidatorToken)
	current, hasCurrent := c.remote.FetchValidator(ctx)

	res := Result{PreviousToken: previous}
	if !hasCurrent {
		log.Errorf("Could not read ETag of %s", c.remote.FeedURL())
		res.Outcome = OutcomeValidatorUnavailable
		return res, ""
	}
	res.Token = current

	if hasPrevious && previous == current {
		log.Infof("Feed %s is unchanged (ETag %s)", c.remote.FeedURL(), current)
		res.Outcome = OutcomeUnchanged
		return res, current
	}

	if hasPrevious {
		log.Infof("Feed ETag changed from %s to %s, downloading", previous, current)
	} else {
		log.Infof("No ETag recorded for feed, downloading")
	}

	if err := c.remote.Download(ctx); err != nil {
		log.Errorf("Failed to download feed %s: %v", c.remote.FeedURL(), err)
		res.Outcome = OutcomeDownloadFailed
		res.Err = err
		return res, current
	}

	res.Outcome = OutcomeDownloaded
	return res, current
}

func (c *Coordinator) persist(token string, updatedAt time.Time) {
	if token != "" {
		if err := c.store.Set(StateSection, KeyValidatorToken, token); err != nil {
			log.Errorf("Failed to save feed ETag: %v", err)
		}
	}
	if err := c.store.Set(StateSection, KeyLastUpdate, formatUnixSeconds(unixSeconds(updatedAt))); err != nil {
		log.Errorf("Failed to save last update time: %v", err)
	}
}

func (c *Coordinator) report(res Result) Result {
	switch res.Outcome {
	case OutcomeDisabled:
		res.Message = msgDisabled
	case OutcomeUpToDate:
		res.Message = msgUpToDate
	case OutcomeConnectivityFailure:
		res.Message = fmt.Sprintf(msgConnectivityFailed, c.remote.ProbeURL())
	case OutcomeValidatorUnavailable:
		res.Message = fmt.Sprintf(msgValidatorMissing, c.remote.FeedURL())
	case OutcomeDownloadFailed:
		res.Message = msgDownloadFailed
	default:
		res.Message = msgSucceeded
	}
	if res.Err != nil {
		res.Error = res.Err.Error()
	}

	c.sink.Send(res.Message)
	return res
}
