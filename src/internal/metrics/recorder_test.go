package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maksimkurb/keen-threatfeed/src/internal/feed"
)

func TestRecorder_Observe(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewRecorder(reg)
	checked := time.Unix(1700000000, 0)

	r.Observe(feed.Result{Outcome: feed.OutcomeDownloaded, CheckedAt: checked, Duration: 150 * time.Millisecond})
	r.Observe(feed.Result{Outcome: feed.OutcomeUpToDate, CheckedAt: checked.Add(time.Minute)})
	r.Observe(feed.Result{Outcome: feed.OutcomeConnectivityFailure, CheckedAt: checked.Add(time.Hour)})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.outcomes.WithLabelValues("downloaded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.outcomes.WithLabelValues("up_to_date")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.outcomes.WithLabelValues("connectivity_failure")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(r.lastSuccess))
	assert.Equal(t, 1700003600.0, testutil.ToFloat64(r.lastCheck))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() { r.Observe(feed.Result{Outcome: feed.OutcomeDownloaded}) })
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewRecorder(reg)
	r.Observe(feed.Result{Outcome: feed.OutcomeUnchanged, CheckedAt: time.Now()})

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `keen_threatfeed_refresh_outcomes_total{outcome="unchanged"} 1`)
}
