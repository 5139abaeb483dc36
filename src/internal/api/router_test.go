package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maksimkurb/keen-threatfeed/src/internal/feed"
	"github.com/maksimkurb/keen-threatfeed/src/internal/metrics"
	"github.com/maksimkurb/keen-threatfeed/src/internal/sink"
)

type fakeRefresher struct {
	state   feed.PersistedState
	last    *feed.Result
	periods []any
	result  feed.Result
	panics  bool
}

func (f *fakeRefresher) Refresh(ctx context.Context, periodInput any) feed.Result {
	if f.panics {
		panic("boom")
	}
	f.periods = append(f.periods, periodInput)
	res := f.result
	f.last = &res
	return res
}

func (f *fakeRefresher) Last() (feed.Result, bool) {
	if f.last == nil {
		return feed.Result{}, false
	}
	return *f.last, true
}

func (f *fakeRefresher) State() feed.PersistedState {
	return f.state
}

var testFeed = FeedInfo{Name: "ThreatIntelligence", URL: "https://feeds.example.com/ips.txt", OutputFile: "/tmp/ips.txt"}

func newTestRouter(refresher Refresher, messages MessageSource, period any) http.Handler {
	return NewRouter(NewHandler(refresher, messages, testFeed, period), nil)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = "127.0.0.1:40000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Data
}

func TestGetStatus(t *testing.T) {
	last := time.Unix(1700000000, 0).UTC()
	refresher := &fakeRefresher{state: feed.PersistedState{
		Token: "abc123", HasToken: true, LastUpdate: last, HasLastUpdate: true,
	}}
	router := newTestRouter(refresher, nil, int64(3600))

	rec := do(t, router, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	status := decodeData[StatusResponse](t, rec)
	assert.True(t, status.Enabled)
	assert.Equal(t, "abc123", status.State.Token)
	assert.Equal(t, 3600.0, status.Feed.UpdatePeriod)
	require.NotNil(t, status.NextEligible)
	assert.True(t, status.NextEligible.Equal(last.Add(time.Hour)))
	assert.Nil(t, status.LastResult)
}

func TestGetStatus_Disabled(t *testing.T) {
	router := newTestRouter(&fakeRefresher{}, nil, 0)

	status := decodeData[StatusResponse](t, do(t, router, http.MethodGet, "/api/v1/status", ""))
	assert.False(t, status.Enabled)
	assert.Nil(t, status.NextEligible)
}

func TestRefresh_UsesConfiguredPeriod(t *testing.T) {
	refresher := &fakeRefresher{result: feed.Result{Outcome: feed.OutcomeDownloaded, Token: "abc123", Message: "Updating was successful."}}
	router := newTestRouter(refresher, nil, "86400")

	rec := do(t, router, http.MethodPost, "/api/v1/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"outcome":"downloaded"`)
	assert.Equal(t, []any{"86400"}, refresher.periods)

	status := decodeData[StatusResponse](t, do(t, router, http.MethodGet, "/api/v1/status", ""))
	require.NotNil(t, status.LastResult)
	assert.Equal(t, "abc123", status.LastResult.Token)
}

func TestRefresh_PeriodOverride(t *testing.T) {
	refresher := &fakeRefresher{}
	router := newTestRouter(refresher, nil, 86400)

	rec := do(t, router, http.MethodPost, "/api/v1/refresh", `{"period": 60}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{60.0}, refresher.periods)
}

func TestRefresh_InvalidBody(t *testing.T) {
	refresher := &fakeRefresher{}
	router := newTestRouter(refresher, nil, 86400)

	rec := do(t, router, http.MethodPost, "/api/v1/refresh", `{"period":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, refresher.periods)
}

func TestRefresh_WrongContentType(t *testing.T) {
	router := newTestRouter(&fakeRefresher{}, nil, 86400)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh", strings.NewReader("period=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "127.0.0.1:40000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMessages(t *testing.T) {
	history := sink.NewHistory(10)
	history.Send("first")
	history.Send("second")
	router := newTestRouter(&fakeRefresher{}, history, 86400)

	resp := decodeData[MessagesResponse](t, do(t, router, http.MethodGet, "/api/v1/messages", ""))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "first", resp.Messages[0].Message)
	assert.Equal(t, "second", resp.Messages[1].Message)
}

func TestGetMessages_NoHistory(t *testing.T) {
	router := newTestRouter(&fakeRefresher{}, nil, 86400)

	rec := do(t, router, http.MethodGet, "/api/v1/messages", "")
	assert.JSONEq(t, `{"data":{"messages":[]}}`, rec.Body.String())
}

func TestGetMessages_NilHistory(t *testing.T) {
	var history *sink.History
	router := newTestRouter(&fakeRefresher{}, history, 86400)

	rec := do(t, router, http.MethodGet, "/api/v1/messages", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"messages":[]}}`, rec.Body.String())
}

func TestPrivateSubnetOnly(t *testing.T) {
	router := newTestRouter(&fakeRefresher{}, nil, 86400)

	tests := map[string]int{
		"127.0.0.1:1234":      http.StatusOK,
		"192.168.1.10:1234":   http.StatusOK,
		"[::1]:1234":          http.StatusOK,
		"[fe80::1%eth0]:1234": http.StatusOK,
		"8.8.8.8:1234":        http.StatusForbidden,
		"garbage":             http.StatusForbidden,
	}
	for remote, want := range tests {
		t.Run(remote, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			req.RemoteAddr = remote
			req.Header.Set("X-Forwarded-For", "127.0.0.1")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, want, rec.Code)
		})
	}
}

func TestRecovery(t *testing.T) {
	router := newTestRouter(&fakeRefresher{panics: true}, nil, 86400)

	rec := do(t, router, http.MethodPost, "/api/v1/refresh", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), string(ErrCodeInternalError))
}

func TestNotFound(t *testing.T) {
	router := newTestRouter(&fakeRefresher{}, nil, 86400)

	rec := do(t, router, http.MethodGet, "/api/v1/lists", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), string(ErrCodeNotFound))

	rec = do(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	reg := prom.NewRegistry()
	recorder := metrics.NewRecorder(reg)
	recorder.Observe(feed.Result{Outcome: feed.OutcomeDownloaded, CheckedAt: time.Now()})
	router := NewRouter(NewHandler(&fakeRefresher{}, nil, testFeed, 60), metrics.HTTPHandler(reg))

	rec := do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "keen_threatfeed_refresh_outcomes_total")
}

func TestServer_ServeAndStop(t *testing.T) {
	srv := NewServer("127.0.0.1:0", newTestRouter(&fakeRefresher{}, nil, 60))
	ln, err := srv.Listen()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/v1/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	assert.NoError(t, <-done)
}
