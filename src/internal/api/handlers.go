package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/maksimkurb/keen-threatfeed/src/internal/feed"
	"github.com/maksimkurb/keen-threatfeed/src/internal/log"
	"github.com/maksimkurb/keen-threatfeed/src/internal/sink"
)

// Refresher runs refresh cycles one at a time. Implemented by feed.Serialized.
type Refresher interface {
	Refresh(ctx context.Context, periodInput any) feed.Result
	Last() (feed.Result, bool)
	State() feed.PersistedState
}

// MessageSource returns recently sent user-facing messages. Implemented by sink.History.
type MessageSource interface {
	Recent() []sink.Entry
}

// Handler manages all API endpoints and dependencies.
type Handler struct {
	refresher Refresher
	messages  MessageSource
	feed      FeedInfo
	period    any
}

// NewHandler creates a handler. period is the configured update period in any
// form feed.ParsePeriod accepts.
func NewHandler(refresher Refresher, messages MessageSource, info FeedInfo, period any) *Handler {
	if seconds, ok := feed.ParsePeriod(period); ok {
		info.UpdatePeriod = seconds
	}
	return &Handler{
		refresher: refresher,
		messages:  messages,
		feed:      info,
		period:    period,
	}
}

// GetStatus returns the persisted state, the last cycle result and when the next download may happen.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	st := h.refresher.State()
	resp := StatusResponse{
		Feed:  h.feed,
		State: st,
	}

	if seconds, ok := feed.ParsePeriod(h.period); ok {
		resp.Enabled = true
		if next := st.NextEligible(seconds); !next.IsZero() {
			resp.NextEligible = &next
		}
	}
	if last, ok := h.refresher.Last(); ok {
		resp.LastResult = &last
	}

	writeJSONData(w, resp)
}

// Refresh runs one refresh cycle and returns its result.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		WriteInvalidRequest(w, "Invalid request body: "+err.Error())
		return
	}

	period := h.period
	if req.Period != nil {
		period = req.Period
	}

	// A client disconnect must not abort a download half way.
	res := h.refresher.Refresh(context.WithoutCancel(r.Context()), period)
	log.Debugf("Refresh requested over API finished with outcome %s", res.Outcome)

	writeJSONData(w, RefreshResponse{Result: res})
}

// GetMessages returns recent user-facing messages.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	messages := []sink.Entry{}
	if h.messages != nil {
		messages = append(messages, h.messages.Recent()...)
	}
	writeJSONData(w, MessagesResponse{Messages: messages})
}

// CheckHealth reports that the API is serving requests.
func (h *Handler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONData(w, HealthResponse{Status: "ok"})
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(DataResponse{Data: data}); err != nil {
		log.Debugf("Failed to write response: %v", err)
	}
}

// writeJSONData writes a successful JSON response with data.
func writeJSONData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

// decodeJSON decodes JSON from the request body.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
