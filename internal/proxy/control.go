package proxy

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/huangsam/swagent/core"
	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
)

// ControlPrefix is the path prefix of the event endpoints. Requests under it never reach the origin.
const ControlPrefix = "/_swagent/"

var errNoActiveWorker = errors.New("no active worker")

// workerInfo is returned by the state endpoint.
type workerInfo struct {
	Version string                `json:"version"`
	State   schema.LifecycleState `json:"state"`
}

// control delivers push, click, subscription and sync events to the active worker.
type control struct {
	reg *core.Registration
}

// NewServeMux returns the full serving surface: event endpoints under ControlPrefix
// and the offline-first proxy for everything else.
func NewServeMux(cfg *contract.Config, reg *core.Registration, logger *log.Logger) *http.ServeMux {
	c := &control{reg: reg}
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+ControlPrefix+"worker", c.handleWorker)
	mux.HandleFunc("POST "+ControlPrefix+"push", c.handlePush)
	mux.HandleFunc("POST "+ControlPrefix+"notificationclick", c.handleClick)
	mux.HandleFunc("POST "+ControlPrefix+"pushsubscriptionchange", c.handleSubscriptionChange)
	mux.HandleFunc("POST "+ControlPrefix+"sync", c.handleSync)
	mux.Handle("/", NewHandler(cfg, reg, logger))
	return mux
}

func (c *control) handleWorker(w http.ResponseWriter, _ *http.Request) {
	active := c.reg.Active()
	if active == nil {
		writeError(w, http.StatusServiceUnavailable, errNoActiveWorker)
		return
	}
	writeJSON(w, http.StatusOK, workerInfo{Version: active.Version(), State: active.State()})
}

func (c *control) handlePush(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(data) == 0 {
		data = nil // a push without data
	}
	c.dispatch(w, r, core.PushEvt(data), func(out core.Outcome) any { return out.Notification })
}

func (c *control) handleClick(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n := schema.Notification{Tag: q.Get("tag"), Data: schema.NotificationData{URL: q.Get("url")}}
	c.dispatch(w, r, core.ClickEvt(n, q.Get("action")), nil)
}

func (c *control) handleSubscriptionChange(w http.ResponseWriter, r *http.Request) {
	c.dispatch(w, r, core.SubscriptionChangeEvt(), func(out core.Outcome) any { return out.Subscription })
}

func (c *control) handleSync(w http.ResponseWriter, r *http.Request) {
	c.dispatch(w, r, core.SyncEvt(r.URL.Query().Get("tag")), nil)
}

// dispatch delivers ev and writes body(outcome) as JSON, or 204 when body is nil.
func (c *control) dispatch(w http.ResponseWriter, r *http.Request, ev core.Event, body func(core.Outcome) any) {
	if c.reg.Active() == nil {
		writeError(w, http.StatusServiceUnavailable, errNoActiveWorker)
		return
	}
	out, err := c.reg.Dispatch(r.Context(), ev)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if body == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, body(out))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
