package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wareflow/ruleengine/internal/snapshot"
)

// heartbeatInterval keeps idle streams alive through proxies.
const heartbeatInterval = 15 * time.Second

// handleStreamSnapshot handles GET /v1/rules/stream
//
// Serves a Server-Sent Events stream of snapshot changes. The first event is
// always "init" with the current ETag, so a client can decide immediately
// whether its cached snapshot is stale; every swap after that arrives as an
// "update" event. Clients re-fetch /v1/rules/snapshot when the ETag moves.
func (s *Server) handleStreamSnapshot(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		InternalError(w, r, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	changes, unsub := snapshot.Subscribe()
	defer unsub()

	snap := snapshot.Load()
	writeSSEEvent(w, "init", snapshot.Change{
		ETag:      snap.ETag,
		Rules:     len(snap.Rules),
		UpdatedAt: snap.UpdatedAt,
	})
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case change, open := <-changes:
			if !open {
				return
			}
			writeSSEEvent(w, "update", change)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

func writeSSEEvent(w io.Writer, event string, data any) {
	payload, _ := json.Marshal(data)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}
