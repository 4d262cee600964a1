package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const streamHeartbeat = 25 * time.Second

// eventsStreamHandler pushes workspace event changes as server-sent events
// until the client goes away.
func (a *Api) eventsStreamHandler(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := r.Context().Value(contextKeyWorkspace).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveWorkspace)
		return
	}

	if a.changes == nil {
		a.serviceUnavailableResponse(w, r, "live updates are not configured")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		a.serverErrorResponse(w, r, fmt.Errorf("streaming unsupported by %T", w))
		return
	}

	changes, cancel, err := a.changes.Subscribe(r.Context(), workspaceID)
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("subscribe: %w", err))
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(streamHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case change, ok := <-changes:
			if !ok {
				return
			}

			data, err := json.Marshal(change)
			if err != nil {
				a.logger.Errorw("marshal change", "event_id", change.EventID, "err", err)
				continue
			}

			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", change.Kind, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
