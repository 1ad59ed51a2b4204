// internal/adapters/in/http/storefront/handler/stream_handler.go
package storefrontHandler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// StreamTracker counts open streams (metrics). May be nil.
type StreamTracker interface {
	StreamOpened()
	StreamClosed()
}

// HeartbeatInterval keeps proxies from closing idle SSE connections.
var HeartbeatInterval = 25 * time.Second

// serveStream runs subscribe for the lifetime of the request and writes every
// emitted row set as one Server-Sent Event. Slow clients only ever see the
// latest snapshot; intermediate ones are dropped.
func serveStream[T any](
	w http.ResponseWriter,
	r *http.Request,
	tag string,
	tracker StreamTracker,
	subscribe func(ctx context.Context, fn func(T)) error,
) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	snapshots := make(chan []byte, 1)
	errc := make(chan error, 1)

	go func() {
		errc <- subscribe(ctx, func(v T) {
			b, err := json.Marshal(v)
			if err != nil {
				log.Printf("[%s] stream encode failed: %v", tag, err)
				return
			}
			select {
			case snapshots <- b:
			default:
				select {
				case <-snapshots:
				default:
				}
				select {
				case snapshots <- b:
				default:
				}
			}
		})
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	if tracker != nil {
		tracker.StreamOpened()
		defer tracker.StreamClosed()
	}
	log.Printf("[%s] stream open path=%s %s", tag, r.URL.Path, who(actor(r)))

	heartbeat := time.NewTicker(HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[%s] stream closed path=%s", tag, r.URL.Path)
			return
		case b := <-snapshots:
			if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", b); err != nil {
				return
			}
			flusher.Flush()
		case err := <-errc:
			select {
			case b := <-snapshots:
				_, _ = fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", b)
				flusher.Flush()
			default:
			}
			if err != nil && ctx.Err() == nil {
				code, msg := classify(err)
				log.Printf("[%s] stream failed status=%d err=%v", tag, code, err)
				payload, _ := json.Marshal(map[string]any{"status": code, "error": msg})
				_, _ = fmt.Fprintf(w, "event: error\ndata: %s\n\n", payload)
				flusher.Flush()
			}
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
