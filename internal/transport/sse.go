package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"NetPulse/internal/log"
	"NetPulse/internal/model"
)

const sseClientBuffer = 16

// SSEHub pushes readings to every HTTP client connected to its stream handler using
// Server-Sent Events. A client that falls behind misses readings instead of slowing the
// dispatcher down.
type SSEHub struct {
	channel string
	codec   Codec

	mu      sync.RWMutex
	clients map[chan []byte]struct{}
	closed  bool
	missed  atomic.Uint64
}

// NewSSEHub creates a hub emitting events named after channel. The codec must produce
// single-line text, so only json and text are accepted.
func NewSSEHub(channel string, codec Codec) (*SSEHub, error) {
	switch codec.(type) {
	case JSONCodec, TextCodec:
	default:
		return nil, fmt.Errorf("codec '%s' cannot be carried by server-sent events", codec.Name())
	}
	return &SSEHub{
		channel: channel,
		codec:   codec,
		clients: make(map[chan []byte]struct{}),
	}, nil
}

// Publish fans the encoded reading out to the connected clients.
func (h *SSEHub) Publish(_ context.Context, reading model.Reading) error {
	data, err := h.codec.Encode(reading)
	if err != nil {
		return model.NewPublishError(model.ErrorKindEncode, h.channel, err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return model.NewPublishError(model.ErrorKindClosed, h.channel, model.ErrPublisherClosed)
	}
	for ch := range h.clients {
		select {
		case ch <- data:
		default:
			h.missed.Add(1)
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *SSEHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Missed returns how many client deliveries were skipped because a client was behind.
func (h *SSEHub) Missed() uint64 {
	return h.missed.Load()
}

func (h *SSEHub) subscribe() (chan []byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	ch := make(chan []byte, sseClientBuffer)
	h.clients[ch] = struct{}{}
	return ch, true
}

func (h *SSEHub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

// ServeHTTP streams readings to one client until it disconnects or the hub closes.
func (h *SSEHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, ok := h.subscribe()
	if !ok {
		http.Error(w, "stream closed", http.StatusServiceUnavailable)
		return
	}
	defer h.unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	log.GetLogger().WithField("remote", r.RemoteAddr).Debug("Stream client connected")
	for {
		select {
		case <-r.Context().Done():
			log.GetLogger().WithField("remote", r.RemoteAddr).Debug("Stream client disconnected")
			return
		case data, ok := <-ch:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", h.channel, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// Close disconnects every client; later publishes fail with ErrorKindClosed.
func (h *SSEHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
	return nil
}
