// Package logstream exposes the engine's logrus output as a live
// Server-Sent-Events feed, for a demo HTTP server to mount alongside its
// description-document handler. It is adapted from the teacher's
// pmolog/webloger.go SSE log dashboard: same ring-buffer-plus-broker
// shape and logrus.Hook wiring, trimmed of its standalone dashboard page
// styling since that concern belongs to whatever UI embeds the feed, not
// to the engine.
package logstream

import (
	"container/ring"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const bufferSize = 200

// Broker fans logrus entries out to every connected SSE client and keeps
// a replay buffer so a client joining mid-stream sees recent history.
type Broker struct {
	mu      sync.RWMutex
	clients map[chan string]bool

	bufMu sync.Mutex
	buf   *ring.Ring

	done     chan struct{}
	closeOne sync.Once
}

// NewBroker builds an empty Broker.
func NewBroker() *Broker {
	return &Broker{
		clients: make(map[chan string]bool),
		buf:     ring.New(bufferSize),
		done:    make(chan struct{}),
	}
}

// history copies out the buffered log lines without holding bufMu during
// any I/O, so a slow SSE client replaying history never blocks Hook.Fire
// for the rest of the process.
func (b *Broker) history() []string {
	b.bufMu.Lock()
	defer b.bufMu.Unlock()

	lines := make([]string, 0, bufferSize)
	b.buf.Do(func(v interface{}) {
		if v != nil {
			lines = append(lines, v.(string))
		}
	})
	return lines
}

// shutdown signals every ServeHTTP goroutine to deregister and return. It
// never touches a client channel directly: only the goroutine that owns a
// channel closes it, so a client can never observe a double close.
func (b *Broker) shutdown() {
	b.closeOne.Do(func() { close(b.done) })
}

// Hook returns a logrus.Hook that feeds every log entry into b. Install
// it with logrus.AddHook.
func (b *Broker) Hook() logrus.Hook { return &hook{b} }

type hook struct{ b *Broker }

func (hook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *hook) Fire(entry *logrus.Entry) error {
	line, err := json.Marshal(map[string]string{
		"time":    entry.Time.Format(time.RFC3339),
		"level":   entry.Level.String(),
		"message": entry.Message,
	})
	if err != nil {
		return err
	}

	h.b.bufMu.Lock()
	h.b.buf.Value = string(line)
	h.b.buf = h.b.buf.Next()
	h.b.bufMu.Unlock()

	h.b.mu.RLock()
	for ch := range h.b.clients {
		select {
		case ch <- string(line):
		default:
		}
	}
	h.b.mu.RUnlock()
	return nil
}

// ServeHTTP streams replayed history followed by live entries as
// text/event-stream, until the request context is cancelled or the broker
// is shut down. Each call owns and closes only its own client channel, so
// shutdown never races a client's own disconnect.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan string, 20)
	b.mu.Lock()
	b.clients[ch] = true
	b.mu.Unlock()

	history := b.history()
	for _, line := range history {
		fmt.Fprintf(w, "data: %s\n\n", line)
	}
	flusher.Flush()

	for {
		select {
		case msg := <-ch:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-r.Context().Done():
			b.mu.Lock()
			delete(b.clients, ch)
			b.mu.Unlock()
			close(ch)
			return
		case <-b.done:
			b.mu.Lock()
			delete(b.clients, ch)
			b.mu.Unlock()
			close(ch)
			return
		}
	}
}

// Install mounts path on mux and disconnects every client when ctx is
// done, matching the teacher's ctx-driven broker shutdown.
func Install(ctx context.Context, mux *http.ServeMux, path string, b *Broker) {
	logrus.AddHook(b.Hook())
	mux.Handle(path, b)

	go func() {
		<-ctx.Done()
		b.shutdown()
	}()
}
