// Package server implements the cooperative, single-tick engine loop:
// drain at most one multicast and one unicast datagram per Tick, classify
// and dispatch each, and let the caller drive the ticking (SPEC_FULL.md
// §4.6, §5 "no internal concurrency"). It is grounded on the teacher's
// ssdp/server.go Start() loop, with the goroutine-per-accept shape
// replaced by the spec's explicit non-blocking, no-channels tick model.
package server

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dltoth/ssdp"
	"github.com/dltoth/ssdp/classify"
	"github.com/dltoth/ssdp/dispatch"
	"github.com/dltoth/ssdp/header"
	"github.com/dltoth/ssdp/tree"
)

// Transport is the capability Server needs from a socket pair: a
// non-blocking-with-timeout receive on each of the multicast and unicast
// sockets, a send for responses, and interface resolution for LOCATION
// rendering.
type Transport interface {
	dispatch.Responder
	RecvMulticast(buf []byte, timeout time.Duration) (n int, peerAddr string, peerPort int, ok bool, err error)
	RecvUnicast(buf []byte, timeout time.Duration) (n int, peerAddr string, peerPort int, ok bool, err error)
	InterfaceOf(peerAddr string) string
}

// Server ties a device tree, a transport, and a dispatcher into the
// engine's single tick.
type Server struct {
	Root       tree.Root
	Transport  Transport
	Dispatcher *dispatch.Dispatcher

	// PollTimeout bounds each of the two per-tick receive attempts.
	PollTimeout time.Duration

	buf []byte
}

// New builds a Server with a default packet buffer sized to the spec's
// minimum receive-buffer requirement (SPEC_FULL.md §3). Call
// SetBufferSize to size it from config.Config.PacketBufferBytes instead.
func New(root tree.Root, transport Transport, dispatcher *dispatch.Dispatcher) *Server {
	return &Server{
		Root:        root,
		Transport:   transport,
		Dispatcher:  dispatcher,
		PollTimeout: 50 * time.Millisecond,
		buf:         make([]byte, 1500),
	}
}

// SetBufferSize replaces the receive buffer with one of n bytes, for
// wiring config.Config.PacketBufferBytes in at startup.
func (s *Server) SetBufferSize(n int) {
	s.buf = make([]byte, n)
}

// Tick drains at most one multicast datagram and one unicast datagram,
// classifying and dispatching each independently. It returns the total
// number of response datagrams attempted across both, as counted by
// Dispatcher.Dispatch. A malformed or irrelevant packet is silently
// dropped, per SPEC_FULL.md §4.2; a receive error is logged and that
// socket contributes zero. Tick returns no error in either case.
func (s *Server) Tick() int {
	sent := 0
	sent += s.drain(s.Transport.RecvMulticast)
	sent += s.drain(s.Transport.RecvUnicast)
	return sent
}

type recvFunc func(buf []byte, timeout time.Duration) (int, string, int, bool, error)

func (s *Server) drain(recv recvFunc) int {
	n, peerAddr, peerPort, ok, err := recv(s.buf, s.PollTimeout)
	if err != nil {
		log.Warnf("ssdp/server: recv error: %v", err)
		return 0
	}
	if !ok {
		return 0
	}

	pkt := header.New(s.buf[:n])
	req, ok := classify.Classify(pkt, ssdp.GateHeader)
	if !ok {
		return 0
	}

	ifaceAddr := s.Transport.InterfaceOf(peerAddr)
	return s.Dispatcher.Dispatch(s.Root, req, ifaceAddr, s.Transport, peerAddr, peerPort)
}

// Run calls Tick in a loop until ctx is done, matching the teacher's
// Start(ctx) convenience wrapper around its own accept loop.
func (s *Server) Run(ctx context.Context) {
	log.Infof("ssdp/server: engine started")
	for {
		select {
		case <-ctx.Done():
			log.Infof("ssdp/server: engine stopped: %v", ctx.Err())
			return
		default:
			s.Tick()
		}
	}
}
