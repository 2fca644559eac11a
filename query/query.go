// Package query implements the client half of the protocol: building an
// M-SEARCH request, sending it to the multicast group, and collecting
// matching responses with a deadline that resets on each match
// (SPEC_FULL.md §4.5). It is grounded on the teacher's query-and-collect
// loop in ssdp/server.go (its SearchDevices path) translated to a
// blocking ReadFromUDP-with-deadline loop instead of goroutine fan-in,
// matching this engine's single-threaded, no-channels design (§5).
package query

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dltoth/ssdp"
	"github.com/dltoth/ssdp/classify"
	"github.com/dltoth/ssdp/desc"
	"github.com/dltoth/ssdp/header"
	"github.com/dltoth/ssdp/ssdperr"
)

// Sender is the narrow capability query needs to transmit an M-SEARCH.
type Sender interface {
	SendMulticast(group string, port int, msg []byte) error
}

// Receiver is the narrow capability query needs to collect responses.
// Implementations should treat a timeout as ok=false, err=nil (the
// transport.UDP contract), so the poll loop can distinguish "nothing yet"
// from a real socket failure.
type Receiver interface {
	RecvUnicast(buf []byte, timeout time.Duration) (n int, peerAddr string, peerPort int, ok bool, err error)
}

// Match is one accepted response: the ST it answered, the advertised
// display name, and the raw DESC fields for callers that want more detail
// (USN, device tree shape, etc).
type Match struct {
	ST       string
	PeerAddr string
	PeerPort int
	Location string
	Name     string
	Desc     desc.Field
	USN      string
}

// Client runs M-SEARCH queries against a Sender/Receiver pair.
type Client struct {
	Sender   Sender
	Receiver Receiver

	// Group/Port are the SSDP multicast group, defaulting to
	// ssdp.MulticastGroup/ssdp.Port when zero.
	Group string
	Port  int

	// PollInterval bounds each individual Receiver.RecvUnicast call; the
	// search loop re-checks the overall deadline between polls.
	PollInterval time.Duration

	// BufferSize sizes the receive buffer for each poll, normally set from
	// config.Config.PacketBufferBytes.
	BufferSize int

	// Now defaults to time.Now; tests override it for determinism.
	Now func() time.Time
}

// New builds a Client with the given sender/receiver and protocol
// defaults.
func New(sender Sender, receiver Receiver) *Client {
	return &Client{
		Sender:       sender,
		Receiver:     receiver,
		Group:        ssdp.MulticastGroup,
		Port:         ssdp.Port,
		PollInterval: 100 * time.Millisecond,
		BufferSize:   1500,
		Now:          time.Now,
	}
}

// buildSearch renders an M-SEARCH request for st. man and mx follow the
// wire format of every response template in this engine: CRLF-terminated
// headers, a blank-line terminator.
func buildSearch(st, gateHeader string, mxSeconds int) string {
	return fmt.Sprintf(
		"M-SEARCH * HTTP/1.1\r\n"+
			"HOST: %s:%d\r\n"+
			"MAN: \"ssdp:discover\"\r\n"+
			"MX: %d\r\n"+
			"ST: %s\r\n"+
			"%s: ssdp:all\r\n"+
			"\r\n",
		ssdp.MulticastGroup, ssdp.Port, mxSeconds, st, gateHeader,
	)
}

// SearchRoot issues "upnp:rootdevice", SearchUUID issues "uuid:<id>", and
// SearchType issues a "urn:..." device/service type search. Each runs the
// same receive loop with the target string baked in as the exact-match
// filter (SPEC_FULL.md §4.5): only responses whose ST equals the query
// target, and whose DESC.name is non-empty, are accepted.
func (c *Client) SearchRoot(timeout time.Duration) ([]Match, error) {
	return c.search("upnp:rootdevice", timeout, false)
}

// SearchUUID searches for a single device or root by uuid and returns as
// soon as one match arrives (SPEC_FULL.md §4.5 "early exit").
func (c *Client) SearchUUID(uuid string, timeout time.Duration) ([]Match, error) {
	return c.search("uuid:"+uuid, timeout, true)
}

// SearchType searches for every node advertising urn as its type. It
// rejects a urn that cannot classify as a type search, mirroring the
// dispatcher's own classify.ParseTarget contract.
func (c *Client) SearchType(urn string, timeout time.Duration) ([]Match, error) {
	if target, _, _ := classify.ParseTarget(urn); target != classify.TargetURN {
		return nil, ssdperr.New(ssdperr.InvalidSearchTarget, "query.SearchType", nil)
	}
	return c.search(urn, timeout, false)
}

func (c *Client) search(st string, timeout time.Duration, earlyExit bool) ([]Match, error) {
	req := buildSearch(st, ssdp.GateHeader, int(timeout/time.Second))
	if err := c.Sender.SendMulticast(c.Group, c.Port, []byte(req)); err != nil {
		return nil, ssdperr.New(ssdperr.TransportSend, "query.search", err)
	}
	log.Debugf("ssdp/query: sent M-SEARCH ST=%s", st)

	var matches []Match
	deadline := c.now().Add(timeout)
	buf := make([]byte, c.BufferSize)

	for c.now().Before(deadline) {
		poll := c.PollInterval
		if remaining := deadline.Sub(c.now()); remaining < poll {
			poll = remaining
		}
		n, peerAddr, peerPort, ok, err := c.Receiver.RecvUnicast(buf, poll)
		if err != nil {
			return matches, fmt.Errorf("query: recv: %w", err)
		}
		if !ok {
			continue
		}
		m, accept := c.parseMatch(buf[:n], st, peerAddr, peerPort)
		if !accept {
			continue
		}
		matches = append(matches, m)
		log.Debugf("ssdp/query: matched %s at %s:%d (%s)", st, peerAddr, peerPort, m.Name)
		if earlyExit {
			return matches, nil
		}
		// A fresh match resets the deadline (SPEC_FULL.md §4.5), so a
		// slow-to-answer tree of many nodes is not cut short mid-burst.
		deadline = c.now().Add(timeout)
	}
	return matches, nil
}

func (c *Client) parseMatch(raw []byte, wantST, peerAddr string, peerPort int) (Match, bool) {
	pkt := header.New(raw)
	if !pkt.IsSearchResponse() {
		return Match{}, false
	}
	st, ok := pkt.HeaderValue("ST")
	if !ok || st != wantST {
		return Match{}, false
	}
	name, ok := pkt.DisplayName(ssdp.DescHeader)
	if !ok || name == "" {
		return Match{}, false
	}
	loc, _ := pkt.HeaderValue("LOCATION")
	usn, _ := pkt.HeaderValue("USN")
	descVal, _ := pkt.HeaderValue(ssdp.DescHeader)

	return Match{
		ST:       st,
		PeerAddr: peerAddr,
		PeerPort: peerPort,
		Location: loc,
		Name:     name,
		Desc:     desc.Parse(descVal),
		USN:      usn,
	}, true
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
