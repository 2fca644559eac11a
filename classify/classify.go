// Package classify implements the search-dispatch state machine's first
// stage: turning a parsed M-SEARCH packet into a small, plain-data
// "intent" value the dispatcher can act on without touching the packet
// buffer again (SPEC_FULL.md §9, "post-handler pattern").
package classify

import (
	"strings"

	"github.com/dltoth/ssdp/header"
)

// Target is the shape of a search target header.
type Target int

const (
	// TargetInvalid marks an ST that matches none of the three recognized
	// shapes.
	TargetInvalid Target = iota
	TargetRoot
	TargetUUID
	TargetURN
)

// Request is the classifier's plain-data output: everything the dispatcher
// needs, decoupled from the inbound packet buffer.
type Request struct {
	Target Target

	// STLiteral is the raw ST header value, echoed verbatim into every
	// response (SPEC_FULL.md §4.4): it is the query's literal, not
	// necessarily the type of whichever node ends up matching.
	STLiteral string

	// UUID is populated when Target == TargetUUID, with the "uuid:"
	// prefix and any tolerated leading spaces already stripped.
	UUID string

	// URN is populated when Target == TargetURN, equal to STLiteral.
	URN string

	// All is true iff the gate header's value begins with "ssdp:all".
	All bool
}

// ParseTarget classifies a raw ST header value into one of the three
// recognized shapes, without requiring a full packet.
func ParseTarget(st string) (Target, string, string) {
	switch {
	case st == "upnp:rootdevice":
		return TargetRoot, "", ""
	case strings.HasPrefix(st, "uuid:"):
		id := strings.TrimLeft(strings.TrimPrefix(st, "uuid:"), " ")
		return TargetUUID, id, ""
	case strings.HasPrefix(st, "urn:") && (strings.Contains(st, ":device:") || strings.Contains(st, ":service:")):
		return TargetURN, "", st
	default:
		return TargetInvalid, "", ""
	}
}

// gatePrefix is the value prefix that expands a search to embedded
// devices and services. The original engine uses a fixed-length strncmp
// that also accepts "ssdp:all<anything>" (SPEC_FULL.md §9 Open Question);
// this repository preserves that "begins with" behavior for wire
// compatibility with that implementation.
const gatePrefix = "ssdp:all"

// Classify inspects pkt and returns the dispatcher's intent. ok is false
// when the packet must be silently dropped: it is not an M-SEARCH, the
// gate header is absent, or the ST header is absent or unrecognized.
func Classify(pkt *header.Packet, gateHeader string) (Request, bool) {
	if !pkt.IsSearchRequest() {
		return Request{}, false
	}

	gate, present := pkt.HeaderValue(gateHeader)
	if !present {
		return Request{}, false
	}

	st, present := pkt.HeaderValue("ST")
	if !present {
		return Request{}, false
	}

	target, uuid, urn := ParseTarget(st)
	if target == TargetInvalid {
		return Request{}, false
	}

	return Request{
		Target:    target,
		STLiteral: st,
		UUID:      uuid,
		URN:       urn,
		All:       strings.HasPrefix(gate, gatePrefix),
	}, true
}
