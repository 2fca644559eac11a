// Package ssdp implements a compact discovery-protocol engine modeled on,
// but not identical to, UPnP SSDP. It lets a node advertise a shallow
// hierarchy of logical devices and services on a local IP segment, and lets
// peers locate those entities by multicast query, without the chattiness of
// full SSDP: no NOTIFY announcements, no SUBSCRIBE, no responses to
// unrecognized search targets.
package ssdp

const (
	// MulticastGroup is the SSDP multicast address all requests and
	// unsolicited traffic use.
	MulticastGroup = "239.255.255.250"

	// Port is the well-known SSDP UDP port.
	Port = 1900

	// MaxAge is the default CACHE-CONTROL max-age advertised on responses,
	// in seconds.
	MaxAge = 1800

	// Vendor is the vendor-namespace suffix used for the gate header
	// (ST.<Vendor>) and the description header (DESC.<Vendor>). It is part
	// of the wire contract with peer implementations and must not vary
	// between build configurations.
	Vendor = "LEELANAUSOFTWARE.COM"
)

// GateHeader is the vendor-namespaced header whose presence on an inbound
// M-SEARCH is mandatory; its absence causes a silent drop.
const GateHeader = "ST." + Vendor

// DescHeader is the vendor-namespaced header carrying the colon-keyed
// description bag on outbound responses.
const DescHeader = "DESC." + Vendor

// Kind discriminates the three node shapes in a device tree.
type Kind int

const (
	KindRoot Kind = iota
	KindDevice
	KindService
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "Root"
	case KindDevice:
		return "Device"
	case KindService:
		return "Service"
	default:
		return "Unknown"
	}
}
