// Package response formats the three SSDP response templates — root,
// embedded device, service — into the wire format described in
// SPEC_FULL.md §4.3: HTTP/1.1 200 OK status line, CRLF-terminated
// headers, a blank line terminator. It intentionally reuses fmt.Sprintf
// the way ssdp/server.go (the teacher) builds NOTIFY/response text,
// rather than a text/template — there is no structural reuse across the
// three templates worth a template engine, and the teacher never reaches
// for one on the wire-protocol path either (it keeps text/template for
// device-description XML, a different, out-of-scope concern here).
package response

import (
	"fmt"
	"strings"

	"github.com/dltoth/ssdp"
)

// MaxSize is the minimum response-buffer size the spec requires
// (SPEC_FULL.md §3).
const MaxSize = 1500

// Node is the minimal view response.Build needs from a tree node; it is
// satisfied by tree.Node plus the counts a root or device carries.
type Node struct {
	UUID        string
	Type        string
	DisplayName string
	Location    string

	// Kind distinguishes which of the three templates applies.
	Kind ssdp.Kind

	// NumDevices/NumServices are only meaningful when Kind == KindRoot or
	// KindDevice; ParentUUID is only meaningful when Kind == KindDevice or
	// KindService.
	NumDevices  int
	NumServices int
	ParentUUID  string
}

// Build formats one response datagram for node, echoing st verbatim as
// required by SPEC_FULL.md §4.4. The returned string is ready to write to
// a UDP socket as-is; callers that size a fixed buffer should check
// len(result) <= MaxSize and truncate/log rather than retry (§4.3).
func Build(node Node, st string) string {
	var descBody strings.Builder
	descBody.WriteString(":name:")
	descBody.WriteString(node.DisplayName)

	switch node.Kind {
	case ssdp.KindRoot:
		fmt.Fprintf(&descBody, ":devices:%d:services:%d:", node.NumDevices, node.NumServices)
	case ssdp.KindDevice:
		fmt.Fprintf(&descBody, ":services:%d:puuid:%s:", node.NumServices, node.ParentUUID)
	case ssdp.KindService:
		fmt.Fprintf(&descBody, ":puuid:%s:", node.ParentUUID)
	}

	msg := fmt.Sprintf(
		"HTTP/1.1 200 OK \r\n"+
			"CACHE-CONTROL: max-age = %d\r\n"+
			"LOCATION: %s\r\n"+
			"ST: %s\r\n"+
			"USN: uuid:%s::%s\r\n"+
			"%s: %s\r\n"+
			"\r\n",
		ssdp.MaxAge,
		node.Location,
		st,
		node.UUID,
		node.Type,
		ssdp.DescHeader,
		descBody.String(),
	)
	return msg
}

// Truncate bounds msg to a fixed-size output buffer of size cap, the way
// a reused response buffer would in the original engine. It reports
// whether truncation occurred, so callers can log it per SPEC_FULL.md
// §4.3 ("Output buffer overflow truncates and is reported to logging").
func Truncate(msg string, cap int) (string, bool) {
	if len(msg) <= cap {
		return msg, false
	}
	return msg[:cap], true
}
