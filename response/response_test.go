package response

import (
	"strings"
	"testing"

	"github.com/dltoth/ssdp"
	"github.com/dltoth/ssdp/desc"
	"github.com/dltoth/ssdp/header"
)

func TestBuildRootRoundTrips(t *testing.T) {
	n := Node{
		UUID: "R", Type: "urn:x-com:device:Hub:1", DisplayName: "Hub",
		Location: "http://192.168.1.10:1900/R", Kind: ssdp.KindRoot,
		NumDevices: 1, NumServices: 2,
	}
	msg := Build(n, "upnp:rootdevice")

	if !strings.HasSuffix(msg, "\r\n\r\n") {
		t.Fatalf("message must end with CRLF CRLF terminator: %q", msg)
	}
	if !strings.HasPrefix(msg, "HTTP/1.1 200 OK \r\n") {
		t.Fatalf("status line mismatch (note trailing space before CRLF): %q", msg[:20])
	}

	p := header.NewString(msg)
	if !p.IsSearchResponse() {
		t.Fatal("built message should parse as a search response")
	}

	loc, _ := p.HeaderValue("LOCATION")
	if loc != n.Location {
		t.Fatalf("LOCATION round-trip = %q, want %q", loc, n.Location)
	}
	st, _ := p.HeaderValue("ST")
	if st != "upnp:rootdevice" {
		t.Fatalf("ST round-trip = %q", st)
	}
	usn, _ := p.HeaderValue("USN")
	if usn != "uuid:R::urn:x-com:device:Hub:1" {
		t.Fatalf("USN round-trip = %q", usn)
	}
	name, ok := p.DisplayName(ssdp.DescHeader)
	if !ok || name != "Hub" {
		t.Fatalf("DESC.name round-trip = %q, %v", name, ok)
	}

	d, _ := p.HeaderValue(ssdp.DescHeader)
	parsed := desc.Parse(d)
	if parsed.Devices != 1 || parsed.Services != 2 {
		t.Fatalf("DESC counts round-trip = %+v", parsed)
	}
}

func TestBuildDeviceUsesPUUIDNotDevicesCounter(t *testing.T) {
	n := Node{
		UUID: "D1", Type: "urn:x-com:device:Clock:1", DisplayName: "Clock",
		Location: "http://192.168.1.10:1900/R/D1", Kind: ssdp.KindDevice,
		NumServices: 1, ParentUUID: "R",
	}
	msg := Build(n, "uuid:D1")
	p := header.NewString(msg)

	d, _ := p.HeaderValue(ssdp.DescHeader)
	parsed := desc.Parse(d)
	kind, malformed := parsed.Kind()
	if kind != "device" || malformed {
		t.Fatalf("Kind() = %q, %v", kind, malformed)
	}
	if parsed.PUUID != "R" || parsed.HasDevices {
		t.Fatalf("device DESC should carry puuid and no devices counter: %+v", parsed)
	}
}

func TestBuildServiceDescHasOnlyNameAndPUUID(t *testing.T) {
	n := Node{
		UUID: "S2", Type: "urn:x-com:service:Alarm:1", DisplayName: "Alarm",
		Location: "http://192.168.1.10:1900/R/D1/S2", Kind: ssdp.KindService,
		ParentUUID: "D1",
	}
	msg := Build(n, "urn:x-com:service:Alarm:1")
	p := header.NewString(msg)

	d, _ := p.HeaderValue(ssdp.DescHeader)
	parsed := desc.Parse(d)
	if parsed.HasDevices || parsed.HasServices {
		t.Fatalf("service DESC should carry neither devices nor services counters: %+v", parsed)
	}
	if parsed.PUUID != "D1" {
		t.Fatalf("service DESC puuid = %q", parsed.PUUID)
	}
}

func TestEchoedSTIsWhateverWasPassedIn(t *testing.T) {
	n := Node{UUID: "D1", Type: "urn:x-com:device:Clock:1", DisplayName: "Clock", Kind: ssdp.KindDevice}
	msg := Build(n, "uuid:some-other-uuid")
	p := header.NewString(msg)
	st, _ := p.HeaderValue("ST")
	if st != "uuid:some-other-uuid" {
		t.Fatalf("ST should echo the request literal regardless of node type, got %q", st)
	}
}

func TestTruncateReportsOverflow(t *testing.T) {
	msg := "0123456789"
	out, truncated := Truncate(msg, 5)
	if !truncated || out != "01234" {
		t.Fatalf("Truncate() = %q, %v", out, truncated)
	}
	out, truncated = Truncate(msg, 100)
	if truncated || out != msg {
		t.Fatalf("Truncate() should be a no-op under cap: %q, %v", out, truncated)
	}
}
