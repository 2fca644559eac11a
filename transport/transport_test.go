package transport

import (
	"net"
	"testing"
	"time"
)

func mustIP(t *testing.T, s string) net.IP {
	t.Helper()
	ip := net.ParseIP(s)
	if ip == nil {
		t.Fatalf("bad IP literal %q", s)
	}
	return ip
}

func TestInterfaceContains(t *testing.T) {
	iface := Interface{Addr: mustIP(t, "192.168.1.10"), Mask: net.CIDRMask(24, 32)}
	if !iface.Contains(mustIP(t, "192.168.1.200")) {
		t.Fatal("peer on the same /24 should match")
	}
	if iface.Contains(mustIP(t, "10.0.0.5")) {
		t.Fatal("peer on a different subnet should not match")
	}
}

func TestInterfaceOfPrefersPrimaryOverSoftAP(t *testing.T) {
	softAP := Interface{Addr: mustIP(t, "192.168.1.1"), Mask: net.CIDRMask(24, 32)}
	u := &UDP{
		Primary: Interface{Addr: mustIP(t, "192.168.1.10"), Mask: net.CIDRMask(24, 32)},
		SoftAP:  &softAP,
	}
	if got := u.InterfaceOf("192.168.1.200"); got != "192.168.1.10" {
		t.Fatalf("InterfaceOf = %q, want Primary to win on an overlapping subnet", got)
	}
}

func TestInterfaceOfFallsBackToSoftAP(t *testing.T) {
	softAP := Interface{Addr: mustIP(t, "10.0.0.1"), Mask: net.CIDRMask(24, 32)}
	u := &UDP{
		Primary: Interface{Addr: mustIP(t, "192.168.1.10"), Mask: net.CIDRMask(24, 32)},
		SoftAP:  &softAP,
	}
	if got := u.InterfaceOf("10.0.0.50"); got != "10.0.0.1" {
		t.Fatalf("InterfaceOf = %q, want SoftAP match", got)
	}
}

func TestInterfaceOfNoMatch(t *testing.T) {
	u := &UDP{Primary: Interface{Addr: mustIP(t, "192.168.1.10"), Mask: net.CIDRMask(24, 32)}}
	if got := u.InterfaceOf("172.16.0.1"); got != "0.0.0.0" {
		t.Fatalf("InterfaceOf = %q, want 0.0.0.0 on no match", got)
	}
}

func TestSendWithoutOpenUnicastFails(t *testing.T) {
	u := &UDP{}
	if err := u.SendUnicast("192.168.1.1", 1900, []byte("x")); err == nil {
		t.Fatal("expected an error sending without an open unicast socket")
	}
}

func TestOpenUnicastAndLocalPort(t *testing.T) {
	u := &UDP{}
	if err := u.OpenUnicast(net.ParseIP("127.0.0.1"), 0); err != nil {
		t.Fatalf("OpenUnicast: %v", err)
	}
	defer u.Close()
	if u.LocalPort() == 0 {
		t.Fatal("expected a nonzero ephemeral port")
	}
}

func TestUnicastSendAndReceiveRoundTrip(t *testing.T) {
	a := &UDP{}
	if err := a.OpenUnicast(net.ParseIP("127.0.0.1"), 0); err != nil {
		t.Fatalf("open a: %v", err)
	}
	defer a.Close()
	b := &UDP{}
	if err := b.OpenUnicast(net.ParseIP("127.0.0.1"), 0); err != nil {
		t.Fatalf("open b: %v", err)
	}
	defer b.Close()

	if err := a.SendUnicast("127.0.0.1", b.LocalPort(), []byte("M-SEARCH")); err != nil {
		t.Fatalf("send: %v", err)
	}
	buf := make([]byte, 1500)
	n, addr, _, ok, err := b.RecvUnicast(buf, 2*time.Second)
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if !ok {
		t.Fatal("expected a datagram, got a timeout")
	}
	if string(buf[:n]) != "M-SEARCH" {
		t.Fatalf("payload = %q", buf[:n])
	}
	if addr != "127.0.0.1" {
		t.Fatalf("peer addr = %q", addr)
	}
}

func TestPreferredInterfaceReturnsARealIP(t *testing.T) {
	iface, err := PreferredInterface()
	if err != nil {
		t.Fatalf("PreferredInterface: %v", err)
	}
	if iface.Addr == nil || iface.Addr.IsUnspecified() {
		t.Fatalf("expected a concrete address, got %v", iface.Addr)
	}
}

func TestRecvTimesOutCleanly(t *testing.T) {
	u := &UDP{}
	if err := u.OpenUnicast(net.ParseIP("127.0.0.1"), 0); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer u.Close()
	buf := make([]byte, 64)
	_, _, _, ok, err := u.RecvUnicast(buf, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error on timeout: %v", err)
	}
	if ok {
		t.Fatal("expected timeout (ok=false) with nothing sent")
	}
}

