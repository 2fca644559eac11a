// Package transport provides the UDP socket primitives the engine treats
// as an external collaborator (SPEC_FULL.md §6): opening the multicast and
// unicast sockets, sending and receiving datagrams, and resolving which
// local interface a given peer address belongs to. It is implemented over
// net.UDPConn the same way every repo in the retrieval pack reaches for
// stdlib net for SSDP/DLNA sockets (ssdp/server.go, internal/ssdp/*.go).
package transport

import (
	"net"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dltoth/ssdp/ssdperr"
)

// Interface describes one local IPv4 interface usable for SSDP traffic:
// its address and subnet mask. SPEC_FULL.md §1 caps a host at two
// interfaces (an infrastructure NIC and, optionally, a soft-AP).
type Interface struct {
	Addr net.IP
	Mask net.IPMask
}

// Contains reports whether peer lies on this interface's subnet.
func (i Interface) Contains(peer net.IP) bool {
	if i.Addr == nil || i.Mask == nil || peer == nil {
		return false
	}
	network := i.Addr.Mask(i.Mask)
	peerNetwork := peer.Mask(i.Mask)
	return network.Equal(peerNetwork)
}

// UDP is the concrete Transport: one multicast socket bound to the SSDP
// group/port, and one unicast socket used both to send unicast replies
// and, for a query client, to receive them.
type UDP struct {
	mcastConn *net.UDPConn
	ucastConn *net.UDPConn

	// Primary is the infrastructure interface; SoftAP, if set, is tried
	// second. interface_of prefers Primary over SoftAP on an overlapping
	// subnet, per SPEC_FULL.md §9 "Interface disambiguation".
	Primary Interface
	SoftAP  *Interface
}

// OpenMulticast joins the SSDP multicast group on port.
func OpenMulticast(group string, port int) (*UDP, error) {
	addr := &net.UDPAddr{IP: net.ParseIP(group), Port: port}
	conn, err := net.ListenMulticastUDP("udp4", nil, addr)
	if err != nil {
		return nil, ssdperr.New(ssdperr.TransportSetup, "transport.OpenMulticast", err)
	}
	_ = conn.SetReadBuffer(8192)
	log.Infof("ssdp/transport: joined multicast group %s:%d", group, port)
	return &UDP{mcastConn: conn}, nil
}

// OpenUnicast binds an ephemeral (or, if port != 0, fixed) UDP port on
// iface's address, used for sending unicast responses/requests and
// receiving unicast replies.
func (u *UDP) OpenUnicast(iface net.IP, port int) error {
	addr := &net.UDPAddr{IP: iface, Port: port}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return ssdperr.New(ssdperr.TransportSetup, "transport.OpenUnicast", err)
	}
	u.ucastConn = conn
	log.Infof("ssdp/transport: unicast socket bound at %s", conn.LocalAddr())
	return nil
}

// LocalPort returns the unicast socket's bound port, or 0 if none is open.
func (u *UDP) LocalPort() int {
	if u.ucastConn == nil {
		return 0
	}
	if addr, ok := u.ucastConn.LocalAddr().(*net.UDPAddr); ok {
		return addr.Port
	}
	return 0
}

// SendMulticast writes msg to the SSDP multicast group.
func (u *UDP) SendMulticast(group string, port int, msg []byte) error {
	if u.ucastConn == nil {
		return ssdperr.New(ssdperr.TransportSend, "transport.SendMulticast", nil)
	}
	addr := &net.UDPAddr{IP: net.ParseIP(group), Port: port}
	_, err := u.ucastConn.WriteToUDP(msg, addr)
	if err != nil {
		return ssdperr.New(ssdperr.TransportSend, "transport.SendMulticast", err)
	}
	return nil
}

// SendUnicast writes msg to addr:port over the unicast socket. It
// satisfies dispatch.Responder; SendMulticast above satisfies query.Sender.
func (u *UDP) SendUnicast(addr string, port int, msg []byte) error {
	if u.ucastConn == nil {
		return ssdperr.New(ssdperr.TransportSend, "transport.SendUnicast", nil)
	}
	dst := &net.UDPAddr{IP: net.ParseIP(addr), Port: port}
	_, err := u.ucastConn.WriteToUDP(msg, dst)
	if err != nil {
		return ssdperr.New(ssdperr.TransportSend, "transport.SendUnicast", err)
	}
	return nil
}

// RecvMulticast performs one non-blocking-ish receive on the multicast
// socket, bounded by timeout. ok is false on timeout; err is non-nil only
// on a real socket error.
func (u *UDP) RecvMulticast(buf []byte, timeout time.Duration) (n int, peerAddr string, peerPort int, ok bool, err error) {
	return recvOn(u.mcastConn, buf, timeout)
}

// RecvUnicast is RecvMulticast for the unicast socket.
func (u *UDP) RecvUnicast(buf []byte, timeout time.Duration) (n int, peerAddr string, peerPort int, ok bool, err error) {
	return recvOn(u.ucastConn, buf, timeout)
}

func recvOn(conn *net.UDPConn, buf []byte, timeout time.Duration) (n int, peerAddr string, peerPort int, ok bool, err error) {
	if conn == nil {
		return 0, "", 0, false, nil
	}
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, "", 0, false, ssdperr.New(ssdperr.TransportSetup, "transport.recv", err)
	}
	n, src, rerr := conn.ReadFromUDP(buf)
	if rerr != nil {
		if ne, isNetErr := rerr.(net.Error); isNetErr && ne.Timeout() {
			return 0, "", 0, false, nil
		}
		return 0, "", 0, false, ssdperr.New(ssdperr.TransportSetup, "transport.recv", rerr)
	}
	return n, src.IP.String(), src.Port, true, nil
}

// InterfaceOf resolves which local interface peer's address lies on,
// preferring Primary over SoftAP on an overlapping subnet
// (SPEC_FULL.md §9). It returns "0.0.0.0" if neither matches.
func (u *UDP) InterfaceOf(peerAddr string) string {
	peer := net.ParseIP(peerAddr)
	if peer != nil {
		if u.Primary.Contains(peer) {
			return u.Primary.Addr.String()
		}
		if u.SoftAP != nil && u.SoftAP.Contains(peer) {
			return u.SoftAP.Addr.String()
		}
	}
	return "0.0.0.0"
}

// Close releases both sockets.
func (u *UDP) Close() {
	if u.mcastConn != nil {
		u.mcastConn.Close()
	}
	if u.ucastConn != nil {
		u.ucastConn.Close()
	}
}

// PreferredInterface picks the local interface the OS routing table would
// use to reach outside traffic, by dialing a UDP socket to a public
// address and reading back the local endpoint without sending a single
// byte. This is a cheap, portable alternative to walking net.Interfaces()
// and guessing which one is "the" uplink.
func PreferredInterface() (Interface, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return Interface{}, ssdperr.New(ssdperr.TransportSetup, "transport.PreferredInterface", err)
	}
	defer conn.Close()

	local := conn.LocalAddr().(*net.UDPAddr)
	ifaces, err := LocalInterfaces()
	if err != nil {
		return Interface{}, err
	}
	for _, iface := range ifaces {
		if iface.Addr.Equal(local.IP) {
			return iface, nil
		}
	}
	// The dial succeeded but none of our enumerated interfaces carries
	// that exact address (e.g. it's behind NAT on a loopback-only host in
	// a sandboxed test run); fall back to a /32 view of it.
	return Interface{Addr: local.IP, Mask: net.CIDRMask(32, 32)}, nil
}

// LocalInterfaces enumerates up-and-running, non-loopback IPv4 interfaces,
// in the order net.Interfaces() reports them. PreferredInterface uses it to
// pick the Primary interface for the demo programs, which never set SoftAP;
// a caller that wants deterministic selection builds Interface values
// directly instead.
func LocalInterfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, ssdperr.New(ssdperr.TransportSetup, "transport.LocalInterfaces", err)
	}
	var out []Interface
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipnet.IP.To4()
			if ip4 == nil {
				continue
			}
			out = append(out, Interface{Addr: ip4, Mask: ipnet.Mask})
		}
	}
	return out, nil
}
