// Package dispatch implements the search-dispatch state machine: given a
// classified request, walk the local device tree, select the matching
// nodes, and emit one response datagram per match in the order
// SPEC_FULL.md §4.4 requires.
package dispatch

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dltoth/ssdp"
	"github.com/dltoth/ssdp/classify"
	"github.com/dltoth/ssdp/response"
	"github.com/dltoth/ssdp/tree"
)

// Responder is the narrow capability the dispatcher needs from a
// transport: send one datagram to one peer. It is satisfied by
// transport.UDP; dispatch does not otherwise depend on the transport
// package, matching the spec's "thin capability set" framing of
// Transport (SPEC_FULL.md §6).
type Responder interface {
	SendUnicast(addr string, port int, msg []byte) error
}

// Dispatcher walks a device tree and emits responses. The zero value is
// not ready; use New.
type Dispatcher struct {
	// Delay is the fixed pause between successive response datagrams
	// (SPEC_FULL.md §4.4, §9 "Fixed inter-response delay").
	Delay time.Duration
	// Sleep defaults to time.Sleep; tests override it to avoid a real
	// wall-clock wait.
	Sleep func(time.Duration)
}

// New builds a Dispatcher with the given inter-response delay.
func New(delay time.Duration) *Dispatcher {
	return &Dispatcher{Delay: delay, Sleep: time.Sleep}
}

// Dispatch sends every response SPEC_FULL.md §4.4 requires for req against
// root, to peerAddr:peerPort, as seen through ifaceAddr (the interface the
// request arrived on). It returns the number of responses attempted. Send
// failures are logged and do not abort the remaining responses, matching
// §7's "the dispatcher continues to the next node".
func (d *Dispatcher) Dispatch(root tree.Root, req classify.Request, ifaceAddr string, sender Responder, peerAddr string, peerPort int) int {
	var nodes []tree.Node

	switch req.Target {
	case classify.TargetRoot:
		nodes = rootSearch(root, req.All)
	case classify.TargetUUID:
		nodes = uuidSearch(root, req.UUID, req.All)
	case classify.TargetURN:
		nodes = typeSearch(root, req.URN)
	default:
		return 0
	}

	for i, n := range nodes {
		if i > 0 && d.Delay > 0 {
			d.sleep(d.Delay)
		}
		view, ok := nodeView(n, ifaceAddr)
		if !ok {
			continue
		}
		msg := response.Build(view, req.STLiteral)
		if len(msg) > response.MaxSize {
			truncated, _ := response.Truncate(msg, response.MaxSize)
			log.Warnf("ssdp/dispatch: response for %s truncated to %d bytes", n.UUID(), response.MaxSize)
			msg = truncated
		}
		if err := sender.SendUnicast(peerAddr, peerPort, []byte(msg)); err != nil {
			log.Warnf("ssdp/dispatch: failed to send response for %s to %s:%d: %v", n.UUID(), peerAddr, peerPort, err)
			continue
		}
		log.Debugf("ssdp/dispatch: responded to %s:%d with ST=%s USN=uuid:%s::%s", peerAddr, peerPort, req.STLiteral, n.UUID(), n.Type())
	}
	return len(nodes)
}

func (d *Dispatcher) sleep(delay time.Duration) {
	if d.Sleep != nil {
		d.Sleep(delay)
	}
}

// subtree returns root, its services, then each device followed by its own
// services, in registration order. This single traversal is the canonical
// order SPEC_FULL.md §4.4 requires for "root search with ssdp:all", and is
// reused as the natural order for type search and for a uuid-match on the
// root.
func subtree(root tree.Root) []tree.Node {
	nodes := make([]tree.Node, 0, 1+root.NumServices()+root.NumDevices()*2)
	nodes = append(nodes, root)
	for _, s := range root.Services() {
		nodes = append(nodes, s)
	}
	for _, dev := range root.Devices() {
		nodes = append(nodes, dev)
		for _, s := range dev.Services() {
			nodes = append(nodes, s)
		}
	}
	return nodes
}

func rootSearch(root tree.Root, all bool) []tree.Node {
	if !all {
		return []tree.Node{root}
	}
	return subtree(root)
}

func uuidSearch(root tree.Root, uuid string, all bool) []tree.Node {
	if root.UUID() == uuid {
		return rootSearch(root, all)
	}
	for _, dev := range root.Devices() {
		if dev.UUID() != uuid {
			continue
		}
		if !all {
			return []tree.Node{dev}
		}
		nodes := make([]tree.Node, 0, 1+dev.NumServices())
		nodes = append(nodes, dev)
		for _, s := range dev.Services() {
			nodes = append(nodes, s)
		}
		return nodes
	}
	// A uuid match against a service, or no match at all, yields zero
	// responses: only root/device matches are device-style responders.
	return nil
}

func typeSearch(root tree.Root, urn string) []tree.Node {
	var matches []tree.Node
	for _, n := range subtree(root) {
		if n.IsType(urn) {
			matches = append(matches, n)
		}
	}
	return matches
}

func nodeView(n tree.Node, ifaceAddr string) (response.Node, bool) {
	switch v := n.(type) {
	case tree.Root:
		return response.Node{
			UUID: v.UUID(), Type: v.Type(), DisplayName: v.DisplayName(),
			Location: v.Location(ifaceAddr), Kind: ssdp.KindRoot,
			NumDevices: v.NumDevices(), NumServices: v.NumServices(),
		}, true
	case tree.Device:
		return response.Node{
			UUID: v.UUID(), Type: v.Type(), DisplayName: v.DisplayName(),
			Location: v.Location(ifaceAddr), Kind: ssdp.KindDevice,
			NumServices: v.NumServices(), ParentUUID: v.Parent().UUID(),
		}, true
	case tree.Service:
		return response.Node{
			UUID: v.UUID(), Type: v.Type(), DisplayName: v.DisplayName(),
			Location: v.Location(ifaceAddr), Kind: ssdp.KindService,
			ParentUUID: v.ParentDevice().UUID(),
		}, true
	default:
		return response.Node{}, false
	}
}
