// Package tree defines the device-tree contract the dispatcher and
// response builder consume (SPEC_FULL.md §6). The tree itself — its
// storage, its mutation, its web-UI URLs — is an external collaborator;
// this package only states the narrow interface the core needs, plus one
// concrete, in-memory implementation (StaticRoot) used by tests and the
// demo program.
package tree

import "github.com/dltoth/ssdp"

// Node is the common surface every tree member exposes.
type Node interface {
	UUID() string
	Type() string
	DisplayName() string
	IsType(t string) bool
	// Location renders the node's LOCATION URL against the interface
	// address chosen for the requesting peer.
	Location(ifaceAddr string) string
	Kind() ssdp.Kind
}

// ServiceOwner is implemented by any node that owns a list of services
// (Root and Device).
type ServiceOwner interface {
	Node
	Services() []Service
	NumServices() int
}

// Root is the top of a tree: it owns embedded devices and its own
// services.
type Root interface {
	ServiceOwner
	Devices() []Device
	NumDevices() int
	RootLocation(ifaceAddr string) string
}

// Device is an embedded device owned by a Root.
type Device interface {
	ServiceOwner
	Parent() Root
}

// Service is a leaf, owned by either a Root or a Device.
type Service interface {
	Node
	ParentDevice() Node
}

// AsRoot reports whether n is a Root, returning it if so. This mirrors the
// "kind discrimination" contract of SPEC_FULL.md §6 without requiring a
// type switch at every call site.
func AsRoot(n Node) (Root, bool) {
	r, ok := n.(Root)
	return r, ok
}
