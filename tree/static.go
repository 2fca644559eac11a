package tree

import (
	"fmt"

	"github.com/dltoth/ssdp"
	"github.com/google/uuid"
)

// MaxChildren bounds how many embedded devices a StaticRoot may own, and
// how many services a StaticRoot or StaticDevice may own, matching the
// config.MaxChildren default (SPEC_FULL.md §3.1).
const MaxChildren = 8

// StaticRoot is a plain, in-memory Root used by tests and the demo program.
// It is built once and never mutated while a server tick is in progress, as
// the spec requires of every device tree.
type StaticRoot struct {
	uuid     string
	typ      string
	name     string
	port     int
	devices  []*StaticDevice
	services []*StaticService
}

// NewStaticRoot builds a root node. If id is empty a fresh UUID is minted.
func NewStaticRoot(id, typ, name string, port int) *StaticRoot {
	if id == "" {
		id = uuid.New().String()
	}
	return &StaticRoot{uuid: id, typ: typ, name: name, port: port}
}

func (r *StaticRoot) UUID() string        { return r.uuid }
func (r *StaticRoot) Type() string        { return r.typ }
func (r *StaticRoot) DisplayName() string { return r.name }
func (r *StaticRoot) IsType(t string) bool { return r.typ == t }
func (r *StaticRoot) Kind() ssdp.Kind     { return ssdp.KindRoot }

func (r *StaticRoot) Location(ifaceAddr string) string { return r.RootLocation(ifaceAddr) }

func (r *StaticRoot) RootLocation(ifaceAddr string) string {
	return fmt.Sprintf("http://%s:%d/%s", ifaceAddr, r.port, r.uuid)
}

func (r *StaticRoot) NumServices() int { return len(r.services) }
func (r *StaticRoot) Services() []Service {
	out := make([]Service, len(r.services))
	for i, s := range r.services {
		out[i] = s
	}
	return out
}

func (r *StaticRoot) NumDevices() int { return len(r.devices) }
func (r *StaticRoot) Devices() []Device {
	out := make([]Device, len(r.devices))
	for i, d := range r.devices {
		out[i] = d
	}
	return out
}

// AddDevice registers an embedded device in this root. It returns an error
// once MaxChildren devices are already registered.
func (r *StaticRoot) AddDevice(id, typ, name string) (*StaticDevice, error) {
	if len(r.devices) >= MaxChildren {
		return nil, fmt.Errorf("ssdp/tree: root %s already has %d embedded devices", r.uuid, MaxChildren)
	}
	if id == "" {
		id = uuid.New().String()
	}
	d := &StaticDevice{uuid: id, typ: typ, name: name, parent: r}
	r.devices = append(r.devices, d)
	return d, nil
}

// AddService registers a root-owned service. It returns an error once
// MaxChildren services are already registered.
func (r *StaticRoot) AddService(id, typ, name string) (*StaticService, error) {
	s, err := newService(id, typ, name, r, &r.services)
	return s, err
}

// StaticDevice is an embedded device belonging to a StaticRoot.
type StaticDevice struct {
	uuid     string
	typ      string
	name     string
	parent   *StaticRoot
	services []*StaticService
}

func (d *StaticDevice) UUID() string         { return d.uuid }
func (d *StaticDevice) Type() string         { return d.typ }
func (d *StaticDevice) DisplayName() string  { return d.name }
func (d *StaticDevice) IsType(t string) bool { return d.typ == t }
func (d *StaticDevice) Kind() ssdp.Kind      { return ssdp.KindDevice }
func (d *StaticDevice) Parent() Root         { return d.parent }

func (d *StaticDevice) Location(ifaceAddr string) string {
	return fmt.Sprintf("%s/%s", d.parent.RootLocation(ifaceAddr), d.uuid)
}

func (d *StaticDevice) NumServices() int { return len(d.services) }
func (d *StaticDevice) Services() []Service {
	out := make([]Service, len(d.services))
	for i, s := range d.services {
		out[i] = s
	}
	return out
}

// AddService registers a device-owned service. It returns an error once
// MaxChildren services are already registered.
func (d *StaticDevice) AddService(id, typ, name string) (*StaticService, error) {
	s, err := newService(id, typ, name, d, &d.services)
	return s, err
}

// StaticService is a leaf node, owned by either a StaticRoot or a
// StaticDevice.
type StaticService struct {
	uuid   string
	typ    string
	name   string
	parent Node
}

func newService(id, typ, name string, parent Node, into *[]*StaticService) (*StaticService, error) {
	if len(*into) >= MaxChildren {
		return nil, fmt.Errorf("ssdp/tree: %s already has %d services", parent.UUID(), MaxChildren)
	}
	if id == "" {
		id = uuid.New().String()
	}
	s := &StaticService{uuid: id, typ: typ, name: name, parent: parent}
	*into = append(*into, s)
	return s, nil
}

func (s *StaticService) UUID() string         { return s.uuid }
func (s *StaticService) Type() string         { return s.typ }
func (s *StaticService) DisplayName() string  { return s.name }
func (s *StaticService) IsType(t string) bool { return s.typ == t }
func (s *StaticService) Kind() ssdp.Kind      { return ssdp.KindService }
func (s *StaticService) ParentDevice() Node   { return s.parent }

func (s *StaticService) Location(ifaceAddr string) string {
	return fmt.Sprintf("%s/%s", s.parent.Location(ifaceAddr), s.uuid)
}
