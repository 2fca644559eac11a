// Package describe serves the minimal device-description document a
// client fetches from a node's LOCATION, outside the wire protocol
// itself (SPEC_FULL.md §4.7 "Demo program", a Non-goal of the core
// engine). It builds the document with etree the way the retrieval
// pack's DLNA-adjacent repos construct XML trees node-by-node, rather
// than the teacher's raw fmt.Sprintf template in
// internal/upnp/description_xml.go — a good place to exercise a real
// XML library since the engine itself never touches this path.
package describe

import (
	"net/http"
	"strings"

	"github.com/beevik/etree"
	log "github.com/sirupsen/logrus"

	"github.com/dltoth/ssdp/tree"
)

// Document renders node's description.xml body, with its URLs rendered
// against ifaceAddr.
func Document(node tree.Node, ifaceAddr string) string {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0"`)

	root := doc.CreateElement("root")
	root.CreateAttr("xmlns", "urn:schemas-upnp-org:device-1-0")

	spec := root.CreateElement("specVersion")
	spec.CreateElement("major").SetText("1")
	spec.CreateElement("minor").SetText("0")

	dev := root.CreateElement("device")
	dev.CreateElement("deviceType").SetText(node.Type())
	dev.CreateElement("friendlyName").SetText(node.DisplayName())
	dev.CreateElement("UDN").SetText("uuid:" + node.UUID())
	dev.CreateElement("presentationURL").SetText(node.Location(ifaceAddr))

	if owner, ok := node.(tree.ServiceOwner); ok && owner.NumServices() > 0 {
		list := dev.CreateElement("serviceList")
		for _, svc := range owner.Services() {
			s := list.CreateElement("service")
			s.CreateElement("serviceType").SetText(svc.Type())
			s.CreateElement("serviceId").SetText("urn:upnp-org:serviceId:" + svc.UUID())
			s.CreateElement("SCPDURL").SetText(svc.Location(ifaceAddr) + "/scpd.xml")
		}
	}

	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		log.Warnf("ssdp/demo/describe: failed to render description for %s: %v", node.UUID(), err)
		return ""
	}
	return out
}

// Handler builds an http.HandlerFunc serving root's description document
// and, for each embedded device, its own at the path segment matching its
// UUID — mirroring the teacher's single http.HandleFunc("/description.xml", ...)
// registration in internal/upnp/http.go, generalized to the tree's shape.
func Handler(root tree.Root, ifaceAddr string) http.HandlerFunc {
	nodes := map[string]tree.Node{root.UUID(): root}
	for _, d := range root.Devices() {
		nodes[d.UUID()] = d
	}

	return func(w http.ResponseWriter, r *http.Request) {
		trimmed := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), "/description.xml")
		segments := strings.Split(trimmed, "/")
		id := segments[len(segments)-1]
		node, ok := nodes[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		w.Write([]byte(Document(node, ifaceAddr)))
	}
}
