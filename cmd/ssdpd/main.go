// Command ssdpd runs a small reference device tree as a discovery
// responder: it answers M-SEARCH requests and serves the root's and each
// embedded device's description.xml, wired together the way the teacher's
// cmd/pmomusic/main.go assembles a server, registers devices, and waits
// on an interrupt signal for a clean shutdown.
package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/dltoth/ssdp/config"
	"github.com/dltoth/ssdp/demo/describe"
	"github.com/dltoth/ssdp/dispatch"
	"github.com/dltoth/ssdp/logstream"
	"github.com/dltoth/ssdp/server"
	"github.com/dltoth/ssdp/transport"
	"github.com/dltoth/ssdp/tree"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	httpPort := flag.Int("http-port", 8080, "port serving description.xml documents")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("ssdpd: %v", err)
	}

	primary, err := transport.PreferredInterface()
	if err != nil {
		log.Fatalf("ssdpd: no usable local interface: %v", err)
	}
	log.Infof("ssdpd: advertising on %s", primary.Addr)

	root := buildReferenceTree(*httpPort)

	xport, err := transport.OpenMulticast(cfg.MulticastGroup, cfg.SSDPPort)
	if err != nil {
		log.Fatalf("ssdpd: %v", err)
	}
	defer xport.Close()
	xport.Primary = primary
	if err := xport.OpenUnicast(primary.Addr, 0); err != nil {
		log.Fatalf("ssdpd: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	mux := http.NewServeMux()
	mux.HandleFunc("/", describe.Handler(root, primary.Addr.String()))
	logstream.Install(ctx, mux, "/logs", logstream.NewBroker())
	httpAddr := net.JoinHostPort(primary.Addr.String(), strconv.Itoa(*httpPort))
	go func() {
		log.Infof("ssdpd: serving descriptions on http://%s/ and logs on /logs", httpAddr)
		if err := http.ListenAndServe(httpAddr, mux); err != nil {
			log.Errorf("ssdpd: description server stopped: %v", err)
		}
	}()

	eng := server.New(root, xport, dispatch.New(cfg.ResponseDelay()))
	eng.SetBufferSize(cfg.PacketBufferBytes)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Infof("ssdpd: shutting down")
		cancel()
	}()

	eng.Run(ctx)
}

func buildReferenceTree(port int) *tree.StaticRoot {
	root := tree.NewStaticRoot("", "urn:x-com:device:Hub:1", "ssdpd reference hub", port)
	if _, err := root.AddService("", "urn:x-com:service:Status:1", "Status"); err != nil {
		log.Fatalf("ssdpd: %v", err)
	}
	clock, err := root.AddDevice("", "urn:x-com:device:Clock:1", "Clock")
	if err != nil {
		log.Fatalf("ssdpd: %v", err)
	}
	if _, err := clock.AddService("", "urn:x-com:service:Alarm:1", "Alarm"); err != nil {
		log.Fatalf("ssdpd: %v", err)
	}
	return root
}
