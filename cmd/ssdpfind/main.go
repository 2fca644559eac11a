// Command ssdpfind is a small M-SEARCH client: it issues one search and
// prints every match with a humanized elapsed-time column, the way an
// interactive discovery tool reports "found N seconds ago" results.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/dltoth/ssdp/config"
	"github.com/dltoth/ssdp/query"
	"github.com/dltoth/ssdp/transport"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	target := flag.String("target", "upnp:rootdevice", `search target: "upnp:rootdevice", "uuid:<id>", or a urn:...`)
	timeout := flag.Duration("timeout", 0, "how long to wait for responses (0 uses the config default)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("ssdpfind: %v", err)
	}
	if *timeout <= 0 {
		*timeout = cfg.DefaultQueryTimeout()
	}

	primary, err := transport.PreferredInterface()
	if err != nil {
		log.Fatalf("ssdpfind: no usable local interface: %v", err)
	}

	xport := &transport.UDP{Primary: primary}
	if err := xport.OpenUnicast(primary.Addr, 0); err != nil {
		log.Fatalf("ssdpfind: %v", err)
	}
	defer xport.Close()

	client := query.New(xport, xport)
	client.BufferSize = cfg.PacketBufferBytes
	started := time.Now()

	var matches []query.Match
	switch {
	case *target == "upnp:rootdevice":
		matches, err = client.SearchRoot(*timeout)
	case strings.HasPrefix(*target, "uuid:"):
		matches, err = client.SearchUUID(strings.TrimPrefix(*target, "uuid:"), *timeout)
	default:
		matches, err = client.SearchType(*target, *timeout)
	}
	if err != nil {
		log.Fatalf("ssdpfind: %v", err)
	}

	for _, m := range matches {
		fmt.Printf("%-20s %-15s %-30s %s\n", m.Name, m.PeerAddr, m.USN, humanize.Time(started))
	}
	if len(matches) == 0 {
		fmt.Println("no matching devices found")
		os.Exit(1)
	}
}
