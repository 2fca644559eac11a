package tree

import "testing"

func buildSample(t *testing.T) *StaticRoot {
	t.Helper()
	root := NewStaticRoot("R", "urn:x-com:device:Hub:1", "Hub", 1900)
	if _, err := root.AddService("S1", "urn:x-com:service:Status:1", "Status"); err != nil {
		t.Fatalf("AddService: %v", err)
	}
	dev, err := root.AddDevice("D1", "urn:x-com:device:Clock:1", "Clock")
	if err != nil {
		t.Fatalf("AddDevice: %v", err)
	}
	if _, err := dev.AddService("S2", "urn:x-com:service:Alarm:1", "Alarm"); err != nil {
		t.Fatalf("AddService on device: %v", err)
	}
	return root
}

func TestStaticTreeShape(t *testing.T) {
	root := buildSample(t)

	if root.NumDevices() != 1 || root.NumServices() != 1 {
		t.Fatalf("root shape = devices=%d services=%d", root.NumDevices(), root.NumServices())
	}

	dev := root.Devices()[0]
	if dev.NumServices() != 1 {
		t.Fatalf("device shape = services=%d", dev.NumServices())
	}
	if dev.Parent().UUID() != root.UUID() {
		t.Fatal("device parent mismatch")
	}

	svc := dev.Services()[0]
	if svc.ParentDevice().UUID() != dev.UUID() {
		t.Fatal("service parent mismatch")
	}
}

func TestStaticTreeLocations(t *testing.T) {
	root := buildSample(t)
	dev := root.Devices()[0]
	svc := dev.Services()[0]

	rootLoc := root.Location("192.168.1.10")
	devLoc := dev.Location("192.168.1.10")
	svcLoc := svc.Location("192.168.1.10")

	if rootLoc != "http://192.168.1.10:1900/R" {
		t.Fatalf("root location = %q", rootLoc)
	}
	if devLoc != rootLoc+"/D1" {
		t.Fatalf("device location = %q, want suffix of root", devLoc)
	}
	if svcLoc != devLoc+"/S2" {
		t.Fatalf("service location = %q, want suffix of device", svcLoc)
	}
}

func TestStaticTreeMaxChildren(t *testing.T) {
	root := NewStaticRoot("R", "urn:x-com:device:Hub:1", "Hub", 1900)
	for i := 0; i < MaxChildren; i++ {
		if _, err := root.AddDevice("", "urn:x-com:device:Widget:1", "Widget"); err != nil {
			t.Fatalf("AddDevice #%d: %v", i, err)
		}
	}
	if _, err := root.AddDevice("", "urn:x-com:device:Widget:1", "Widget"); err == nil {
		t.Fatal("expected an error past MaxChildren devices")
	}
}
