// Package desc parses the DESC.<vendor> compound header value:
// :name:<displayName>:devices:<n>:services:<m>:puuid:<parent-uuid>:
//
// Key order within the value is not significant; key presence distinguishes
// the kind of node the response describes (SPEC_FULL.md §3).
package desc

import "strings"

// Field holds the parsed keys of a DESC value. The Has* flags record which
// keys were present; a key that is absent leaves its value at zero.
type Field struct {
	Name        string
	Devices     int
	HasDevices  bool
	Services    int
	HasServices bool
	PUUID       string
	HasPUUID    bool
}

// Parse splits a DESC header value of the form
// ":k1:v1:k2:v2:...:" into its recognized keys. Unrecognized keys are
// ignored. A trailing value with no following colon is tolerated as the
// value for its key (the last segment of the bag).
func Parse(value string) Field {
	var f Field

	parts := strings.Split(strings.Trim(value, ":"), ":")
	for i := 0; i+1 <= len(parts)-1; i += 2 {
		key, val := parts[i], parts[i+1]
		switch key {
		case "name":
			f.Name = val
		case "devices":
			f.Devices, f.HasDevices = atoiOr0(val), true
		case "services":
			f.Services, f.HasServices = atoiOr0(val), true
		case "puuid":
			f.PUUID, f.HasPUUID = val, true
		}
	}
	return f
}

func atoiOr0(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// Kind classifies the node shape this DESC bag describes. When both PUUID
// and Devices are present the message is malformed; per SPEC_FULL.md §3,
// receivers treat it as an embedded device and ignore Devices.
func (f Field) Kind() (kind string, malformed bool) {
	switch {
	case f.HasPUUID && f.HasDevices:
		return "device", true
	case f.HasPUUID && f.HasServices:
		return "device", false
	case f.HasPUUID:
		return "service", false
	case f.HasDevices:
		return "root", false
	default:
		return "service", false
	}
}
