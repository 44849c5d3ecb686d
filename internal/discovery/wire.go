// Package discovery implements the multicast "QUERY-SERVICE" /
// "discovery-response://…" exchange.
package discovery

import (
	"bytes"
	"fmt"
	"net"
	"strconv"
	"strings"
)

const (
	queryPayload = "QUERY-SERVICE\x00"

	responsePrefix       = "discovery-response://"
	legacyResponsePrefix = "discovery://"
)

// Info is one parsed discovery response, independent of which wire form it
// arrived in.
type Info struct {
	Address     net.IP
	ServicePort int
	MonitorPort int
	RequestFrom string
	Capability  string
}

// EncodeResponse renders the current wire form. The fabric never emits the
// legacy form, only accepts it on receive.
func EncodeResponse(servicePort, monitorPort int, requestFrom, capability string) []byte {
	s := fmt.Sprintf("%sservice-port=%d&monitor-port=%d&request-from=%s&capability=%s\x00",
		responsePrefix, servicePort, monitorPort, requestFrom, capability)
	return []byte(s)
}

// IsQuery reports whether payload is the literal query datagram.
func IsQuery(payload []byte) bool {
	return trimNUL(payload) == strings.TrimRight(queryPayload, "\x00")
}

// ParseResponse accepts both the current `discovery-response://k=v&…` form
// and the legacy `discovery://k=v,…` form. It returns ok=false for
// anything else, including malformed payloads, which callers must ignore
// silently.
func ParseResponse(payload []byte) (Info, bool) {
	s := trimNUL(payload)

	switch {
	case strings.HasPrefix(s, responsePrefix):
		return parseKV(strings.TrimPrefix(s, responsePrefix), "&", "=")
	case strings.HasPrefix(s, legacyResponsePrefix):
		return parseLegacy(strings.TrimPrefix(s, legacyResponsePrefix))
	default:
		return Info{}, false
	}
}

// parseLegacy handles `type=query-response,service-port=<d>,monitor-port=<d>`.
func parseLegacy(body string) (Info, bool) {
	info, ok := parseKV(body, ",", "=")
	if !ok {
		return Info{}, false
	}
	return info, info.ServicePort > 0 || info.MonitorPort > 0
}

func parseKV(body, pairSep, kvSep string) (Info, bool) {
	info := Info{}
	found := false

	for _, pair := range strings.Split(body, pairSep) {
		i := strings.Index(pair, kvSep)
		if i < 0 {
			continue
		}

		key := pair[:i]
		val := pair[i+len(kvSep):]

		switch key {
		case "service-port":
			if p, e := strconv.Atoi(val); e == nil {
				info.ServicePort = p
				found = true
			}
		case "monitor-port":
			if p, e := strconv.Atoi(val); e == nil {
				info.MonitorPort = p
				found = true
			}
		case "request-from":
			info.RequestFrom = val
			found = true
		case "capability":
			info.Capability = val
			found = true
		}
	}

	return info, found
}

func trimNUL(payload []byte) string {
	if i := bytes.IndexByte(payload, 0); i >= 0 {
		payload = payload[:i]
	}
	return string(payload)
}
