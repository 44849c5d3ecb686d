package discovery

import (
	"context"
	"net"
	"time"

	"github.com/nabbar/svc-fabric/internal/logger"
	"github.com/nabbar/svc-fabric/internal/transport"
)

// queryInterval is the period between QUERY-SERVICE broadcasts.
const queryInterval = time.Second

// ResponseHandler receives one parsed, already-filtered discovery response.
type ResponseHandler func(Info)

// Client periodically broadcasts QUERY-SERVICE and hands every accepted
// response to a ResponseHandler.
type Client struct {
	mc                   *transport.Multicast
	selfDiscoveryEnabled bool
	log                  *logger.Entry
}

// NewClient joins the multicast group on mcAddr:mcPort. selfDiscoveryEnabled
// controls whether responses whose request-from echoes the response's own
// source address are kept (self-hosted discovery) or dropped.
func NewClient(mcAddr string, mcPort int, selfDiscoveryEnabled bool, log *logger.Entry) (*Client, error) {
	mc, e := transport.NewMulticast(mcAddr, mcPort)
	if e != nil {
		return nil, e
	}

	return &Client{mc: mc, selfDiscoveryEnabled: selfDiscoveryEnabled, log: log}, nil
}

// Close releases the multicast socket.
func (c *Client) Close() error {
	return c.mc.Close()
}

// Run drives both halves of the client loop until ctx is cancelled: a 1s
// query ticker and the response receive loop, which invokes handler for
// every accepted response.
func (c *Client) Run(ctx context.Context, handler ResponseHandler) {
	go c.mc.Run(ctx, func(src *net.UDPAddr, payload []byte) {
		c.onDatagram(src, payload, handler)
	})

	t := time.NewTicker(queryInterval)
	defer t.Stop()

	c.query()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.query()
		}
	}
}

func (c *Client) query() {
	if e := c.mc.SendToGroup([]byte(queryPayload)); e != nil && c.log != nil {
		c.log.Warn("discovery: failed to send query: " + e.Error())
	}
}

func (c *Client) onDatagram(src *net.UDPAddr, payload []byte, handler ResponseHandler) {
	info, ok := ParseResponse(payload)
	if !ok {
		return
	}

	if shouldDropSelfResponse(c.selfDiscoveryEnabled, info.RequestFrom, src.IP.String()) {
		if c.log != nil {
			c.log.Debug("discovery: dropped self-discovery response from " + src.IP.String())
		}
		return
	}

	info.Address = src.IP
	handler(info)
}

// shouldDropSelfResponse is the self-discovery filter: a response is
// dropped when self-discovery is disabled and the echoed request-from
// address equals the address the response itself came from.
func shouldDropSelfResponse(selfDiscoveryEnabled bool, requestFrom, src string) bool {
	return !selfDiscoveryEnabled && requestFrom == src
}
