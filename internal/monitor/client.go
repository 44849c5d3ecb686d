package monitor

import (
	"bufio"
	"context"

	"github.com/nabbar/svc-fabric/internal/logger"
	"github.com/nabbar/svc-fabric/internal/transport"
)

// Client performs exactly one monitoring probe against a server and then is
// done; a fresh probe dials a fresh Client rather than reusing a
// connection.
type Client struct {
	addr string
	port int
	log  *logger.Entry
}

func NewClient(addr string, port int, log *logger.Entry) *Client {
	return &Client{addr: addr, port: port, log: log}
}

// Probe runs the RTT ping and the QUERY-MONITORING round trip and returns a
// fully populated Info (RTT from the local probe, the rest parsed off the
// wire). The connection is closed before Probe returns.
func (c *Client) Probe(ctx context.Context) (Info, error) {
	rtt := ProbeRTT(ctx, c.addr)

	conn, e := transport.DialTCP(ctx, c.addr, c.port)
	if e != nil {
		return Info{}, e
	}
	defer conn.Close()

	if _, e := conn.Write([]byte(queryPayload)); e != nil {
		return Info{}, e
	}

	raw, e := bufio.NewReader(conn).ReadBytes(0)
	if e != nil {
		return Info{}, e
	}

	info, ok := ParseReply(raw)
	if !ok {
		if c.log != nil {
			c.log.Warn("monitor: malformed reply from " + c.addr)
		}
		return Info{}, errMalformedReply
	}

	info.RTT = rtt
	return info, nil
}
