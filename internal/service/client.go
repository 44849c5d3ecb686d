package service

import (
	"bufio"
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/svc-fabric/internal/errs"
	"github.com/nabbar/svc-fabric/internal/logger"
	"github.com/nabbar/svc-fabric/internal/transport"
)

// Client dials a peer's service.Server, completes the verify-token
// handshake, and exposes Dispatch for subsequent service-request messages.
// A Client is safe for concurrent Dispatch calls once Connected.
type Client struct {
	conn        net.Conn
	state       int32
	getToken    GetToken
	verifyToken VerifyToken
	log         *logger.Entry
	writeMu     sync.Mutex
}

// dialTimeout bounds the TCP+TLS dial so an unreachable server cannot
// stall the caller; the token handshake runs in the client's own goroutine
// afterwards.
const dialTimeout = 3 * time.Second

// Dial connects to addr:port over TLS (peer certificate verification is
// skipped; see transport.ClientTLSConfig) and starts the handshake in the
// background. Callers observe progress via State().
func Dial(ctx context.Context, addr string, port int, getToken GetToken, verifyToken VerifyToken, log *logger.Entry) (*Client, error) {
	dctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, e := transport.DialTLS(dctx, addr, port, transport.ClientTLSConfig())
	if e != nil {
		return nil, e
	}

	return newClient(ctx, conn, getToken, verifyToken, log), nil
}

// newClient wraps an already-established conn (TLS or otherwise) and starts
// the handshake loop in the background. Split out of Dial so tests can drive
// the state machine over a net.Pipe without a real TLS handshake.
func newClient(ctx context.Context, conn net.Conn, getToken GetToken, verifyToken VerifyToken, log *logger.Entry) *Client {
	c := &Client{conn: conn, getToken: getToken, verifyToken: verifyToken, log: log}
	go c.run(ctx)
	return c
}

func (c *Client) run(ctx context.Context) {
	defer c.setState(StateDisconnected)
	defer c.conn.Close()

	go func() {
		<-ctx.Done()
		_ = c.conn.Close()
	}()

	r := bufio.NewReader(c.conn)

	for {
		raw, e := r.ReadBytes(0)
		if e != nil {
			return
		}

		msg, ok := parseMessage(raw)
		if !ok {
			continue
		}

		switch msg.scheme {
		case schemeVerifyToken:
			if !c.verifyToken(msg.body) {
				if c.log != nil {
					c.log.Warn("service: rejected server token")
				}
				return
			}

			c.setState(StateConnecting)

			if e = c.write(encodeVerifyToken(c.getToken())); e != nil {
				return
			}
		case schemeVerifyDone:
			c.setState(StateConnected)
		}
	}
}

func (c *Client) write(b []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, e := c.conn.Write(b)
	return e
}

func (c *Client) setState(s State) {
	atomic.StoreInt32(&c.state, int32(s))
}

// State returns the client's current handshake state.
func (c *Client) State() State {
	return State(atomic.LoadInt32(&c.state))
}

// Dispatch sends a service-request for args. Concurrent callers serialize
// on the connection's write lock, so multiple goroutines may Dispatch on
// the same connected peer without corrupting the wire framing.
func (c *Client) Dispatch(args []string) error {
	if c.State() != StateConnected {
		return errs.ErrPeerClosed.Error(nil)
	}

	return c.write(EncodeRequest(args))
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
