package transport

import (
	"context"
	"crypto/tls"
	"net"
	"strconv"
)

// ConnHandler is invoked once per accepted connection; it owns the
// connection until it returns, at which point Serve closes the connection.
type ConnHandler func(ctx context.Context, conn net.Conn)

// TCPServer accepts plain or TLS-wrapped TCP connections and hands each one
// to a ConnHandler on its own goroutine. Monitoring uses it without TLS;
// Service uses it with a server-side TLS config.
type TCPServer struct {
	ln net.Listener
}

// ListenTCP binds addr:port for plain TCP (used by MonitorServer).
func ListenTCP(port int) (*TCPServer, error) {
	lc := net.ListenConfig{Control: controlReuseAddr}
	ln, e := lc.Listen(context.Background(), "tcp4", addrOnPort(port))
	if e != nil {
		return nil, e
	}
	return &TCPServer{ln: ln}, nil
}

// ListenTLS binds addr:port wrapped in cfg (used by ServiceServer with an
// ephemeral self-signed certificate).
func ListenTLS(port int, cfg *tls.Config) (*TCPServer, error) {
	lc := net.ListenConfig{Control: controlReuseAddr}
	inner, e := lc.Listen(context.Background(), "tcp4", addrOnPort(port))
	if e != nil {
		return nil, e
	}
	return &TCPServer{ln: tls.NewListener(inner, cfg)}, nil
}

func addrOnPort(port int) string {
	return ":" + strconv.Itoa(port)
}

// Port returns the bound local TCP port.
func (s *TCPServer) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// Close stops accepting new connections.
func (s *TCPServer) Close() error {
	return s.ln.Close()
}

// Serve accepts connections until ctx is cancelled or the listener closes,
// dispatching each to handler on its own goroutine.
func (s *TCPServer) Serve(ctx context.Context, handler ConnHandler) {
	go func() {
		<-ctx.Done()
		_ = s.ln.Close()
	}()

	for {
		conn, e := s.ln.Accept()
		if e != nil {
			return
		}

		go func(c net.Conn) {
			done := make(chan struct{})

			go func() {
				select {
				case <-ctx.Done():
					_ = c.Close()
				case <-done:
				}
			}()

			handler(ctx, c)
			_ = c.Close()
			close(done)
		}(conn)
	}
}

// DialTCP connects to addr:port without TLS (MonitorClient).
func DialTCP(ctx context.Context, addr string, port int) (net.Conn, error) {
	d := net.Dialer{}
	return d.DialContext(ctx, "tcp4", net.JoinHostPort(addr, strconv.Itoa(port)))
}

// DialTLS connects to addr:port and performs a client-side TLS handshake
// using cfg, which must not validate the peer certificate — the fabric
// authenticates at the application layer instead (see service package).
func DialTLS(ctx context.Context, addr string, port int, cfg *tls.Config) (net.Conn, error) {
	d := tls.Dialer{Config: cfg}
	return d.DialContext(ctx, "tcp4", net.JoinHostPort(addr, strconv.Itoa(port)))
}
