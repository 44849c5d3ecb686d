package monitor

import (
	"bufio"
	"context"
	"net"

	"github.com/nabbar/svc-fabric/internal/logger"
	"github.com/nabbar/svc-fabric/internal/transport"
)

// Server accepts plain TCP connections on the monitor port and answers each
// QUERY-MONITORING with the Sampler's latest reading.
type Server struct {
	sampler *Sampler
	log     *logger.Entry
}

func NewServer(sampler *Sampler, log *logger.Entry) *Server {
	return &Server{sampler: sampler, log: log}
}

// Listen binds port for plain TCP; the returned listener must be driven
// with Serve(ctx, srv.Handle).
func Listen(port int) (*transport.TCPServer, error) {
	return transport.ListenTCP(port)
}

// Handle answers every QUERY-MONITORING received on conn until it closes or
// ctx is cancelled. It matches transport.ConnHandler.
func (s *Server) Handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	r := bufio.NewReader(conn)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		raw, e := r.ReadBytes(0)
		if e != nil {
			return
		}

		if !IsQuery(raw) {
			continue
		}

		if _, e := conn.Write(EncodeReply(s.sampler.Info())); e != nil {
			if s.log != nil {
				s.log.Warn("monitor: failed to send reply: " + e.Error())
			}
			return
		}
	}
}
