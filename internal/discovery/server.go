package discovery

import (
	"context"
	"net"

	"github.com/nabbar/svc-fabric/internal/logger"
	"github.com/nabbar/svc-fabric/internal/transport"
)

// Server answers every received QUERY-SERVICE datagram with a
// discovery-response naming its own service/monitor ports, the sender's
// address, and the current capability string.
type Server struct {
	mc          *transport.Multicast
	servicePort int
	monitorPort int
	capability  func() string
	log         *logger.Entry
}

// NewServer joins the multicast group on mcAddr:mcPort. capability is
// called for every query; a nil capability yields an empty string.
func NewServer(mcAddr string, mcPort, servicePort, monitorPort int, capability func() string, log *logger.Entry) (*Server, error) {
	mc, e := transport.NewMulticast(mcAddr, mcPort)
	if e != nil {
		return nil, e
	}

	if capability == nil {
		capability = func() string { return "" }
	}

	return &Server{mc: mc, servicePort: servicePort, monitorPort: monitorPort, capability: capability, log: log}, nil
}

// Run drives the receive loop until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	s.mc.Run(ctx, s.onDatagram)
}

// Close releases the multicast socket.
func (s *Server) Close() error {
	return s.mc.Close()
}

func (s *Server) onDatagram(src *net.UDPAddr, payload []byte) {
	if !IsQuery(payload) {
		return
	}

	resp := EncodeResponse(s.servicePort, s.monitorPort, src.IP.String(), s.capability())

	if e := s.mc.SendTo(src, resp); e != nil && s.log != nil {
		s.log.Warn("discovery: failed to send response: " + e.Error())
	}
}
