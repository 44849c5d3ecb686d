package service

import (
	"bufio"
	"context"
	"crypto/tls"
	"net"
	"strings"

	"github.com/nabbar/svc-fabric/internal/logger"
	"github.com/nabbar/svc-fabric/internal/transport"
)

// GetToken returns the token this side presents to its peer.
type GetToken func() string

// VerifyToken checks a peer-presented token.
type VerifyToken func(token string) bool

// Spawn launches argv as the requested service process.
type Spawn func(argv []string) error

// Server accepts TLS connections, drives the verify-token handshake, and
// dispatches authorized service-request messages to Spawn.
type Server struct {
	execPath     string
	getToken     GetToken
	verifyToken  VerifyToken
	spawn        Spawn
	log          *logger.Entry
	onAuthorized func(peer string)
}

func NewServer(execPath string, getToken GetToken, verifyToken VerifyToken, spawn Spawn, log *logger.Entry) *Server {
	return &Server{execPath: execPath, getToken: getToken, verifyToken: verifyToken, spawn: spawn, log: log}
}

// OnAuthorized registers a hook invoked once a connection completes the
// token handshake. Used by the runner wiring and by tests to observe
// completion without polling.
func (s *Server) OnAuthorized(hook func(peer string)) {
	s.onAuthorized = hook
}

// Listen binds port behind tlsCfg. The returned server must be driven with
// Serve(ctx, srv.Handle).
func Listen(port int, tlsCfg *tls.Config) (*transport.TCPServer, error) {
	return transport.ListenTLS(port, tlsCfg)
}

// Handle drives one accepted connection's handshake and request loop until
// it closes or ctx is cancelled. It matches transport.ConnHandler and never
// propagates an error: failures are logged and the connection is closed.
func (s *Server) Handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	peer := peerIP(conn)
	r := bufio.NewReader(conn)
	authorized := false

	// An empty local token skips the handshake entirely: the channel stays
	// open but never authorizes, so every request on it is rejected.
	token := s.getToken()
	if token == "" {
		if s.log != nil {
			s.log.Warn("service: no local token, connection from " + peer + " will never authorize")
		}
	} else if _, e := conn.Write(encodeVerifyToken(token)); e != nil {
		if s.log != nil {
			s.log.Error("service: failed to send verify-token to "+peer, e)
		}
		return
	}

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

		msg, ok := parseMessage(raw)
		if !ok {
			if s.log != nil {
				s.log.Warn("service: unknown scheme from " + peer)
			}
			continue
		}

		switch msg.scheme {
		case schemeVerifyToken:
			if token == "" {
				continue
			}

			if !s.verifyToken(msg.body) {
				if s.log != nil {
					s.log.Warn("service: rejected peer token from " + peer)
				}
				return
			}

			authorized = true

			if _, e = conn.Write(encodeVerifyDone()); e != nil {
				return
			}

			if s.onAuthorized != nil {
				s.onAuthorized(peer)
			}
		case schemeRequest:
			if !authorized {
				if s.log != nil {
					s.log.Warn("service: request from unauthorized peer " + peer)
				}
				continue
			}

			s.dispatch(peer, splitArgs(msg.body))
		}
	}
}

// dispatch rebuilds argv: the reserved --enable-castanets flag is
// stripped from whatever the caller sent, the configured executable is
// placed at argv[0], and the peer address is reattached as both
// --enable-castanets and --server-address.
func (s *Server) dispatch(peer string, args []string) {
	filtered := make([]string, 0, len(args))

	for _, a := range args {
		if a == "--enable-castanets" || strings.HasPrefix(a, "--enable-castanets=") {
			continue
		}
		filtered = append(filtered, a)
	}

	if len(filtered) == 0 {
		filtered = []string{"_", "--type=renderer"}
	}

	// A leading binary path is the peer's own dispatcher; replace it so the
	// child runs the configured executable. Flag-only command lines get the
	// executable prepended instead.
	if filtered[0] == "_" || strings.HasPrefix(filtered[0], "/") {
		filtered[0] = s.execPath
	} else {
		filtered = append([]string{s.execPath}, filtered...)
	}

	filtered = append(filtered, "--enable-castanets="+peer, "--server-address="+peer)

	if e := s.spawn(filtered); e != nil && s.log != nil {
		s.log.Error("service: spawn failed for peer "+peer, e)
	}
}

func peerIP(conn net.Conn) string {
	if a, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		return a.IP.String()
	}

	host, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
	return host
}
