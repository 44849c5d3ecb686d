// Package transport implements the three socket primitives the fabric
// needs: UDP multicast, plain TCP, and TLS-wrapped TCP. Each type runs its
// own background loop and delivers reads to the owning component through a
// callback (Open/Close, a receive callback, an accept callback), with
// cancellation driven by a context instead of a terminate-event plus timed
// join.
package transport

import (
	"context"
	"net"
	"syscall"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
)

const multicastTTL = 64

// Handler receives datagrams/bytes read off a socket's loop.
type Handler func(src *net.UDPAddr, payload []byte)

// Multicast is a UDP socket bound for sending to, and receiving from, one
// multicast group. DiscoveryServer and DiscoveryClient both use it: the
// server to receive queries and unicast replies via SendTo, the client for
// both the periodic query and draining responses.
type Multicast struct {
	group *net.UDPAddr
	conn  *net.UDPConn
	pconn *ipv4.PacketConn
}

// NewMulticast binds localPort, joins group (class-D address) with TTL=64
// via IP_ADD_MEMBERSHIP, and returns a Multicast ready to send/receive.
func NewMulticast(group string, port int) (*Multicast, error) {
	grpAddr := &net.UDPAddr{IP: net.ParseIP(group), Port: port}

	lc := net.ListenConfig{Control: controlReuseAddr}
	pc0, e := lc.ListenPacket(context.Background(), "udp4", addrOnPort(port))
	if e != nil {
		return nil, e
	}
	conn := pc0.(*net.UDPConn)

	pc := ipv4.NewPacketConn(conn)
	if e = pc.JoinGroup(nil, &net.UDPAddr{IP: grpAddr.IP}); e != nil {
		conn.Close()
		return nil, e
	}

	if e = pc.SetMulticastTTL(multicastTTL); e != nil {
		conn.Close()
		return nil, e
	}

	// Source-address control messages are best effort; ReadFromUDP already
	// reports the peer address.
	_ = pc.SetControlMessage(ipv4.FlagSrc, true)

	return &Multicast{group: grpAddr, conn: conn, pconn: pc}, nil
}

// SendToGroup writes payload to the joined multicast group.
func (m *Multicast) SendToGroup(payload []byte) error {
	_, e := m.conn.WriteToUDP(payload, m.group)
	return e
}

// SendTo unicasts payload to a specific address, used for discovery
// responses and any other reply that must not go back to the whole group.
func (m *Multicast) SendTo(addr *net.UDPAddr, payload []byte) error {
	_, e := m.conn.WriteToUDP(payload, addr)
	return e
}

// LocalPort returns the bound local UDP port.
func (m *Multicast) LocalPort() int {
	return m.conn.LocalAddr().(*net.UDPAddr).Port
}

// Close leaves the multicast group and releases the socket.
func (m *Multicast) Close() error {
	return m.conn.Close()
}

// Run drives the read loop until ctx is cancelled, invoking handler once
// per received datagram.
func (m *Multicast) Run(ctx context.Context, handler Handler) {
	buf := make([]byte, 4096)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_ = m.conn.SetReadDeadline(deadlineIn(readTick))

		n, src, e := m.conn.ReadFromUDP(buf)
		if e != nil {
			if isTimeout(e) {
				continue
			}
			select {
			case <-ctx.Done():
				return
			default:
				continue
			}
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])
		handler(src, payload)
	}
}

// controlReuseAddr sets SO_REUSEADDR before bind, matching the original's
// socket setup so a restarted process can rebind its port promptly.
func controlReuseAddr(network, address string, c syscall.RawConn) error {
	var sockErr error
	if e := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	}); e != nil {
		return e
	}
	return sockErr
}
