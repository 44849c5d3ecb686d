package service

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"
)

// addrConn wraps a net.Pipe half so RemoteAddr reports a chosen peer IP,
// matching what a real TCP/TLS connection would report.
type addrConn struct {
	net.Conn
	remote net.Addr
}

func (a *addrConn) RemoteAddr() net.Addr { return a.remote }

func tcpAddr(ip string) net.Addr {
	return &net.TCPAddr{IP: net.ParseIP(ip), Port: 54321}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

// A complete verify-token handshake marks both sides authorized/connected.
func TestHandshakeSucceeds(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer serverSide.Close()
	defer clientSide.Close()

	serverConn := &addrConn{Conn: serverSide, remote: tcpAddr("10.0.0.5")}

	srv := NewServer("/opt/app/renderer", func() string { return "S" }, func(tok string) bool { return tok == "C" }, nil, nil)

	var mu sync.Mutex
	authorizedPeer := ""
	srv.OnAuthorized(func(peer string) {
		mu.Lock()
		authorizedPeer = peer
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go srv.Handle(ctx, serverConn)

	cli := newClient(ctx, clientSide, func() string { return "C" }, func(tok string) bool { return tok == "S" }, nil)

	waitFor(t, time.Second, func() bool { return cli.State() == StateConnected })

	mu.Lock()
	peer := authorizedPeer
	mu.Unlock()

	if peer != "10.0.0.5" {
		t.Fatalf("expected server to mark 10.0.0.5 authorized, got %q", peer)
	}
}

// A client that rejects the server's token closes, leaving the server
// connection unauthorized.
func TestHandshakeRejectedByClient(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer serverSide.Close()
	defer clientSide.Close()

	serverConn := &addrConn{Conn: serverSide, remote: tcpAddr("10.0.0.5")}

	srv := NewServer("/opt/app/renderer", func() string { return "S" }, func(tok string) bool { return true }, nil, nil)

	authorized := false
	srv.OnAuthorized(func(peer string) { authorized = true })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go srv.Handle(ctx, serverConn)

	cli := newClient(ctx, clientSide, func() string { return "C" }, func(tok string) bool { return false }, nil)

	waitFor(t, time.Second, func() bool { return cli.State() == StateDisconnected })

	if authorized {
		t.Fatalf("expected server connection to remain unauthorized")
	}
}

// A dispatched request arrives with argv rewritten as documented.
func TestDispatchRewritesArgv(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer serverSide.Close()
	defer clientSide.Close()

	serverConn := &addrConn{Conn: serverSide, remote: tcpAddr("10.0.0.5")}

	var mu sync.Mutex
	var gotArgv []string
	spawned := make(chan struct{})

	spawn := func(argv []string) error {
		mu.Lock()
		gotArgv = append([]string(nil), argv...)
		mu.Unlock()
		close(spawned)
		return nil
	}

	srv := NewServer("/opt/app/renderer", func() string { return "S" }, func(tok string) bool { return tok == "C" }, spawn, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go srv.Handle(ctx, serverConn)

	cli := newClient(ctx, clientSide, func() string { return "C" }, func(tok string) bool { return tok == "S" }, nil)
	waitFor(t, time.Second, func() bool { return cli.State() == StateConnected })

	if e := cli.Dispatch([]string{"--type=renderer", "--flag=x"}); e != nil {
		t.Fatalf("Dispatch failed: %v", e)
	}

	select {
	case <-spawned:
	case <-time.After(time.Second):
		t.Fatalf("spawn was not called")
	}

	mu.Lock()
	defer mu.Unlock()

	want := []string{"/opt/app/renderer", "--type=renderer", "--flag=x", "--enable-castanets=10.0.0.5", "--server-address=10.0.0.5"}
	if len(gotArgv) != len(want) {
		t.Fatalf("got argv %v want %v", gotArgv, want)
	}
	for i := range want {
		if gotArgv[i] != want[i] {
			t.Fatalf("got argv %v want %v", gotArgv, want)
		}
	}
}

// A client that sends its own dispatcher's binary path as argv[0] gets it
// rewritten to the server's configured executable rather than prepended.
func TestDispatchRewritesLeadingBinaryPath(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer serverSide.Close()
	defer clientSide.Close()

	serverConn := &addrConn{Conn: serverSide, remote: tcpAddr("10.0.0.5")}

	var mu sync.Mutex
	var gotArgv []string
	spawned := make(chan struct{})

	spawn := func(argv []string) error {
		mu.Lock()
		gotArgv = append([]string(nil), argv...)
		mu.Unlock()
		close(spawned)
		return nil
	}

	srv := NewServer("/opt/app/renderer", func() string { return "S" }, func(tok string) bool { return tok == "C" }, spawn, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go srv.Handle(ctx, serverConn)

	cli := newClient(ctx, clientSide, func() string { return "C" }, func(tok string) bool { return tok == "S" }, nil)
	waitFor(t, time.Second, func() bool { return cli.State() == StateConnected })

	if e := cli.Dispatch([]string{"/usr/lib/browser/browser", "--type=renderer"}); e != nil {
		t.Fatalf("Dispatch failed: %v", e)
	}

	select {
	case <-spawned:
	case <-time.After(time.Second):
		t.Fatalf("spawn was not called")
	}

	mu.Lock()
	defer mu.Unlock()

	if len(gotArgv) == 0 || gotArgv[0] != "/opt/app/renderer" {
		t.Fatalf("expected argv[0] rewritten to the configured executable, got %v", gotArgv)
	}
	if len(gotArgv) != 4 {
		t.Fatalf("expected the binary path to be replaced, not prepended: %v", gotArgv)
	}
}

// A server whose GetToken returns empty never starts the handshake and
// never authorizes, even if the peer pushes a token of its own.
func TestHandshakeSkippedWhenServerTokenEmpty(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer serverSide.Close()
	defer clientSide.Close()

	serverConn := &addrConn{Conn: serverSide, remote: tcpAddr("10.0.0.5")}

	spawned := false
	spawn := func(argv []string) error {
		spawned = true
		return nil
	}

	srv := NewServer("/opt/app/renderer", func() string { return "" }, func(tok string) bool { return true }, spawn, nil)

	authorized := false
	srv.OnAuthorized(func(peer string) { authorized = true })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go srv.Handle(ctx, serverConn)

	if _, e := clientSide.Write(encodeVerifyToken("C")); e != nil {
		t.Fatalf("write failed: %v", e)
	}
	if _, e := clientSide.Write(EncodeRequest([]string{"--type=renderer"})); e != nil {
		t.Fatalf("write failed: %v", e)
	}

	time.Sleep(100 * time.Millisecond)

	if authorized {
		t.Fatalf("expected the connection to never authorize without a local token")
	}
	if spawned {
		t.Fatalf("expected spawn not to be called on an unauthorized channel")
	}
}

// A request on a non-authorized connection must not spawn.
func TestDispatchWithoutAuthDoesNotSpawn(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer serverSide.Close()
	defer clientSide.Close()

	serverConn := &addrConn{Conn: serverSide, remote: tcpAddr("10.0.0.5")}

	spawned := false
	spawn := func(argv []string) error {
		spawned = true
		return nil
	}

	srv := NewServer("/opt/app/renderer", func() string { return "S" }, func(tok string) bool { return false }, spawn, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go srv.Handle(ctx, serverConn)

	// Drain the server's verify-token push, then send a request directly
	// without completing the handshake.
	buf := make([]byte, 256)
	_, _ = clientSide.Read(buf)

	if _, e := clientSide.Write(EncodeRequest([]string{"--type=renderer"})); e != nil {
		t.Fatalf("write failed: %v", e)
	}

	time.Sleep(100 * time.Millisecond)

	if spawned {
		t.Fatalf("expected spawn not to be called for an unauthorized request")
	}
}
