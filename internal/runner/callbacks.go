// Package runner implements ServerRunner and ClientRunner: the lifecycle
// component that wires together the lower components (transport, discovery,
// monitor, service, registry) under one cancellable errgroup.Group and
// exposes the identity/capability callbacks an embedding application injects,
// as plain fields instead of a D-Bus/JNI front door.
package runner

// ServerCallbacks are the identity and capability callbacks a ServerRunner
// needs from its embedding application.
type ServerCallbacks struct {
	GetToken      func() string
	VerifyToken   func(token string) bool
	GetCapability func() string
	Spawn         func(argv []string) error
}

// ClientCallbacks are the identity callbacks a ClientRunner needs: it
// presents its own token and verifies the server's.
type ClientCallbacks struct {
	GetToken    func() string
	VerifyToken func(token string) bool
}
