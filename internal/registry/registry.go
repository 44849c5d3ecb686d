// Package registry implements the client-side service provider: the
// (address, service-port) -> ServiceInfo table, its invalidation sweep, and
// the ChooseBest selection function.
package registry

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/nabbar/svc-fabric/internal/logger"
	"github.com/nabbar/svc-fabric/internal/monitor"
	"github.com/nabbar/svc-fabric/internal/service"
)

// staleNeverConnected is the eviction threshold for entries stuck in
// StateNone.
const staleNeverConnected = 3 * time.Second

// ServiceClient is the subset of *service.Client the registry depends on,
// so tests can inject a fake instead of dialing a real TLS connection.
type ServiceClient interface {
	State() service.State
	Dispatch(args []string) error
	Close() error
}

// DialFunc opens a ServiceClient to addr:port, running the token handshake
// in the background. The registry never sees the token callbacks
// themselves — those are closed over by the runner that builds the
// DialFunc.
type DialFunc func(ctx context.Context, addr string, port int) (ServiceClient, error)

// Entry is one row of the registry.
type Entry struct {
	Key         uint64
	Address     net.IP
	ServicePort int
	MonitorPort int
	Client      ServiceClient
	Capability  string
	Monitor     monitor.Info
	LastUpdate  time.Time
	Authorized  bool
}

// Registry is the client-side ServiceProvider. The zero value is not
// usable; use New.
type Registry struct {
	mu      sync.Mutex
	entries map[uint64]*Entry
	dial    DialFunc
	now     func() time.Time
	log     *logger.Entry
}

// New builds a Registry that dials new entries with dial. now defaults to
// time.Now when nil (tests may override it to control the sweep clock).
func New(dial DialFunc, now func() time.Time, log *logger.Entry) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{entries: make(map[uint64]*Entry), dial: dial, now: now, log: log}
}

// Key computes the 64-bit composite lookup key: IPv4 high 32 bits, port
// low 32.
func Key(address net.IP, port int) uint64 {
	ip4 := address.To4()
	if ip4 == nil {
		return uint64(port)
	}
	ipU32 := uint32(ip4[0])<<24 | uint32(ip4[1])<<16 | uint32(ip4[2])<<8 | uint32(ip4[3])
	return uint64(ipU32)<<32 | uint64(uint32(port))
}

// AddServiceInfo records a discovered service: if the key already exists,
// it only refreshes the capability and lastUpdate. Otherwise it dials a
// new ServiceClient outside the lock (handshake happens asynchronously) and
// inserts the entry; a synchronous dial failure discards the attempt.
func (r *Registry) AddServiceInfo(ctx context.Context, address net.IP, servicePort, monitorPort int, capability string) {
	key := Key(address, servicePort)

	r.mu.Lock()
	if e, ok := r.entries[key]; ok {
		if e.Capability != capability {
			e.Capability = capability
		}
		e.LastUpdate = r.now()
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	client, e := r.dial(ctx, address.String(), servicePort)
	if e != nil {
		if r.log != nil {
			r.log.Warn("registry: failed to dial " + address.String())
		}
		return
	}

	entry := &Entry{
		Key:         key,
		Address:     address,
		ServicePort: servicePort,
		MonitorPort: monitorPort,
		Client:      client,
		Capability:  capability,
		LastUpdate:  r.now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[key]; ok {
		// Lost the race with a concurrent AddServiceInfo for the same key;
		// keep the existing entry and discard the one we just dialed.
		client.Close()
		return
	}

	r.entries[key] = entry
	EntriesGauge.Set(float64(len(r.entries)))
}

// UpdateServiceInfo copies monitor fields into the entry identified by key
// and bumps lastUpdate. A key with no matching entry is ignored (the entry
// may have been swept concurrently).
func (r *Registry) UpdateServiceInfo(key uint64, info monitor.Info) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return
	}

	e.Monitor = info
	e.LastUpdate = r.now()

	if e.Client != nil && e.Client.State() == service.StateConnected {
		e.Authorized = true
	}
}

// Sweep runs the invalidation pass: entries whose client is Disconnected
// are removed unconditionally; entries still in StateNone after
// staleNeverConnected are removed as stale-never-connected. It returns
// true if the registry's size changed, so callers can log the list only
// when it does.
func (r *Registry) Sweep() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.entries)
	now := r.now()

	for key, e := range r.entries {
		switch {
		case e.Client != nil && e.Client.State() == service.StateDisconnected:
			e.Client.Close()
			delete(r.entries, key)
		case e.Client != nil && e.Client.State() == service.StateNone && now.Sub(e.LastUpdate) >= staleNeverConnected:
			e.Client.Close()
			delete(r.entries, key)
		}
	}

	EntriesGauge.Set(float64(len(r.entries)))
	return len(r.entries) != before
}

// ChooseBest returns the minimum-score Connected entry, first one
// encountered on ties, nil if none qualify.
func (r *Registry) ChooseBest() *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best *Entry
	var bestScore float64

	for _, e := range r.entries {
		if e.Client == nil || e.Client.State() != service.StateConnected {
			continue
		}

		s := score(e.Monitor.Bandwidth, e.Monitor.Frequency, e.Monitor.Usage, e.Monitor.Cores, e.Monitor.RTT)

		if best == nil || s < bestScore {
			best = e
			bestScore = s
		}
	}

	return best
}

// ByAddress returns the first Connected entry whose address matches addr.
func (r *Registry) ByAddress(addr net.IP) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.Client != nil && e.Client.State() == service.StateConnected && e.Address.Equal(addr) {
			return e
		}
	}

	return nil
}

// Len returns the current entry count.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// List returns a snapshot of all entries, for diagnostics/logging.
func (r *Registry) List() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}
