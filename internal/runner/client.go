package runner

import (
	"context"
	"net"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nabbar/svc-fabric/internal/bus"
	"github.com/nabbar/svc-fabric/internal/config"
	"github.com/nabbar/svc-fabric/internal/discovery"
	"github.com/nabbar/svc-fabric/internal/errs"
	"github.com/nabbar/svc-fabric/internal/logger"
	"github.com/nabbar/svc-fabric/internal/monitor"
	"github.com/nabbar/svc-fabric/internal/registry"
	"github.com/nabbar/svc-fabric/internal/service"
)

const (
	sweepInterval         = time.Second
	monitorProbeInterval  = 2 * time.Second
	discoveryResponseKind = "discovery.response"
	monitorResponseKind   = "monitor.response"
)

// ClientRunner drives the client side's lifecycle: discovery ticking,
// registry maintenance (sweep + periodic monitor probing of each known
// entry), and the dispatch entry points a D-Bus/JNI front door would call
// into.
type ClientRunner struct {
	cfg *config.Client
	cb  ClientCallbacks
	log *logger.Entry

	bus *bus.Bus
	reg *registry.Registry
	dc  *discovery.Client
}

// NewClientRunner wires a Registry whose DialFunc dials real TLS
// ServiceClients through cb's token callbacks.
func NewClientRunner(cfg *config.Client, cb ClientCallbacks, log *logger.Entry) *ClientRunner {
	b := bus.New()

	dial := func(ctx context.Context, addr string, port int) (registry.ServiceClient, error) {
		return service.Dial(ctx, addr, port, cb.GetToken, cb.VerifyToken, log)
	}

	return &ClientRunner{
		cfg: cfg,
		cb:  cb,
		log: log,
		bus: b,
		reg: registry.New(dial, nil, log),
	}
}

// Run blocks until ctx is cancelled or a component fails unrecoverably.
func (r *ClientRunner) Run(ctx context.Context) error {
	if r.cfg.Run.RunAsDaemon {
		applyDaemonMode(r.log)
	}

	dc, e := discovery.NewClient(r.cfg.Multicast.Address, r.cfg.Multicast.Port, r.cfg.Multicast.SelfDiscoveryEnabled, r.log)
	if e != nil {
		return errs.ErrConfiguration.Error(e)
	}
	defer dc.Close()
	r.dc = dc

	r.bus.Subscribe(discoveryResponseKind, r.onDiscoveryEvent)
	r.bus.Subscribe(monitorResponseKind, r.onMonitorEvent)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		dc.Run(gctx, r.onDiscoveryResponse)
		return nil
	})

	g.Go(func() error {
		r.runSweepLoop(gctx)
		return nil
	})

	g.Go(func() error {
		r.runProbeLoop(gctx)
		return nil
	})

	if r.log != nil {
		r.log.Info("client runner started")
	}

	return g.Wait()
}

func (r *ClientRunner) onDiscoveryResponse(info discovery.Info) {
	r.bus.Publish(bus.Event{Kind: discoveryResponseKind, Payload: info})
}

func (r *ClientRunner) onDiscoveryEvent(e bus.Event) {
	info, ok := e.Payload.(discovery.Info)
	if !ok {
		return
	}
	r.reg.AddServiceInfo(context.Background(), info.Address, info.ServicePort, info.MonitorPort, info.Capability)
}

type monitorUpdate struct {
	key  uint64
	info monitor.Info
}

func (r *ClientRunner) onMonitorEvent(e bus.Event) {
	u, ok := e.Payload.(monitorUpdate)
	if !ok {
		return
	}
	r.reg.UpdateServiceInfo(u.key, u.info)
}

func (r *ClientRunner) runSweepLoop(ctx context.Context) {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if changed := r.reg.Sweep(); changed && r.log != nil {
				r.log.Info("registry size changed to " + strconv.Itoa(r.reg.Len()))
			}
		}
	}
}

// runProbeLoop periodically launches one short-lived monitor.Client per
// known entry: each probe gets its own client rather than a shared,
// long-lived one.
func (r *ClientRunner) runProbeLoop(ctx context.Context) {
	t := time.NewTicker(monitorProbeInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.probeAll(ctx)
		}
	}
}

func (r *ClientRunner) probeAll(ctx context.Context) {
	for _, e := range r.reg.List() {
		go r.probeOne(ctx, e)
	}
}

func (r *ClientRunner) probeOne(ctx context.Context, e *registry.Entry) {
	mc := monitor.NewClient(e.Address.String(), e.MonitorPort, r.log)

	info, err := mc.Probe(ctx)
	if err != nil {
		if r.log != nil {
			r.log.Warn("monitor: probe failed for " + e.Address.String() + ": " + err.Error())
		}
		return
	}

	r.bus.Publish(bus.Event{Kind: monitorResponseKind, Payload: monitorUpdate{key: e.Key, info: info}})
}

// Dispatch implements the dispatch half of the data flow for the D-Bus/JNI
// front door an embedding application owns: pick the best Connected server
// via ChooseBest and send it a service-request.
func (r *ClientRunner) Dispatch(args []string) error {
	best := r.reg.ChooseBest()
	if best == nil {
		return errs.ErrPeerClosed.Error(nil)
	}

	registry.DispatchTotal.Inc()
	return best.Client.Dispatch(args)
}

// DispatchTo implements the "use this specific host" path, built on
// Registry.ByAddress.
func (r *ClientRunner) DispatchTo(addr net.IP, args []string) error {
	e := r.reg.ByAddress(addr)
	if e == nil {
		return errs.ErrPeerClosed.Error(nil)
	}

	registry.DispatchTotal.Inc()
	return e.Client.Dispatch(args)
}
