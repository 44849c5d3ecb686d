package runner

import (
	"context"
	"net"

	"github.com/hashicorp/go-uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nabbar/svc-fabric/internal/config"
	"github.com/nabbar/svc-fabric/internal/discovery"
	"github.com/nabbar/svc-fabric/internal/errs"
	"github.com/nabbar/svc-fabric/internal/logger"
	"github.com/nabbar/svc-fabric/internal/monitor"
	"github.com/nabbar/svc-fabric/internal/service"
	"github.com/nabbar/svc-fabric/internal/transport"
)

// ServerRunner drives the server side's lifecycle: it owns the ephemeral
// TLS material, the discovery/monitor/service listeners, and the sampler,
// and supervises them all under one cancellable errgroup.Group.
type ServerRunner struct {
	cfg *config.Server
	cb  ServerCallbacks
	log *logger.Entry
}

func NewServerRunner(cfg *config.Server, cb ServerCallbacks, log *logger.Entry) *ServerRunner {
	return &ServerRunner{cfg: cfg, cb: cb, log: log}
}

// Run blocks until ctx is cancelled or a component fails unrecoverably. A
// configuration error (failing to bind a port, generate TLS material)
// returns immediately; only configuration errors propagate to the runner's
// return code.
func (r *ServerRunner) Run(ctx context.Context) error {
	if r.cfg.Run.RunAsDaemon {
		applyDaemonMode(r.log)
	}

	tlsCfg, e := transport.EphemeralServerTLS()
	if e != nil {
		return errs.ErrConfiguration.Error(e)
	}

	sampler := monitor.NewSampler(r.log)

	discSrv, e := discovery.NewServer(r.cfg.Multicast.Address, r.cfg.Multicast.Port, r.cfg.Service.Port, r.cfg.Monitor.Port, r.cb.GetCapability, r.log)
	if e != nil {
		return errs.ErrConfiguration.Error(e)
	}
	defer discSrv.Close()

	monLn, e := monitor.Listen(r.cfg.Monitor.Port)
	if e != nil {
		return errs.ErrConfiguration.Error(e)
	}
	defer monLn.Close()
	monSrv := monitor.NewServer(sampler, r.log)

	svcLn, e := service.Listen(r.cfg.Service.Port, tlsCfg)
	if e != nil {
		return errs.ErrConfiguration.Error(e)
	}
	defer svcLn.Close()
	svcSrv := service.NewServer(r.cfg.Service.ExecPath, r.cb.GetToken, r.cb.VerifyToken, r.cb.Spawn, r.log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		discSrv.Run(gctx)
		return nil
	})

	g.Go(func() error {
		sampler.Run(gctx)
		return nil
	})

	g.Go(func() error {
		monLn.Serve(gctx, monSrv.Handle)
		return nil
	})

	g.Go(func() error {
		svcLn.Serve(gctx, r.withCorrelation(svcSrv.Handle))
		return nil
	})

	if r.log != nil {
		r.log.Info("server runner started")
	}

	return g.Wait()
}

// withCorrelation stamps every accepted service connection with a
// hashicorp/go-uuid correlation id in its log fields before handing it to
// handler, so one TLS channel's handshake and dispatch log lines can be
// grepped together.
func (r *ServerRunner) withCorrelation(handler transport.ConnHandler) transport.ConnHandler {
	return func(ctx context.Context, conn net.Conn) {
		id, e := uuid.GenerateUUID()
		if e != nil {
			id = "unknown"
		}

		if r.log != nil {
			peer := conn.RemoteAddr().String()
			r.log.With(logger.NewFields().Add("correlation_id", id).Add("peer", peer)).
				Debug("service: connection accepted")
		}

		handler(ctx, conn)
	}
}
