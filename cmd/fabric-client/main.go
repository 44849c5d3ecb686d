// Command fabric-client is the ClientRunner binary: it discovers fabric
// servers on the LAN, grades them, and keeps a persistent TLS channel to
// each so a dispatch request can be served immediately.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/nabbar/svc-fabric/internal/cli"
	"github.com/nabbar/svc-fabric/internal/config"
	"github.com/nabbar/svc-fabric/internal/logger"
	"github.com/nabbar/svc-fabric/internal/registry"
	"github.com/nabbar/svc-fabric/internal/runner"
)

func main() {
	log := logger.New(logrus.InfoLevel, nil).WithFields("fabric-client", logger.NewFields())

	var metricsAddr string

	cmd := cli.ClientCommand(func(cfg *config.Client) int {
		return runClient(cfg, metricsAddr, log)
	})
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9091", "address to serve /metrics on")

	if e := cmd.Execute(); e != nil {
		log.Error("command failed", e)
		os.Exit(1)
	}
}

func runClient(cfg *config.Client, metricsAddr string, log *logger.Entry) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(registry.EntriesGauge, registry.DispatchTotal)

	go serveMetrics(ctx, metricsAddr, reg, log)

	cb := runner.ClientCallbacks{
		GetToken:    defaultGetToken,
		VerifyToken: defaultVerifyToken,
	}

	r := runner.NewClientRunner(cfg, cb, log)

	if e := r.Run(ctx); e != nil {
		log.Error("client runner stopped with error", e)
		return 1
	}

	return 0
}

// defaultGetToken/defaultVerifyToken mirror the server binary's
// environment-variable shared secret; see cmd/fabric-server for the
// rationale.
func defaultGetToken() string {
	return os.Getenv("FABRIC_TOKEN")
}

func defaultVerifyToken(token string) bool {
	expected := os.Getenv("FABRIC_TOKEN")
	return expected != "" && token == expected
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, log *logger.Entry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if e := srv.ListenAndServe(); e != nil && e != http.ErrServerClosed && log != nil {
		log.Warn("metrics: server stopped: " + e.Error())
	}
}
