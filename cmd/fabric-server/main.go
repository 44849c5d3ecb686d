// Command fabric-server is the ServerRunner binary: it announces this
// machine on the LAN, answers monitoring queries, and dispatches verified
// command lines to local child processes.
package main

import (
	"context"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/nabbar/svc-fabric/internal/cli"
	"github.com/nabbar/svc-fabric/internal/config"
	"github.com/nabbar/svc-fabric/internal/logger"
	"github.com/nabbar/svc-fabric/internal/monitor"
	"github.com/nabbar/svc-fabric/internal/runner"
)

func main() {
	log := logger.New(logrus.InfoLevel, nil).WithFields("fabric-server", logger.NewFields())

	var metricsAddr string

	cmd := cli.ServerCommand(func(cfg *config.Server) int {
		return runServer(cfg, metricsAddr, log)
	})
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "address to serve /metrics on")

	if e := cmd.Execute(); e != nil {
		log.Error("command failed", e)
		os.Exit(1)
	}
}

func runServer(cfg *config.Server, metricsAddr string, log *logger.Entry) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(monitor.CPUUsageGauge)

	go serveMetrics(ctx, metricsAddr, reg, log)

	cb := runner.ServerCallbacks{
		GetToken:      defaultGetToken,
		VerifyToken:   defaultVerifyToken,
		GetCapability: func() string { return "renderer" },
		Spawn:         spawnChild,
	}

	r := runner.NewServerRunner(cfg, cb, log)

	if e := r.Run(ctx); e != nil {
		log.Error("server runner stopped with error", e)
		return 1
	}

	return 0
}

// defaultGetToken/defaultVerifyToken are the standalone binary's stand-in
// for the injected identity token callbacks: a shared secret read from the
// environment. An embedding application (e.g. the D-Bus front door) would
// replace these with an OIDC ID token exchange.
func defaultGetToken() string {
	return os.Getenv("FABRIC_TOKEN")
}

func defaultVerifyToken(token string) bool {
	expected := os.Getenv("FABRIC_TOKEN")
	return expected != "" && token == expected
}

func spawnChild(argv []string) error {
	if len(argv) == 0 {
		return nil
	}

	c := exec.Command(argv[0], argv[1:]...)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Start()
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
