package monitor

import "github.com/prometheus/client_golang/prometheus"

// CPUUsageGauge exposes the Sampler's windowed CPU usage mean as
// fabric_monitor_cpu_usage, the monitor half of the gauges listed in the
// domain stack (the registry package exposes the other half).
var CPUUsageGauge = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "fabric_monitor_cpu_usage",
	Help: "Fraction of CPU time busy over the sampler's 6-sample window.",
})

// Observe updates CPUUsageGauge from the sampler's current reading. Callers
// invoke it once per sample tick; it is safe to call from the sampler
// goroutine concurrently with /metrics scrapes.
func (s *Sampler) Observe() {
	CPUUsageGauge.Set(s.Info().Usage)
}
