package registry

import "github.com/prometheus/client_golang/prometheus"

// EntriesGauge tracks live registry size, the fabric_registry_entries gauge
// of the domain stack.
var EntriesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "fabric_registry_entries",
	Help: "Number of ServiceInfo entries currently held by the registry.",
})

// DispatchTotal counts every dispatch the client runner sends, whether the
// server was picked by ChooseBest or named through ByAddress;
// fabric_dispatch_total in the domain stack table.
var DispatchTotal = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "fabric_dispatch_total",
	Help: "Total number of service-request dispatches sent to a chosen server.",
})
