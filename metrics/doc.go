// Package metrics exposes search activity as Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	collector, err := metrics.NewCollector(reg)
//	...
//	results := engine.SearchWithMonitor(ctx, query, notes, collector.Monitor())
//
// Short-lived processes can hand the registry to prometheus.WriteToTextfile
// for the node exporter textfile collector.
package metrics
