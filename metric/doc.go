// Package metric exposes the Prometheus instruments a Transformer run
// registers: records read/written/dropped, per-record pipeline latency,
// aggregated validation issues, and clique-merge size. Components that need
// a custom instrument register it through MetricsRegistry rather than the
// global prometheus default registerer, so multiple Transformer instances
// in one process do not collide.
package metric
