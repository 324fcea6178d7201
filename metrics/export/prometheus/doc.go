// Package prometheus renders goCred engine metrics in Prometheus text exposition format.
//
// The exporter reads snapshots on demand and never registers anything globally; callers
// mount [Exporter.Handler] wherever they serve metrics.
package prometheus
