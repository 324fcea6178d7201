// Package otel exposes goCred engine metrics as OpenTelemetry observable instruments.
//
// Counters map to Int64ObservableCounter. The latency histogram is published as one
// cumulative Int64ObservableGauge per bucket plus a count gauge, because observable
// histograms are not part of the OTel metric API. Values are read from the engine
// snapshot inside a single registered callback.
package otel
