package goCred

import (
	"io"
	"log/slog"

	internalaudit "github.com/MrEthical07/goCred/internal/audit"
)

// AuditEvent is the record delivered to an [AuditSink]. It never carries plaintext
// passwords or stored credential values.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the Engine's async dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink drops audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink writes audit events into a buffered channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// SlogSink forwards audit events to a structured logger.
type SlogSink = internalaudit.SlogSink

// NewChannelSink returns a ChannelSink buffering up to buffer events.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing JSON lines to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewSlogSink returns a sink logging through logger. A nil logger discards.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return internalaudit.NewSlogSink(logger)
}
