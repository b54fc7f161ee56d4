package daemon

import (
	"sync/atomic"
	"time"

	"github.com/thenoetrevino/tablero/internal/rooms"
)

// Metrics tracks daemon statistics using atomic operations for thread-safety
type Metrics struct {
	FramesSent       atomic.Int64
	EventsReceived   atomic.Int64
	ErrorsReplied    atomic.Int64
	Connections      atomic.Int64
	ConnectedClients atomic.Int32
	StartTime        time.Time
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime: time.Now(),
	}
}

// IncFramesSent increments the frames written to sockets
func (m *Metrics) IncFramesSent() {
	m.FramesSent.Add(1)
}

// IncEventsReceived increments the inbound envelopes counter
func (m *Metrics) IncEventsReceived() {
	m.EventsReceived.Add(1)
}

// IncErrorsReplied increments the private error replies counter
func (m *Metrics) IncErrorsReplied() {
	m.ErrorsReplied.Add(1)
}

// IncConnections increments the accepted connections counter
func (m *Metrics) IncConnections() {
	m.Connections.Add(1)
}

// SetConnectedClients sets the current connected clients count
func (m *Metrics) SetConnectedClients(count int32) {
	m.ConnectedClients.Store(count)
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	FramesSent       int64       `json:"frames_sent"`
	EventsReceived   int64       `json:"events_received"`
	ErrorsReplied    int64       `json:"errors_replied"`
	Connections      int64       `json:"connections"`
	ConnectedClients int32       `json:"connected_clients"`
	Rooms            rooms.Stats `json:"rooms"`
	StartTime        time.Time   `json:"start_time"`
	Uptime           string      `json:"uptime"`
}

// GetSnapshot returns a snapshot of current metrics combined with the
// router's counters
func (m *Metrics) GetSnapshot(router rooms.Stats) MetricsSnapshot {
	return MetricsSnapshot{
		FramesSent:       m.FramesSent.Load(),
		EventsReceived:   m.EventsReceived.Load(),
		ErrorsReplied:    m.ErrorsReplied.Load(),
		Connections:      m.Connections.Load(),
		ConnectedClients: m.ConnectedClients.Load(),
		Rooms:            router,
		StartTime:        m.StartTime,
		Uptime:           time.Since(m.StartTime).String(),
	}
}
