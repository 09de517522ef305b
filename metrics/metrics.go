package metrics

import "github.com/prometheus/client_golang/prometheus"

// Label constants.
const (
	LblType   = "type"
	LblResult = "result"
	LblPool   = "pool"

	LabelHandshake = "handshake"
	LabelQuery     = "query"

	opSucc   = "ok"
	opFailed = "err"
)

var (
	// ConnGauge tracks the number of open connections.
	ConnGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "obclient",
			Subsystem: "conn",
			Name:      "open",
			Help:      "Number of open connections.",
		})

	// PacketIOCounter counts packets read from and written to the wire.
	PacketIOCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "obclient",
			Subsystem: "wire",
			Name:      "packet_total",
			Help:      "Counter of packets, labeled by direction.",
		}, []string{LblType})

	// PacketIOBytes counts payload bytes read from and written to the wire.
	PacketIOBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "obclient",
			Subsystem: "wire",
			Name:      "packet_bytes_total",
			Help:      "Counter of packet payload bytes, labeled by direction.",
		}, []string{LblType})

	// HandshakeCounter counts handshake attempts by result.
	HandshakeCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "obclient",
			Subsystem: "conn",
			Name:      "handshake_total",
			Help:      "Counter of handshakes, labeled by result.",
		}, []string{LblResult})

	// QueryDurationHistogram measures wall time of a query round trip.
	QueryDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "obclient",
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Bucketed histogram of query round-trip time.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 22), // 0.5ms ~ 1048s
		}, []string{LblResult})

	// ServerErrorCounter counts ErrorResponse packets received mid-stream.
	ServerErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "obclient",
			Subsystem: "query",
			Name:      "server_error_total",
			Help:      "Counter of server error responses.",
		})

	// TimeJumpBackCounter measures the count of system time jumps backward.
	TimeJumpBackCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "obclient",
			Subsystem: "monitor",
			Name:      "time_jump_back_total",
			Help:      "Counter of system time jumps backward.",
		})

	// PanicCounter measures the count of panics.
	PanicCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "obclient",
			Subsystem: "client",
			Name:      "panic_total",
			Help:      "Counter of panic.",
		}, []string{LblType})
)

// Direction labels for PacketIOCounter / PacketIOBytes.
const (
	DirRead  = "read"
	DirWrite = "write"
)

// RetLabel returns "ok" when err == nil and "err" when err != nil.
// This could be useful when you need to observe the operation result.
func RetLabel(err error) string {
	if err == nil {
		return opSucc
	}
	return opFailed
}

// RegisterMetrics registers the metrics of this client.
func RegisterMetrics() {
	prometheus.MustRegister(ConnGauge)
	prometheus.MustRegister(PacketIOCounter)
	prometheus.MustRegister(PacketIOBytes)
	prometheus.MustRegister(HandshakeCounter)
	prometheus.MustRegister(QueryDurationHistogram)
	prometheus.MustRegister(ServerErrorCounter)
	prometheus.MustRegister(TimeJumpBackCounter)
	prometheus.MustRegister(PanicCounter)
}
