// Package metrics records bridge counters and latencies
package metrics

import "time"

// Metric names
const (
	TransferSubmitted = "transfer_submitted"
	TransferFailed    = "transfer_failed"
	TransferRejected  = "transfer_rejected"
	SinkFailed        = "sink_failed"

	EstimateLatency = "estimate_fees"
	TransferLatency = "transfer_nft"
)

type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
