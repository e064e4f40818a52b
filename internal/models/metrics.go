package models

import "time"

// ClientMetrics is a lightweight snapshot of client-side counters.
type ClientMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	RequestErrors            uint64    `json:"request_errors"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	Resolved                 uint64    `json:"resolved"`
	Unresolved               uint64    `json:"unresolved"`
	ResolutionFailures       uint64    `json:"resolution_failures"`
	StrategyNotFound         uint64    `json:"strategy_not_found"`
	StrategyErrors           uint64    `json:"strategy_errors"`
	GeneratedAt              time.Time `json:"generated_at"`
}
