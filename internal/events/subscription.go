package events

import "time"

// SubscriptionStart is emitted once a subscription's source stream is open.
type SubscriptionStart struct {
	SubscriptionID string
	OperationName  string
	Field          string
}

// SubscriptionEvent is emitted for every source event mapped to a result.
type SubscriptionEvent struct {
	SubscriptionID string
	Errors         int
	Duration       time.Duration
}

// SubscriptionStop is emitted when the mapped stream is closed or exhausted.
type SubscriptionStop struct {
	SubscriptionID string
	Events         int64
}
