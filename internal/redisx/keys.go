package redisx

import "time"

const (
	// Placement idempotency: idem:order:place:{user_id}:{key} -> order_id
	KeyIdemPlace = "idem:order:place:%s:%s"

	// Cache full order records for the read fast path: order:{order_id} -> json
	KeyOrderCache = "order:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLOrderCache  = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
