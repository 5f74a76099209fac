// Package ctxkey names the gin.Context keys the gateway sets and reads
// across middleware, controllers, and the dispatch engine.
package ctxkey

const (
	// RequestId is the per-request correlation id, also echoed in the
	// X-Request-Id response header.
	RequestId = "request_id"

	// RequestModel is the model name as requested by the caller, before
	// candidate resolution. Never mutated once set.
	RequestModel = "request_model"

	// StartTime is the time.Time the request began being handled.
	StartTime = "start_time"
)
