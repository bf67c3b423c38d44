package protocol

import "context"

// ctxKey namespaces this package's context values so they never collide
// with keys other packages might install on the same context.
type ctxKey int

const ctxKeyInFlightID ctxKey = iota

// WithInFlightRequestID attaches the id of the request a handler is
// currently servicing to ctx. Dispatch installs this before invoking a
// handler (spec's "ambient per-request service scope", §9 design notes)
// so that anything the handler does on this ctx -- including emitting
// notifications/progress or eventually sending its own Response -- can be
// correlated back to the originating request by a transport without the
// transport needing to parse message bodies.
func WithInFlightRequestID(ctx context.Context, id RequestID) context.Context {
	return context.WithValue(ctx, ctxKeyInFlightID, id)
}

// InFlightRequestIDFromContext returns the id installed by
// WithInFlightRequestID, if any.
func InFlightRequestIDFromContext(ctx context.Context) (RequestID, bool) {
	id, ok := ctx.Value(ctxKeyInFlightID).(RequestID)
	return id, ok
}
