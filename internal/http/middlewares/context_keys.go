package middlewares

// Context keys shared across middlewares.
const (
	CtxRequestID = "request_id"
)
