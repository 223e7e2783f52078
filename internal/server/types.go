package server

// ErrorResponse represents the standardized JSON response for an API error.
type ErrorResponse struct {
	// Error is the short error code or status text.
	Error string `json:"error"`
	// Message is a descriptive error message.
	Message string `json:"message,omitempty"`
	// Field names the rejected query parameter, if any.
	Field string `json:"field,omitempty"`
	// RequestID echoes the X-Request-ID of the failed request.
	RequestID string `json:"request_id,omitempty"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// AlgorithmsResponse is returned by /algorithms.
type AlgorithmsResponse struct {
	Algorithms []string `json:"algorithms"`
}
