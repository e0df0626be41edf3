package response

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail string `json:"detail"` // Human-readable reason
}
