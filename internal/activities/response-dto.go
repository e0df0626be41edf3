package activities

// SignupResponse is returned by POST /activities/{name}/signup
type SignupResponse struct {
	Message string `json:"message"`
}

// UnregisterResponse is returned by DELETE /activities/{name}/unregister/{email}
type UnregisterResponse struct {
	Message string `json:"message"`
}
