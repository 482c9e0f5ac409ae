package inbound

import "time"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string `json:"message"`
}

type SecretStatusResponse struct {
	Exists bool   `json:"exists"`
	Masked string `json:"masked,omitempty"`
}

type SecretCreateResponse struct {
	Regenerated bool `json:"regenerated"`
}

func (SecretCreateResponse) Message() string {
	return "Secret created. Previously provisioned tokens are no longer valid."
}

type LinkIssueResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

func (LinkIssueResponse) Message() string {
	return "Download link issued. Check your email for the continuation link."
}
