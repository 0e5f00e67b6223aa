package domain

// IssueSessionRequest exchanges a resolved user key and a remote bearer
// token for a signed local session token. The server never sees the
// OAuth handshake itself; the caller arrives already holding both values.
type IssueSessionRequest struct {
	UserKey     string `json:"user_key" validate:"required"`
	AccessToken string `json:"access_token" validate:"required"`
}

type SessionResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}
