package models

// TokenPayload is the identity decoded from a verified access token.
// It is never persisted; it is reconstructed from the token on each request.
type TokenPayload struct {
	Username string `json:"username"`
}
