package service

// TokenResponse is the body returned by sign-up and login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Message is a generic confirmation payload.
type Message struct {
	Message string `json:"message"`
}
