package schemas

// LoginRequest carries credentials for /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Domain   string `json:"domain"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken        string `json:"access_token"`
	RefreshToken       string `json:"refresh_token"`
	TokenType          string `json:"token_type"`
	Profile            string `json:"profile"`
	MustChangePassword bool   `json:"must_change_password"`
}

// RefreshRequest exchanges a refresh token for a new access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Identity is the cached user identity persisted between sessions.
type Identity struct {
	Username string `json:"username"`
	Profile  string `json:"profile"`
}
