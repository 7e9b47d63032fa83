package token

type tokenRequest struct {
	Name  string `json:"name" example:"ada"`
	Email string `json:"email" example:"ada@example.com"`
}

type tokenResponse struct {
	Token   string `json:"token"`
	Subject string `json:"subject"`
}
