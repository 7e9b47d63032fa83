package domain

// Identity is a verified caller: the stable subject id plus the display
// fields the identity provider attached to the credential. The
// coordinator never stores identities beyond what a Room references.
type Identity struct {
	Subject string `json:"subject"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}
