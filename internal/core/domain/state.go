package domain

// StatePayload travels through the provider inside the signed OAuth state parameter.
type StatePayload struct {
	UserUID      string `json:"userUid"`
	RedirectPath string `json:"redirectPath,omitempty"`
	Nonce        string `json:"nonce"`
}
