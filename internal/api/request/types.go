package request

// CreateGuestRequest is the request body for minting a guest token
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}
