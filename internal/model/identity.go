package model

// ConnectionID identifies a single live client connection
type ConnectionID string

// AccountID is the durable id of a registered account (empty for guests)
type AccountID string

// Identity is a registered, connected player
type Identity struct {
	ConnectionID ConnectionID `json:"socketId"`
	AccountID    AccountID    `json:"userId,omitempty"`
	DisplayName  string       `json:"username"`
	IsGuest      bool         `json:"guest"`
	Wins         int          `json:"duelvictories"`
}

// Profile is the public view of an identity sent to other players
type Profile struct {
	ConnectionID ConnectionID `json:"socketId"`
	DisplayName  string       `json:"username"`
	IsGuest      bool         `json:"guest"`
	Wins         int          `json:"duelvictories"`
}

// Profile returns the public profile of the identity
func (i Identity) Profile() Profile {
	return Profile{
		ConnectionID: i.ConnectionID,
		DisplayName:  i.DisplayName,
		IsGuest:      i.IsGuest,
		Wins:         i.Wins,
	}
}

// HasAccount returns true if wins can be looked up for this identity
func (i Identity) HasAccount() bool {
	return !i.IsGuest && i.AccountID != ""
}
