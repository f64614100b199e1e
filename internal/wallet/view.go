package wallet

import "time"

const (
	StatusEnabled  = "enabled"
	StatusDisabled = "disabled"
)

// View is the external projection of a wallet.
type View struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owned_by"`
	Status     string     `json:"status"`
	EnabledAt  *time.Time `json:"enabled_at,omitempty"`
	DisabledAt *time.Time `json:"disabled_at,omitempty"`
	Balance    int64      `json:"balance"`
}

// View derives the projection from the wallet's current state.
func (w Wallet) View() View {
	v := View{
		ID:      w.ID,
		OwnerID: w.OwnerID,
		Status:  StatusDisabled,
		Balance: w.Balance,
	}
	switch {
	case w.IsEnabled():
		v.Status = StatusEnabled
		v.EnabledAt = w.EnabledAt
	case w.DisabledAt != nil:
		v.DisabledAt = w.DisabledAt
	}
	return v
}
