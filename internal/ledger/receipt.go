package ledger

import "time"

// Receipt is the external-facing projection of an entry. Exactly one of
// DepositedAt or WithdrawnAt is set, matching the entry direction.
type Receipt struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	DepositedAt *time.Time `json:"deposited_at,omitempty"`
	WithdrawnAt *time.Time `json:"withdrawn_at,omitempty"`
	Amount      int64      `json:"amount"`
	ReferenceID string     `json:"reference_id"`
}

const (
	receiptSuccess = "success"
	receiptFailed  = "failed"
)

// Receipt projects the entry for API responses.
func (e Entry) Receipt() Receipt {
	at := e.OccurredAt
	r := Receipt{
		ID:          e.ID,
		Status:      receiptFailed,
		Amount:      e.Amount,
		ReferenceID: e.ReferenceID,
	}
	if e.Succeeded {
		r.Status = receiptSuccess
	}
	if e.Direction == DirectionWithdrawal {
		r.WithdrawnAt = &at
	} else {
		r.DepositedAt = &at
	}
	return r
}
