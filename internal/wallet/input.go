package wallet

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	msgRequired       = "This field is required."
	msgWholeNumber    = "Enter a whole number."
	msgAmountNegative = "Ensure this value is greater than or equal to 0."
	msgAmountOverflow = "Amount exceeds the maximum wallet balance."
	msgUUID           = "Enter a valid UUID."
	msgOwnerUUID      = "customer_xid must match format for uuid"
)

// ParseTransactionInput validates the raw amount and reference id of a
// deposit or withdrawal request.
func ParseTransactionInput(amount, referenceID string) (TransactionInput, error) {
	verr := &ValidationError{}
	var in TransactionInput

	amount = strings.TrimSpace(amount)
	switch n, err := strconv.ParseInt(amount, 10, 64); {
	case amount == "":
		verr.add("amount", msgRequired)
	case err != nil:
		verr.add("amount", msgWholeNumber)
	case n < 0:
		verr.add("amount", msgAmountNegative)
	default:
		in.Amount = n
	}

	referenceID = strings.TrimSpace(referenceID)
	if referenceID == "" {
		verr.add("reference_id", msgRequired)
	} else if ref, err := uuid.Parse(referenceID); err != nil {
		verr.add("reference_id", msgUUID)
	} else {
		in.ReferenceID = ref.String()
	}

	if !verr.empty() {
		return TransactionInput{}, verr
	}
	return in, nil
}

// ParseOwnerID accepts an RFC 4122 version 4 UUID and returns it in
// canonical form.
func ParseOwnerID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id.Version() != 4 || id.Variant() != uuid.RFC4122 {
		verr := &ValidationError{}
		verr.add("customer_xid", msgOwnerUUID)
		return "", verr
	}
	return id.String(), nil
}
