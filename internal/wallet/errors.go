package wallet

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates no wallet matches the credential or identifier.
	ErrNotFound = errors.New("wallet not found")

	// ErrConflict occurs when the owner already has a wallet.
	ErrConflict = errors.New("owner already has a wallet")

	// ErrWalletDisabled rejects reads and postings against a disabled wallet.
	ErrWalletDisabled = errors.New("wallet is disabled")

	// ErrAlreadyEnabled is returned by Enable on an enabled wallet.
	ErrAlreadyEnabled = errors.New("wallet already enabled")

	// ErrInsufficientBalance occurs when a withdrawal exceeds the balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrUnavailable wraps storage failures that are safe to retry, such as
	// serialization failures or a failed commit.
	ErrUnavailable = errors.New("wallet store temporarily unavailable")

	errCredentialTaken = errors.New("credential already issued")
)

// ValidationError reports malformed input per field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

func (e *ValidationError) empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}
