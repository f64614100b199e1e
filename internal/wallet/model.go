package wallet

import "time"

// Wallet is a customer's custodial balance. EnabledAt and DisabledAt are nil
// when unset; together they encode the lifecycle state (see IsEnabled).
type Wallet struct {
	ID             string
	OwnerID        string
	CredentialHash []byte
	EnabledAt      *time.Time
	DisabledAt     *time.Time
	Balance        int64
	CreatedAt      time.Time
}

// CreateInput captures data required to create a wallet.
type CreateInput struct {
	OwnerID string
}

// Created is returned once per wallet and is the only place the plaintext
// credential is ever exposed.
type Created struct {
	Wallet     Wallet
	Credential string
}

// TransactionInput is a validated deposit or withdrawal request.
type TransactionInput struct {
	Amount      int64
	ReferenceID string
}
