package account

import "errors"

// Per-transaction failure kinds. They are returned inline in batch results and
// never abort sibling transactions.
var (
	ErrAccountNotFound         = errors.New("account not found")
	ErrInsufficientFundsForFee = errors.New("insufficient funds for fee")
	ErrAccountInUse            = errors.New("account in use")
	ErrMissingFeeSignature     = errors.New("missing signature for fee")
	ErrFreshnessExpired        = errors.New("recent token expired")
	ErrTokenNotFound           = errors.New("recent token not found")
	ErrDuplicateSignature      = errors.New("duplicate signature")
)
