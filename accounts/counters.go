package accounts

import (
	"errors"

	"github.com/fulldump/accountsdb/account"
)

// ErrorCounters tallies batch rejections by kind. Every increment is also
// reported on the BatchErrors metric.
type ErrorCounters struct {
	AccountNotFound     int
	AccountInUse        int
	MissingFeeSignature int
	InsufficientFunds   int
	FreshnessExpired    int
	TokenNotFound       int
	DuplicateSignature  int
	Other               int
}

// Add counts err. A nil receiver only updates the metric.
func (c *ErrorCounters) Add(err error) {

	if err == nil {
		return
	}

	if c == nil {
		c = &ErrorCounters{}
	}

	var (
		kind    string
		counter *int
	)

	switch {
	case errors.Is(err, account.ErrAccountNotFound):
		kind, counter = "account_not_found", &c.AccountNotFound
	case errors.Is(err, account.ErrAccountInUse):
		kind, counter = "account_in_use", &c.AccountInUse
	case errors.Is(err, account.ErrMissingFeeSignature):
		kind, counter = "missing_fee_signature", &c.MissingFeeSignature
	case errors.Is(err, account.ErrInsufficientFundsForFee):
		kind, counter = "insufficient_funds", &c.InsufficientFunds
	case errors.Is(err, account.ErrFreshnessExpired):
		kind, counter = "freshness_expired", &c.FreshnessExpired
	case errors.Is(err, account.ErrTokenNotFound):
		kind, counter = "token_not_found", &c.TokenNotFound
	case errors.Is(err, account.ErrDuplicateSignature):
		kind, counter = "duplicate_signature", &c.DuplicateSignature
	default:
		kind, counter = "other", &c.Other
	}

	*counter++
	BatchErrors.WithLabelValues(kind).Inc()
}

func (c *ErrorCounters) Total() int {
	return c.AccountNotFound + c.AccountInUse + c.MissingFeeSignature +
		c.InsufficientFunds + c.FreshnessExpired + c.TokenNotFound +
		c.DuplicateSignature + c.Other
}
