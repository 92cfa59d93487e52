package accounts

import (
	"github.com/fulldump/accountsdb/account"
)

// Transaction is the part of a ledger transaction the store cares about.
// AccountKeys[0] is the fee payer.
type Transaction struct {
	AccountKeys []account.Pubkey
	Fee         uint64
	RecentToken account.Hash
	Signatures  []account.Signature
}

func (tx *Transaction) primary() (account.Pubkey, bool) {
	if len(tx.AccountKeys) == 0 {
		return account.Pubkey{}, false
	}
	return tx.AccountKeys[0], true
}

func (tx *Transaction) firstSignature() account.Signature {
	if len(tx.Signatures) == 0 {
		return nil
	}
	return tx.Signatures[0]
}

// RecencyOracle tracks recent tokens and the signatures already seen with
// them. Reserve returns account.ErrTokenNotFound or
// account.ErrDuplicateSignature.
type RecencyOracle interface {
	CheckFreshness(token account.Hash, maxAge int) bool
	Reserve(token account.Hash, signature account.Signature) error
}
