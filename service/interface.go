package service

import (
	"errors"

	"github.com/fulldump/accountsdb/account"
	"github.com/fulldump/accountsdb/accountsdb"
)

var ErrorAccountNotFound = errors.New("account not found")
var ErrorUnavailable = errors.New("accounts are not available")

type Servicer interface {
	ListAccounts() ([]account.Pubkey, error)
	FindAccounts(filter func(id account.Pubkey, a *account.Account) bool) ([]accountsdb.Entry, error)
	GetAccount(id account.Pubkey) (*account.Account, error)
	PutAccount(id account.Pubkey, a *account.Account) error
	GetState() (*State, error)
	Checkpoint() (*State, error)
	Rollback() (*State, error)
	Purge(depth int) (*State, error)
	GetStats() (*accountsdb.Stats, error)
}

type State struct {
	Depth            int          `json:"depth"`
	TransactionCount uint64       `json:"transaction_count"`
	Hash             account.Hash `json:"hash"`
}
