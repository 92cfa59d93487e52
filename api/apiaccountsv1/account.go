package apiaccountsv1

import (
	"github.com/fulldump/accountsdb/account"
)

type AccountResponse struct {
	ID         account.Pubkey `json:"id"`
	Tokens     uint64         `json:"tokens"`
	Owner      account.Pubkey `json:"owner"`
	Executable bool           `json:"executable"`
	Loader     account.Pubkey `json:"loader"`
	Userdata   []byte         `json:"userdata"`
}

func newAccountResponse(id account.Pubkey, a *account.Account) *AccountResponse {
	return &AccountResponse{
		ID:         id,
		Tokens:     a.Tokens,
		Owner:      a.Owner,
		Executable: a.Executable,
		Loader:     a.Loader,
		Userdata:   a.Userdata,
	}
}

type AccountRequest struct {
	Tokens     uint64         `json:"tokens"`
	Owner      account.Pubkey `json:"owner"`
	Executable bool           `json:"executable"`
	Loader     account.Pubkey `json:"loader"`
	Userdata   []byte         `json:"userdata"`
}

func (r *AccountRequest) account() *account.Account {
	return &account.Account{
		Tokens:     r.Tokens,
		Owner:      r.Owner,
		Executable: r.Executable,
		Loader:     r.Loader,
		Userdata:   r.Userdata,
	}
}
