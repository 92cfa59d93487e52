package apiaccountsv1

import (
	"context"

	"github.com/fulldump/accountsdb/account"
)

func listAccounts(ctx context.Context) ([]account.Pubkey, error) {

	s := GetServicer(ctx)

	keys, err := s.ListAccounts()
	if err != nil {
		return nil, err // todo: wrap this?
	}

	return keys, nil
}
