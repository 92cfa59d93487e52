package apiaccountsv1

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/accountsdb/account"
)

func putAccount(ctx context.Context, w http.ResponseWriter, input *AccountRequest) (*AccountResponse, error) {

	id, err := account.ParsePubkey(box.GetUrlParameter(ctx, "pubkey"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return nil, err
	}

	a := input.account()

	s := GetServicer(ctx)
	err = s.PutAccount(id, a)
	if err != nil {
		return nil, err
	}

	return newAccountResponse(id, a), nil
}
