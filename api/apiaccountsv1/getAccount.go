package apiaccountsv1

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/accountsdb/account"
	"github.com/fulldump/accountsdb/service"
)

func getAccount(ctx context.Context, w http.ResponseWriter) (*AccountResponse, error) {

	id, err := account.ParsePubkey(box.GetUrlParameter(ctx, "pubkey"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return nil, err
	}

	s := GetServicer(ctx)
	a, err := s.GetAccount(id)
	if err == service.ErrorAccountNotFound {
		w.WriteHeader(http.StatusNotFound)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	return newAccountResponse(id, a), nil
}
