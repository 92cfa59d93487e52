package apiaccountsv1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fulldump/accountsdb/accountsdb"
	"github.com/fulldump/accountsdb/service"
)

func getState(ctx context.Context) (*service.State, error) {
	return GetServicer(ctx).GetState()
}

func checkpoint(ctx context.Context) (*service.State, error) {
	return GetServicer(ctx).Checkpoint()
}

func rollback(ctx context.Context, w http.ResponseWriter) (*service.State, error) {

	state, err := GetServicer(ctx).Rollback()
	if errors.Is(err, accountsdb.ErrEmptyStack) {
		w.WriteHeader(http.StatusConflict)
		return nil, err
	}

	return state, err
}

type purgeRequest struct {
	Depth int `json:"depth"`
}

func purge(ctx context.Context, w http.ResponseWriter, input *purgeRequest) (*service.State, error) {

	if input.Depth < 0 {
		w.WriteHeader(http.StatusBadRequest)
		return nil, fmt.Errorf("depth must not be negative, got %d", input.Depth)
	}

	return GetServicer(ctx).Purge(input.Depth)
}
