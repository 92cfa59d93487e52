package apiaccountsv1

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/SierraSoftworks/connor"
	"github.com/go-json-experiment/json"

	"github.com/fulldump/accountsdb/account"
	"github.com/fulldump/accountsdb/utils"
)

type findRequest struct {
	Filter map[string]any `json:"filter"`
	Skip   int64          `json:"skip"`
	Limit  int64          `json:"limit"`
}

const defaultFindLimit = 100

// find matches the filter against the JSON form of every account of the live
// level, in pubkey order.
func find(ctx context.Context, w http.ResponseWriter, r *http.Request) ([]*AccountResponse, error) {

	requestBody, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	params := &findRequest{
		Filter: map[string]any{},
		Skip:   0,
		Limit:  defaultFindLimit,
	}
	if len(requestBody) > 0 {
		err = json.Unmarshal(requestBody, params)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return nil, err
		}
	}

	var matchErr error
	var filter func(id account.Pubkey, a *account.Account) bool
	if len(params.Filter) > 0 {
		filter = func(id account.Pubkey, a *account.Account) bool {
			if matchErr != nil {
				return false
			}
			data := map[string]any{}
			err := utils.Remarshal(newAccountResponse(id, a), &data)
			if err != nil {
				matchErr = err
				return false
			}
			match, err := connor.Match(params.Filter, data)
			if err != nil {
				matchErr = fmt.Errorf("match: %w", err)
				return false
			}
			return match
		}
	}

	s := GetServicer(ctx)
	entries, err := s.FindAccounts(filter)
	if err != nil {
		return nil, err
	}
	if matchErr != nil {
		w.WriteHeader(http.StatusBadRequest)
		return nil, matchErr
	}

	result := []*AccountResponse{}
	skip := params.Skip
	limit := params.Limit
	for _, entry := range entries {
		if limit == 0 {
			break
		}
		if skip > 0 {
			skip--
			continue
		}
		limit--
		result = append(result, newAccountResponse(entry.ID, entry.Account))
	}

	return result, nil
}
