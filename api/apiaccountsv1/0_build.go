package apiaccountsv1

import (
	"github.com/fulldump/box"
)

func BuildV1Accounts(v1 *box.R) *box.R {

	accounts := v1.Resource("/accounts").
		WithActions(
			box.Get(listAccounts),
			box.ActionPost(find),
		)

	v1.Resource("/accounts/{pubkey}").
		WithActions(
			box.Get(getAccount),
			box.Put(putAccount),
		)

	v1.Resource("/state").
		WithActions(
			box.Get(getState),
			box.ActionPost(checkpoint),
			box.ActionPost(rollback),
			box.ActionPost(purge),
		)

	v1.Resource("/stats").
		WithActions(
			box.Get(getStats),
		)

	return accounts
}
