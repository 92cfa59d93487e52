package apiaccountsv1

import (
	"context"

	"github.com/fulldump/accountsdb/accountsdb"
)

func getStats(ctx context.Context) (*accountsdb.Stats, error) {
	return GetServicer(ctx).GetStats()
}
