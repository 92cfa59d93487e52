package apiaccountsv1

import (
	"context"

	"github.com/fulldump/accountsdb/service"
)

const ContextServicerKey = "4b6c0f3e-8a51-4c1e-9a0b-2f7d3c9e1a64"

func SetServicer(ctx context.Context, s service.Servicer) context.Context {
	return context.WithValue(ctx, ContextServicerKey, s)
}

func GetServicer(ctx context.Context) service.Servicer {
	return ctx.Value(ContextServicerKey).(service.Servicer) // TODO: can raise panic :D
}
