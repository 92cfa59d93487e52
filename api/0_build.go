package api

import (
	"context"
	"net/http"

	"github.com/fulldump/box"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fulldump/accountsdb/accounts"
	"github.com/fulldump/accountsdb/accountsdb"
	"github.com/fulldump/accountsdb/api/apiaccountsv1"
	"github.com/fulldump/accountsdb/service"
)

func Build(s service.Servicer, version string) *box.B {

	b := box.NewBox()

	v1 := b.Resource("/v1")
	v1.WithInterceptors(
		box.SetResponseHeader("Content-Type", "application/json"),
		injectServicer(s),
	)
	apiaccountsv1.BuildV1Accounts(v1)

	b.Resource("/metrics").
		WithActions(
			box.Get(metricsHandler(newRegistry())),
		)

	b.Resource("/release").
		WithActions(box.Get(func() string {
			return version
		}))

	return b
}

func injectServicer(s service.Servicer) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			next(apiaccountsv1.SetServicer(ctx, s))
		}
	}
}

func newRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(accounts.Collectors()...)
	registry.MustRegister(accountsdb.Collectors()...)
	return registry
}

func metricsHandler(registry *prometheus.Registry) func(w http.ResponseWriter, r *http.Request) {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		// the Compression interceptor owns gzip
		DisableCompression: true,
	})
	return h.ServeHTTP
}
