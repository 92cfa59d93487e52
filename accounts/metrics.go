package accounts

import "github.com/prometheus/client_golang/prometheus"

var BatchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "accounts",
	Name:      "batch_errors_total",
	Help:      "Transactions rejected while loading a batch, by kind.",
}, []string{"kind"})

var LockConflicts = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "accounts",
	Name:      "locks_in_use_total",
	Help:      "Transactions whose account keys were already claimed.",
})

var LockedAccounts = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "accounts",
	Name:      "locked",
	Help:      "Account keys currently claimed.",
})

func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		BatchErrors,
		LockConflicts,
		LockedAccounts,
	}
}
