package accountsdb

import "github.com/prometheus/client_golang/prometheus"

var FileGrowths = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "accountsdb",
	Subsystem: "storage",
	Name:      "file_growths",
}, []string{"shard"})

var CheckpointDepth = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "accountsdb",
	Subsystem: "checkpoints",
	Name:      "depth",
})

var CheckpointOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "accountsdb",
	Subsystem: "checkpoints",
	Name:      "operations",
}, []string{"operation"})

func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		FileGrowths,
		CheckpointDepth,
		CheckpointOperations,
	}
}
