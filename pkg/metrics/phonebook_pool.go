package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/event"
)

// RegisterSQLPool exports database/sql pool statistics for db.
func (r *Registry) RegisterSQLPool(name string, db *sql.DB) {
	prometheus.WrapRegistererWithPrefix(DefaultPrefix, r.registry).
		MustRegister(collectors.NewDBStatsCollector(db, name))
}

// MongoPoolMonitor returns a driver pool monitor that keeps
// phonebook_mongodb_pool_connections{state} current.
func (r *Registry) MongoPoolMonitor() *event.PoolMonitor {
	conns := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: DefaultPrefix + "mongodb_pool_connections",
			Help: "MongoDB connections by state",
		},
		[]string{"state"},
	)
	r.registry.MustRegister(conns)

	open := conns.WithLabelValues("open")
	inUse := conns.WithLabelValues("in_use")

	return &event.PoolMonitor{
		Event: func(e *event.PoolEvent) {
			switch e.Type {
			case event.ConnectionCreated:
				open.Inc()
			case event.ConnectionClosed:
				open.Dec()
			case event.GetSucceeded:
				inUse.Inc()
			case event.ConnectionReturned:
				inUse.Dec()
			case event.PoolCleared:
				inUse.Set(0)
			}
		},
	}
}
