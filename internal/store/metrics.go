package store

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var DatabaseQueriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "blog_db_queries_total",
		Help: "Total number of database statements executed, by table",
	},
	[]string{"table"},
)

// QueryMetrics is a gorm plugin counting every statement issued through a connection.
type QueryMetrics struct {
	count atomic.Int64
}

// NewQueryMetrics creates an unregistered plugin; attach it with gdb.Use.
func NewQueryMetrics() *QueryMetrics {
	return &QueryMetrics{}
}

// Name implements gorm.Plugin.
func (m *QueryMetrics) Name() string {
	return "sensive:query_metrics"
}

// Initialize implements gorm.Plugin.
func (m *QueryMetrics) Initialize(gdb *gorm.DB) error {
	if err := gdb.Callback().Query().After("gorm:query").Register("sensive:count_query", m.observe); err != nil {
		return err
	}
	if err := gdb.Callback().Row().After("gorm:row").Register("sensive:count_row", m.observe); err != nil {
		return err
	}
	return gdb.Callback().Raw().After("gorm:raw").Register("sensive:count_raw", m.observe)
}

// Count returns the number of statements observed so far.
func (m *QueryMetrics) Count() int64 {
	return m.count.Load()
}

func (m *QueryMetrics) observe(tx *gorm.DB) {
	m.count.Add(1)

	table := tx.Statement.Table
	if table == "" {
		table = "unknown"
	}
	DatabaseQueriesTotal.WithLabelValues(table).Inc()
}
