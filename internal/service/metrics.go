package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	expensesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grouptab_expenses_created_total",
		Help: "Number of expenses created, across all groups.",
	})

	allocationRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grouptab_allocation_rejected_total",
		Help: "Number of expense creations rejected by split validation.",
	})

	consistencyErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grouptab_consistency_errors_total",
		Help: "Number of aggregations that found stored obligations not summing to their expense amount.",
	})
)
