package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	accountEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geoblog_account_events_total",
		Help: "Account lifecycle events.",
	}, []string{"event"})

	postsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geoblog_posts_created_total",
		Help: "Posts created.",
	})
)
