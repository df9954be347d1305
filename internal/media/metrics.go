package media

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	imagesNormalized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geoblog_images_normalized_total",
		Help: "Uploaded images decoded, resized and re-encoded.",
	})

	storageOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geoblog_storage_operations_total",
		Help: "Media storage operations by backend, operation and result.",
	}, []string{"backend", "op", "result"})
)

func observeStorage(backend, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storageOps.WithLabelValues(backend, op, result).Inc()
}
