package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DocumentsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docuvault", Name: "documents_created_total", Help: "Number of documents created by type."},
		[]string{"type"},
	)
	DocumentsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "docuvault", Name: "documents_deleted_total", Help: "Number of documents deleted."},
	)
	UploadsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docuvault", Name: "uploads_rejected_total", Help: "Number of rejected uploads by reason."},
		[]string{"reason"},
	)
	DownloadsServed = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "docuvault", Name: "downloads_served_total", Help: "Number of file downloads served."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docuvault", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docuvault", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(DocumentsCreated)
	reg.MustRegister(DocumentsDeleted)
	reg.MustRegister(UploadsRejected)
	reg.MustRegister(DownloadsServed)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
