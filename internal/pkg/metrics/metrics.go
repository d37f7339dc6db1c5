package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "radar_feedback"

// Metrics holds the application collectors on a private registry.
// A nil *Metrics is valid and records nothing, which keeps tests free of setup.
type Metrics struct {
	registry *prometheus.Registry

	invitationsCreated  prometheus.Counter
	invitationsAccepted prometheus.Counter
	invitationEmails    *prometheus.CounterVec
	feedbackSubmitted   *prometheus.CounterVec
	feedbackRejected    *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invitationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitations_created_total",
			Help:      "Feedback invitations issued.",
		}),
		invitationsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitations_accepted_total",
			Help:      "Invitations flipped to used.",
		}),
		invitationEmails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitation_emails_total",
			Help:      "Invitation emails by outcome.",
		}, []string{"outcome"}),
		feedbackSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_submitted_total",
			Help:      "Stored feedback by type.",
		}, []string{"feedback_type"}),
		feedbackRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_rejected_total",
			Help:      "Rejected submissions by reason.",
		}, []string{"reason"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.invitationsCreated,
		m.invitationsAccepted,
		m.invitationEmails,
		m.feedbackSubmitted,
		m.feedbackRejected,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) InvitationCreated() {
	if m == nil {
		return
	}
	m.invitationsCreated.Inc()
}

func (m *Metrics) InvitationAccepted() {
	if m == nil {
		return
	}
	m.invitationsAccepted.Inc()
}

// InvitationEmail records "sent" or "failed".
func (m *Metrics) InvitationEmail(outcome string) {
	if m == nil {
		return
	}
	m.invitationEmails.WithLabelValues(outcome).Inc()
}

func (m *Metrics) FeedbackSubmitted(feedbackType string) {
	if m == nil {
		return
	}
	m.feedbackSubmitted.WithLabelValues(feedbackType).Inc()
}

// FeedbackRejected records "validation", "duplicate", "malformed" or "not_found".
func (m *Metrics) FeedbackRejected(reason string) {
	if m == nil {
		return
	}
	m.feedbackRejected.WithLabelValues(reason).Inc()
}

// Middleware records request counts and latency labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
