package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.InvitationCreated()
	m.InvitationCreated()
	m.InvitationAccepted()
	m.FeedbackSubmitted("quick")
	m.FeedbackRejected("duplicate")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.invitationsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invitationsAccepted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.feedbackSubmitted.WithLabelValues("quick")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.feedbackRejected.WithLabelValues("duplicate")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.InvitationCreated()
		m.InvitationEmail("failed")
		m.FeedbackRejected("validation")
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/feedback/talent_categories/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feedback/talent_categories/abc", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.httpRequests.WithLabelValues(http.MethodGet, "/feedback/talent_categories/{id}", "404")))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "radar_feedback_http_requests_total")
}
