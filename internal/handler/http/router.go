package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/radarfeedback/feedback-backend-go/internal/handler/http/middleware"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/jwt"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/metrics"
)

// RouterOptions carries the settings NewRouter needs from config.
type RouterOptions struct {
	AllowedOrigins []string
	Logger         *slog.Logger
	LogLevel       slog.Level
}

type Handlers struct {
	Auth       AuthHandler
	Invitation InvitationHandler
	Feedback   FeedbackHandler
	Taxonomy   TaxonomyHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, m *metrics.Metrics, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  opts.LogLevel,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(m.Middleware)
	r.Use(chiMiddleware.Heartbeat("/"))

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			r.Post("/login", h.Auth.Login)
			r.Get("/login/oauth/google", h.Auth.LoginWithGoogle)
			r.Get("/oauth/callback/google", h.Auth.OAuthCallbackGoogle)
		})

		r.Route("/feedback", func(r chi.Router) {
			// Public
			r.Post("/invite/accept/{id}", h.Invitation.Accept)
			r.Post("/submit/{id}", h.Feedback.Submit)
			r.Get("/personality_traits", h.Taxonomy.ListPersonalityTraits)
			r.Get("/talent_categories", h.Taxonomy.ListTalentCategories)
			r.Get("/talent_categories/{id}", h.Taxonomy.GetTalentCategory)

			// Requires authentication
			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

				r.Route("/invitations", func(r chi.Router) {
					r.Post("/", h.Invitation.Create)
					r.Get("/", h.Invitation.List)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.Invitation.Get)
						r.Get("/qr.png", h.Invitation.QRCode)
						r.Get("/feedback", h.Feedback.GetForInvitation)
					})
				})
			})
		})
	})
	return r
}
