package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/legalprop/propostas/internal/http/client"
	"github.com/legalprop/propostas/internal/http/company"
	"github.com/legalprop/propostas/internal/http/proposal"
	"github.com/legalprop/propostas/internal/http/report"
	"github.com/legalprop/propostas/internal/http/settings"
	"github.com/legalprop/propostas/internal/http/team"
)

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
}

func New(
	opts Options,
	verifier TokenVerifier,
	principals PrincipalResolver,
	proposalsV1 *proposal.Handler,
	clientsV1 *client.Handler,
	companyV1 *company.Handler,
	teamV1 *team.Handler,
	reportsV1 *report.Handler,
	settingsV1 *settings.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/public", func(r chi.Router) {
			r.Route("/proposals", proposalsV1.PublicRoutes)
			r.Get("/invitations/{token}", teamV1.Lookup)
		})

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(verifier))

			companyV1.OnboardingRoutes(r)
			r.Post("/invitations/{token}/accept", teamV1.Accept)

			r.Group(func(r chi.Router) {
				r.Use(LoadPrincipal(principals))

				companyV1.Routes(r)

				r.Route("/proposals", func(r chi.Router) {
					r.Use(middleware.AllowContentType("application/json"))
					proposalsV1.Routes(r)
				})

				r.Route("/clients", clientsV1.Routes)
				r.Route("/team", teamV1.Routes)
				r.Route("/reports", reportsV1.Routes)
				r.Route("/settings", settingsV1.Routes)
			})
		})
	})

	return router
}
