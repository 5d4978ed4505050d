package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"esim-storefront/internal/usecase"
)

// Pinger reports storage liveness for the health endpoint.
type Pinger func(ctx context.Context) error

type Server struct {
	checkoutUC usecase.CheckoutUseCase
	webhookUC  usecase.WebhookUseCase
	planUC     usecase.PlanUseCase
	orderUC    usecase.OrderUseCase
	auth       *AuthManager
	ping       Pinger
	log        *zerolog.Logger
	server     *http.Server
}

func NewServer(
	checkoutUC usecase.CheckoutUseCase,
	webhookUC usecase.WebhookUseCase,
	planUC usecase.PlanUseCase,
	orderUC usecase.OrderUseCase,
	auth *AuthManager,
	ping Pinger,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		checkoutUC: checkoutUC,
		webhookUC:  webhookUC,
		planUC:     planUC,
		orderUC:    orderUC,
		auth:       auth,
		ping:       ping,
		log:        logger,
	}
}

// Router builds the storefront API surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/plans", s.handleListPlans)
		r.Post("/checkout/session", s.handleCreateCheckout)
		r.Post("/webhook/stripe", s.handleStripeWebhook)
		r.Get("/orders/{id}", s.handleGetOrder)
	})

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func (s *Server) Start(port int) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Int("port", port).Msg("http server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			s.log.Error().Err(err).Msg("health check failed")
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
