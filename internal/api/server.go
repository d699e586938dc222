package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fitclub/internal/config"
	"fitclub/internal/domain"
	"fitclub/internal/export"
	"fitclub/internal/service"

	"github.com/rs/zerolog"
)

// Server обслуживает два контура: /api/v1 для Mini App клиентов и
// /api/admin для веб-админки.
type Server struct {
	cfg config.APIConfig

	bookings    domain.BookingService
	memberships domain.MembershipService
	users       domain.UserService
	slots       domain.SlotService
	bar         domain.BarService
	stats       *service.StatsService
	repo        domain.Repository
	auth        *JWTAuth
	exporter    *export.Exporter

	server *http.Server
	logger *zerolog.Logger
}

type Deps struct {
	Bookings    domain.BookingService
	Memberships domain.MembershipService
	Users       domain.UserService
	Slots       domain.SlotService
	Bar         domain.BarService
	Stats       *service.StatsService
	Repo        domain.Repository
	Auth        *JWTAuth
	Exporter    *export.Exporter
}

func NewServer(cfg config.APIConfig, deps Deps, logger *zerolog.Logger) *Server {
	s := &Server{
		cfg:         cfg,
		bookings:    deps.Bookings,
		memberships: deps.Memberships,
		users:       deps.Users,
		slots:       deps.Slots,
		bar:         deps.Bar,
		stats:       deps.Stats,
		repo:        deps.Repo,
		auth:        deps.Auth,
		exporter:    deps.Exporter,
		logger:      logger,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	// Mini App: личность клиента приходит в заголовках от бот-шлюза
	client := http.NewServeMux()
	client.HandleFunc("GET /api/v1/catalog", s.handleCatalog)
	client.HandleFunc("GET /api/v1/slots", s.handleClientSlots)
	client.HandleFunc("POST /api/v1/bookings", s.handleCreateBooking)
	client.HandleFunc("GET /api/v1/bookings", s.handleMyBookings)
	client.HandleFunc("POST /api/v1/bookings/{id}/cancel", s.handleCancelBooking)
	client.HandleFunc("POST /api/v1/bookings/{id}/feedback", s.handleLeaveFeedback)
	client.HandleFunc("GET /api/v1/plans", s.handlePlans)
	client.HandleFunc("GET /api/v1/membership", s.handleCurrentMembership)
	client.HandleFunc("POST /api/v1/membership/purchase", s.handlePurchaseOwnMembership)
	client.HandleFunc("GET /api/v1/membership/history", s.handleMembershipHistory)
	client.HandleFunc("POST /api/v1/membership/freeze", s.handleFreezeMembership)
	client.HandleFunc("POST /api/v1/membership/unfreeze", s.handleUnfreezeMembership)
	client.HandleFunc("GET /api/v1/bar/categories", s.handleBarCategories)
	client.HandleFunc("GET /api/v1/bar/menu", s.handleBarMenu)
	client.HandleFunc("POST /api/v1/bar/orders", s.handleCreateBarOrder)
	client.HandleFunc("GET /api/v1/bar/orders", s.handleMyBarOrders)
	client.HandleFunc("GET /api/v1/profile", s.handleProfile)
	client.HandleFunc("PUT /api/v1/profile/language", s.handleUpdateLanguage)
	client.HandleFunc("PUT /api/v1/profile/phone", s.handleUpdatePhone)
	mux.Handle("/api/v1/", identityMiddleware(s.users)(client))

	mux.HandleFunc("POST /api/admin/login", s.handleAdminLogin)

	admin := http.NewServeMux()
	admin.HandleFunc("GET /api/admin/me", s.handleAdminMe)
	admin.HandleFunc("GET /api/admin/pending-counts", s.handlePendingCounts)
	admin.HandleFunc("GET /api/admin/dashboard", s.handleDashboard)
	admin.HandleFunc("GET /api/admin/bookings", s.handleAdminBookings)
	admin.HandleFunc("POST /api/admin/bookings/{id}/confirm", s.handleConfirmBooking)
	admin.HandleFunc("POST /api/admin/bookings/{id}/complete", s.handleCompleteBooking)
	admin.HandleFunc("POST /api/admin/bookings/{id}/cancel", s.handleAdminCancelBooking)
	admin.HandleFunc("GET /api/admin/slots", s.handleAdminSlots)
	admin.HandleFunc("POST /api/admin/slots", s.handleCreateSlot)
	admin.HandleFunc("POST /api/admin/slots/generate", s.handleGenerateSlots)
	admin.HandleFunc("PATCH /api/admin/slots/{id}", s.handleUpdateSlot)
	admin.HandleFunc("DELETE /api/admin/slots/{id}", s.handleDeleteSlot)
	admin.HandleFunc("GET /api/admin/categories", s.handleAdminCategories)
	admin.HandleFunc("POST /api/admin/categories", s.handleCreateCategory)
	admin.HandleFunc("GET /api/admin/services", s.handleAdminServices)
	admin.HandleFunc("POST /api/admin/services", s.handleCreateService)
	admin.HandleFunc("PUT /api/admin/services/{id}", s.handleUpdateService)
	admin.HandleFunc("GET /api/admin/plans", s.handleAdminPlans)
	admin.HandleFunc("POST /api/admin/plans", s.handleCreatePlan)
	admin.HandleFunc("PUT /api/admin/plans/{id}", s.handleUpdatePlan)
	admin.HandleFunc("GET /api/admin/clients", s.handleSearchClients)
	admin.HandleFunc("POST /api/admin/clients", s.handleCreateClient)
	admin.HandleFunc("POST /api/admin/clients/merge", s.handleMergeClients)
	admin.HandleFunc("GET /api/admin/clients/{id}/memberships", s.handleClientMemberships)
	admin.HandleFunc("POST /api/admin/clients/{id}/memberships", s.handlePurchaseMembership)
	admin.HandleFunc("POST /api/admin/memberships/{id}/freeze", s.handleAdminFreeze)
	admin.HandleFunc("POST /api/admin/memberships/{id}/unfreeze", s.handleAdminUnfreeze)
	admin.HandleFunc("GET /api/admin/feedback", s.handleFeedbackList)
	admin.HandleFunc("GET /api/admin/bar/items", s.handleAdminBarItems)
	admin.HandleFunc("POST /api/admin/bar/items", s.handleCreateBarItem)
	admin.HandleFunc("PUT /api/admin/bar/items/{id}", s.handleUpdateBarItem)
	admin.HandleFunc("GET /api/admin/bar/orders", s.handleAdminBarOrders)
	admin.HandleFunc("POST /api/admin/bar/orders/{id}/status", s.handleSetBarOrderStatus)
	admin.HandleFunc("GET /api/admin/export/bookings", s.handleExportBookings)
	mux.Handle("/api/admin/", s.auth.Middleware(admin))

	limiter := newRateLimiter(s.cfg.RateLimit)
	return loggingMiddleware(s.logger)(limiter.middleware(mux))
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler отдаёт полный стек обработчиков, в тестах сервер не слушает порт.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
