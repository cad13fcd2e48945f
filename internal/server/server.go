package server

import (
	"net/http"

	"github.com/TailoredAgents/joslyn-api/internal/auth"
	httpmiddleware "github.com/TailoredAgents/joslyn-api/internal/http"
	"github.com/TailoredAgents/joslyn-api/internal/logger"
	"github.com/TailoredAgents/joslyn-api/internal/pricing"
	"github.com/TailoredAgents/joslyn-api/internal/queue"
	"github.com/TailoredAgents/joslyn-api/internal/store"
	"github.com/TailoredAgents/joslyn-api/internal/tenant"
	"github.com/rs/zerolog"
)

// Stores bundles the persistence interfaces the server depends on. Memory
// and PostgreSQL implementations are interchangeable.
type Stores struct {
	Organizations store.OrganizationStore
	Memberships   store.MembershipStore
	Events        store.EventStore
	Usage         store.UsageStore
	Invites       store.InviteStore
}

// Config holds server behavior settings.
type Config struct {
	// AdminAPIKey guards the admin usage report. An empty key disables the
	// endpoint entirely.
	AdminAPIKey string

	// Rates prices model usage. Loaded once at startup, read-only after.
	Rates pricing.RateTable
}

// Server wires the HTTP endpoints to stores, the access guard, and the
// background work queue.
type Server struct {
	stores   Stores
	guard    *auth.Guard
	queue    queue.Queue
	verifier *auth.Verifier
	config   Config
}

// NewServer creates a new server with the given dependencies.
func NewServer(stores Stores, verifier *auth.Verifier, q queue.Queue, config Config) *Server {
	return &Server{
		stores:   stores,
		guard:    auth.NewGuard(stores.Memberships),
		queue:    q,
		verifier: verifier,
		config:   config,
	}
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler(log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint for load balancer
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	mux.HandleFunc("GET /whoami", s.handleWhoami)

	mux.HandleFunc("POST /events/consent", s.handleConsent)
	mux.HandleFunc("POST /feedback", s.handleFeedback)

	mux.HandleFunc("POST /orgs/bootstrap", s.handleBootstrap)
	mux.HandleFunc("POST /invites", s.handleCreateInvite)
	mux.HandleFunc("POST /invites/accept", s.handleAcceptInvite)

	mux.HandleFunc("POST /usage", s.handleRecordUsage)
	mux.HandleFunc("GET /admin/usage", s.handleAdminUsage)

	mux.HandleFunc("POST /jobs/scan", s.handleScanDocument)

	var handler http.Handler = mux
	handler = tenant.Middleware()(handler)
	handler = s.verifier.Middleware()(handler)
	handler = httpmiddleware.ClientIPMiddleware()(handler)
	handler = logger.RequestLogger(log)(handler)

	return handler
}
