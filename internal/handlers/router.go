package handlers

import (
	"net/http"

	"egabank/internal/config"
	"egabank/internal/db"
	"egabank/internal/middleware"
	"egabank/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner db.TxRunner
	cfg      config.Config
	users    UserStore
	clients  ClientStore
	accounts AccountService
	ledger   LedgerService
	lister   TransactionLister
	audit    AuditLister
	hub      *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, clients ClientStore, accounts AccountService, ledger LedgerService, lister TransactionLister, audit AuditLister, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner: txRunner,
		cfg:      cfg,
		users:    users,
		clients:  clients,
		accounts: accounts,
		ledger:   ledger,
		lister:   lister,
		audit:    audit,
		hub:      hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	router.Route("/clients", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Post("/", h.CreateClient)
		r.Get("/", h.ListClients)
		r.Get("/{id}", h.GetClient)
		r.Get("/{id}/accounts", h.ListClientAccounts)
	})

	router.Route("/accounts", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Post("/", h.CreateAccount)
		r.Get("/{number}", h.GetAccount)
		r.Put("/{number}/deactivate", h.DeactivateAccount)
		r.Put("/{number}/activate", h.ActivateAccount)
		r.Delete("/{number}", h.DeleteAccount)
	})

	router.Route("/transactions", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Post("/{number}/deposit", h.Deposit)
		r.Post("/{number}/withdraw", h.Withdraw)
		r.Post("/{number}/interest", h.AccrueInterest)
		r.Post("/transfer", h.Transfer)
		r.Get("/{number}/history", h.History)
		r.Get("/{number}", h.ListAccountTransactions)
	})

	router.Route("/audit", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/", h.ListAuditLogs)
	})

	router.Get("/ws/balances", h.WSBalances)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
