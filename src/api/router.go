package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"homeledger-server/src/core/ledger"
	"homeledger-server/src/core/session"
	"homeledger-server/src/core/syncer"
	"homeledger-server/src/handlers"
	"homeledger-server/src/middleware"
	"homeledger-server/src/store"
)

func NewRouter(st store.Store, ledgerSvc *ledger.Service, sessionSvc *session.Service, orch *syncer.Orchestrator, isDemo bool) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.DemoModeMiddleware(isDemo))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Login(st))
		r.Post("/register", handlers.Register(st))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware).Group(func(r chi.Router) {
			// Profile
			r.Get("/me", handlers.Me(st))

			// Transactions
			r.Get("/transactions", handlers.ListTransactions(ledgerSvc))
			r.Post("/transactions", handlers.CreateTransaction(ledgerSvc))
			r.Get("/transactions/totals", handlers.GetTotals(ledgerSvc))
			r.Get("/transactions/{transaction_id}", handlers.GetTransaction(ledgerSvc))
			r.Put("/transactions/{transaction_id}", handlers.UpdateTransaction(ledgerSvc))
			r.Delete("/transactions/{transaction_id}", handlers.DeleteTransaction(ledgerSvc))

			// Linked accounts and feed sync
			r.Get("/accounts", handlers.ListAccounts(ledgerSvc))
			r.Post("/accounts", handlers.CreateAccount(ledgerSvc))
			r.Get("/accounts/authorize-url", handlers.GetAuthorizationURL(orch))
			r.Get("/accounts/{account_id}", handlers.GetAccount(ledgerSvc))
			r.Put("/accounts/{account_id}", handlers.UpdateAccount(ledgerSvc))
			r.Delete("/accounts/{account_id}", handlers.DeleteAccount(ledgerSvc))
			r.Post("/accounts/{account_id}/callback", handlers.HandleOAuthCallback(orch))
			r.Post("/accounts/{account_id}/sync", handlers.SyncAccount(orch))

			// Budget sessions
			r.Get("/sessions", handlers.ListSessions(sessionSvc))
			r.Post("/sessions", handlers.CreateSession(sessionSvc))
			r.Get("/sessions/{session_id}", handlers.GetSession(sessionSvc))
			r.Put("/sessions/{session_id}", handlers.UpdateSession(sessionSvc))
			r.Delete("/sessions/{session_id}", handlers.DeleteSession(sessionSvc))

			// Categories
			r.Get("/categories", handlers.ListCategories(st))
			r.Get("/categories/{category_id}", handlers.GetCategory(st))
		})

		// Admin Routes
		r.With(middleware.JWTAuthMiddleware, middleware.AdminMiddleware).Group(func(r chi.Router) {
			r.Post("/admin/categories", handlers.CreateCategory(st))
			r.Put("/admin/categories/{category_id}", handlers.UpdateCategory(st))
			r.Delete("/admin/categories/{category_id}", handlers.DeleteCategory(st))
			r.Post("/admin/cache/clear", handlers.ClearCache())
		})
	})

	return r
}
