package api

import (
	"context"
	"net/http"

	"github.com/billbatista/acasinha-ledger/app"
	"github.com/billbatista/acasinha-ledger/middleware"
	chimiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

// RateRefresher reloads the exchange-rate table on demand.
type RateRefresher interface {
	Refresh(ctx context.Context) error
}

type Handler struct {
	state *app.State
	rates RateRefresher
}

func NewRouter(state *app.State, rates RateRefresher) http.Handler {
	h := &Handler{state: state, rates: rates}

	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.AuthMiddleware(state.Sessions()))

	router.Get("/health", h.health)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/logout", h.logout)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/me", h.me)
		r.Put("/me/avatar", h.uploadAvatar)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.listUsers)
			r.Post("/", h.addUser)
			r.Patch("/{id}", h.renameUser)
			r.Get("/{id}/avatar", h.avatar)
			r.Delete("/{id}", h.deleteUser)
		})

		r.Route("/ledgers", func(r chi.Router) {
			r.Get("/", h.listLedgers)
			r.Post("/", h.createLedger)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getLedger)
				r.Put("/", h.updateLedger)
				r.Delete("/", h.deleteLedger)
				r.Get("/expenses", h.listExpenses)
				r.Post("/expenses", h.addExpense)
				r.Get("/pinned", h.pinnedExpenses)
				r.Get("/balances", h.balances)
				r.Post("/settle", h.settle)
				r.Get("/stats", h.stats)
				r.Get("/events", h.activity)
			})
		})

		r.Route("/expenses/{id}", func(r chi.Router) {
			r.Get("/", h.getExpense)
			r.Put("/", h.updateExpense)
			r.Delete("/", h.deleteExpense)
			r.Post("/duplicate", h.duplicateExpense)
			r.Patch("/pin", h.pinExpense)
		})

		r.Post("/splits/distribute", h.distribute)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.listCategories)
			r.Post("/", h.createCategory)
			r.Put("/{id}", h.updateCategory)
			r.Delete("/{id}", h.deleteCategory)
		})

		r.Get("/settings", h.getSettings)
		r.Put("/settings", h.updateSettings)

		r.Get("/rates", h.getRates)
		r.Post("/rates/refresh", h.refreshRates)
	})

	return router
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
