package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(Timeout)
	r.Use(CORS)

	r.Get("/healthz", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/fabrics", handler.ListFabrics)
		r.Get("/fabrics/low-stock", handler.LowStock)
		r.Post("/fabrics/import-excel", handler.ImportFabricsExcel)
		r.Get("/fabrics/{id}", handler.GetFabric)
		r.Post("/fabrics", handler.CreateFabric)
		r.Patch("/fabrics/{id}", handler.PatchFabric)
		r.Delete("/fabrics/{id}", handler.DeleteFabric)

		r.Get("/customers", handler.ListCustomers)
		r.Get("/customers/{id}", handler.GetCustomer)
		r.Post("/customers", handler.CreateCustomer)
		r.Put("/customers/{id}", handler.UpdateCustomer)
		r.Delete("/customers/{id}", handler.DeleteCustomer)

		r.Get("/transactions", handler.ListTransactions)
		r.Post("/transactions", handler.CreateTransaction)
		r.Post("/transactions/import-excel", handler.ImportTransactionsExcel)
		r.Get("/transactions/{id}", handler.GetTransaction)
		r.Get("/transactions/{id}/receipt.pdf", handler.TransactionReceipt)
		r.Delete("/transactions/{id}", handler.DeleteTransaction)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/recap", handler.Recap)
			r.Get("/top-customers", handler.TopCustomers)
			r.Get("/top-fabrics", handler.TopFabrics)
			r.Get("/monthly", handler.MonthlyChart)
			r.Get("/forecast", handler.Forecast)
			r.Get("/dashboard", handler.Dashboard)
			r.Get("/export.xlsx", handler.ExportAnalytics)
		})

		r.Post("/admins/authenticate", handler.AuthenticateAdmin)
		r.Get("/admins", handler.ListAdmins)
		r.Post("/admins", handler.CreateAdmin)
		r.Get("/admins/{id}", handler.GetAdmin)
		r.Patch("/admins/{id}/password", handler.UpdateAdminPassword)
		r.Delete("/admins/{id}", handler.DeleteAdmin)

		r.Post("/actions", handler.LogAction)
		r.Get("/actions", handler.ListActions)
		r.Get("/actions/count", handler.CountActions)
	})

	return r
}
