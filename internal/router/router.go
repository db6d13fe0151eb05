package router

import (
	"net/http"

	"github.com/senyabanana/container-rental/internal/auth"
	"github.com/senyabanana/container-rental/internal/handlers"
)

// Handlers объединяет обработчики, которые регистрирует роутер.
type Handlers struct {
	Auth      *handlers.Authenticator
	Requests  *handlers.RequestHandler
	Proposals *handlers.ProposalHandler
	Rentals   *handlers.RentalHandler
}

func InitRoutes(h Handlers) http.Handler {
	mux := http.NewServeMux()
	customer := func(next http.HandlerFunc) http.HandlerFunc { return h.Auth.Require(next, auth.RoleCustomer) }
	support := func(next http.HandlerFunc) http.HandlerFunc { return h.Auth.Require(next, auth.RoleSupport) }

	mux.HandleFunc("GET /api/ping", handlers.PingHandler)

	mux.HandleFunc("POST /api/rental-requests", customer(h.Requests.CreateRequest))
	mux.HandleFunc("GET /api/rental-requests", customer(h.Requests.GetRequests))
	mux.HandleFunc("GET /api/rental-requests/{requestId}", customer(h.Requests.GetRequest))
	mux.HandleFunc("DELETE /api/rental-requests/{requestId}", customer(h.Requests.CancelRequest))

	mux.HandleFunc("POST /api/rental-requests/{requestId}/proposals", support(h.Proposals.SubmitProposal))
	mux.HandleFunc("GET /api/rental-requests/{requestId}/proposals", customer(h.Proposals.GetProposals))
	mux.HandleFunc("GET /api/rental-requests/{requestId}/proposals/{proposalId}", customer(h.Proposals.GetProposal))
	mux.HandleFunc("PATCH /api/rental-requests/{requestId}/proposals/{proposalId}/accept", customer(h.Proposals.AcceptProposal))
	mux.HandleFunc("PATCH /api/rental-requests/{requestId}/proposals/{proposalId}/reject", customer(h.Proposals.RejectProposal))
	mux.HandleFunc("POST /api/rental-requests/{requestId}/proposals/{proposalId}/comment",
		h.Auth.Require(h.Proposals.AddComment, auth.RoleCustomer, auth.RoleSupport))

	mux.HandleFunc("GET /api/rentals", customer(h.Rentals.GetRentals))
	mux.HandleFunc("GET /api/rentals/{rentalId}", customer(h.Rentals.GetRental))

	return mux
}
