package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// HoldAPI is the full hold state machine surface the router mounts.
type HoldAPI interface {
	HoldRequester
	HoldGranter
	HoldAccepter
	HoldConfirmer
	HoldReleaser
	HoldStateQuerier
}

// NewRouter wires all handlers onto a chi mux with CORS and request logging.
func NewRouter(holds HoldAPI, admin AdminAPI, corsOrigins []string, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", actorHeader},
	}))

	r.Get("/health", HealthHandler)

	r.Route("/holds", func(r chi.Router) {
		r.Post("/", HandleRequestHold(holds))
		r.Post("/{id}/grant", HandleGrantHold(holds))
		r.Post("/{id}/accept", HandleAcceptHold(holds))
		r.Post("/{id}/confirm", HandleConfirmHold(holds))
		r.Post("/{id}/release", HandleReleaseHold(holds))
	})

	r.Get("/booking-requests/{id}/hold-state", HandleHoldState(holds))

	r.Route("/admin/booking-requests", func(r chi.Router) {
		r.Post("/", HandleCreateBookingRequest(admin))
		r.Get("/", HandleListBookingRequests(admin))
		r.Post("/{id}/bids", HandleCreateBid(admin))
		r.Get("/{id}/bids", HandleListBids(admin))
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})

	return r
}
