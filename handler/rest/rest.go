package rest

import (
	"errors"
	"net/http"

	"lending/core"
	"lending/handler/render"

	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(marketStore core.IMarketStore, reserveStore core.IReserveStore, obligationStore core.IObligationStore) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/markets", allMarketsHandler(marketStore, reserveStore))
	router.Get("/markets/{id}", marketHandler(marketStore, reserveStore))
	router.Get("/markets/{id}/reserves", marketReservesHandler(marketStore, reserveStore))
	router.Get("/reserves/{id}", reserveHandler(reserveStore))
	router.Get("/obligations", obligationsHandler(obligationStore))
	router.Get("/obligations/{id}", obligationHandler(obligationStore))

	return router
}
